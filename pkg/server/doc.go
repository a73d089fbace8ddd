// Package server provides the HTTP endpoint of the cleaning daemon.
//
// The server exposes:
//   - the Prometheus metrics handler at the configured path
//   - /health, a liveness probe that always answers while the process runs
//   - /ready, which reports whether the scheduler is running and when the
//     next pass is due
//
// Requests pass through recovery, request ID and logging middleware.
//
// # Basic Usage
//
//	srv := server.NewServer(server.Config{
//	    ListenAddress: "127.0.0.1:9464",
//	    MetricsPath:   "/metrics",
//	}, collector.Handler(), scheduler)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
package server
