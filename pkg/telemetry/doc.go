// Package telemetry groups runctl's observability packages.
//
// # Components
//
//   - logging: log/slog setup with trace correlation
//   - metrics: Prometheus collectors for create and clean operations
//   - tracing: OpenTelemetry tracer provider with OTLP gRPC export
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector("rundir")
//	provider, err := tracing.New(ctx, tracing.Config{Enabled: false})
//	defer provider.Shutdown(ctx)
//
//	mgr, err := rundir.NewManager(root,
//	    rundir.WithLogger(logger),
//	    rundir.WithMetrics(collector),
//	    rundir.WithTracer(provider.Tracer()),
//	)
package telemetry
