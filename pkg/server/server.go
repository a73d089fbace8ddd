package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Config configures the daemon HTTP server.
type Config struct {
	// ListenAddress is the host:port to listen on.
	ListenAddress string

	// MetricsPath is where the metrics handler is mounted.
	// Default: "/metrics"
	MetricsPath string

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// Server serves metrics and health endpoints for the cleaning daemon.
type Server struct {
	config     Config
	metrics    http.Handler
	readiness  Readiness
	logger     *slog.Logger
	httpServer *http.Server
	addr       net.Addr

	mu           sync.RWMutex
	isRunning    bool
	shutdownOnce sync.Once
}

// NewServer creates a server. metrics may be nil, in which case the metrics
// path is not mounted.
func NewServer(cfg Config, metrics http.Handler, readiness Readiness) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		config:    cfg,
		metrics:   metrics,
		readiness: readiness,
		logger:    slog.Default().With("component", "server"),
	}
}

// Start listens on the configured address and serves in the background. It
// returns once the listener is bound. The server shuts down when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.addr = ln.Addr()
	s.isRunning = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
		}
	}()

	s.logger.Info("server listening",
		"address", s.addr.String(),
		"metrics_path", s.config.MetricsPath,
	)
	return nil
}

// Shutdown gracefully stops the server. Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", NewHealthHandler())
	mux.Handle("/ready", NewReadyHandler(s.readiness))
	if s.metrics != nil {
		mux.Handle(s.config.MetricsPath, s.metrics)
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(handler)

	return handler
}
