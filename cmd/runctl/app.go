package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rundir/pkg/cli"
	"mercator-hq/rundir/pkg/config"
	"mercator-hq/rundir/pkg/journal"
	"mercator-hq/rundir/pkg/lock"
	"mercator-hq/rundir/pkg/rundir"
	"mercator-hq/rundir/pkg/schedule"
	"mercator-hq/rundir/pkg/telemetry/logging"
	"mercator-hq/rundir/pkg/telemetry/metrics"
)

// app holds what the commands share: configuration, logger, journal and the
// optional metrics collector and tracer.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal journal.Store
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// newApp loads the configuration and sets up logging. The journal is opened
// only when enabled.
func newApp() (*app, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return newAppFromConfig(config.GetConfig())
}

func newAppFromConfig(cfg *config.Config) (*app, error) {
	logCfg := cfg.Telemetry.Logging
	level := logCfg.Level
	if verbose {
		level = "debug"
	}
	if logLevel != "" {
		level = logLevel
	}

	logger, err := logging.Setup(logging.Config{
		Level:     level,
		Format:    logCfg.Format,
		AddSource: logCfg.AddSource,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	a := &app{cfg: cfg, logger: logger}

	if cfg.Journal.Enabled {
		store, err := journal.NewSQLiteStore(&journal.SQLiteConfig{
			Driver:      cfg.Journal.Driver,
			Path:        cfg.Journal.Path,
			WALMode:     cfg.Journal.WALMode,
			BusyTimeout: cfg.Journal.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.journal = store
	}

	return a, nil
}

// Close releases the journal.
func (a *app) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// manager builds the Manager for root with the configured layout and the
// app's observers.
func (a *app) manager(root string) (*rundir.Manager, error) {
	opts := []rundir.Option{
		rundir.WithLayout(rundir.Layout{
			ActiveDir:  a.cfg.Layout.ActiveDir,
			ArchiveDir: a.cfg.Layout.ArchiveDir,
		}),
		rundir.WithLogger(a.logger),
	}
	if a.journal != nil {
		opts = append(opts, rundir.WithJournal(a.journal))
	}
	if a.metrics != nil {
		opts = append(opts, rundir.WithMetrics(a.metrics))
	}
	if a.tracer != nil {
		opts = append(opts, rundir.WithTracer(a.tracer))
	}
	return rundir.NewManager(root, opts...)
}

// resolveRoots returns the roots named by --root, or every configured root.
// A --root that matches a configured path inherits its settings.
func (a *app) resolveRoots(flagRoots []string) ([]config.RootConfig, error) {
	if len(flagRoots) == 0 {
		if len(a.cfg.Roots) == 0 {
			return nil, cli.NewConfigError("roots", "no roots configured; pass --root")
		}
		return a.cfg.Roots, nil
	}

	configured := make(map[string]config.RootConfig, len(a.cfg.Roots))
	for _, r := range a.cfg.Roots {
		configured[filepath.Clean(r.Path)] = r
	}

	roots := make([]config.RootConfig, 0, len(flagRoots))
	for _, p := range flagRoots {
		if r, ok := configured[filepath.Clean(p)]; ok {
			roots = append(roots, r)
			continue
		}
		roots = append(roots, config.RootConfig{Path: p})
	}
	return roots, nil
}

// singleRoot resolves exactly one root for commands that act on one.
func (a *app) singleRoot(flagRoot string) (config.RootConfig, error) {
	var flagRoots []string
	if flagRoot != "" {
		flagRoots = []string{flagRoot}
	}
	roots, err := a.resolveRoots(flagRoots)
	if err != nil {
		return config.RootConfig{}, err
	}
	if len(roots) != 1 {
		return config.RootConfig{}, cli.NewConfigError("roots", fmt.Sprintf("%d roots configured; pass --root", len(roots)))
	}
	return roots[0], nil
}

// cleanOptions builds the options of a pass over root from configuration.
func (a *app) cleanOptions(root config.RootConfig) rundir.CleanOptions {
	return rundir.CleanOptions{
		Keep:               a.cfg.RootKeep(root),
		ProtectedFileTypes: a.cfg.RootProtectedFileTypes(root),
		Strict:             a.cfg.Clean.StrictNames,
	}
}

// targets converts roots into scheduler targets.
func (a *app) targets(roots []config.RootConfig) []schedule.Target {
	out := make([]schedule.Target, 0, len(roots))
	for _, r := range roots {
		out = append(out, schedule.Target{Root: r.Path, Options: a.cleanOptions(r)})
	}
	return out
}

// withLock runs fn while holding the lock of root, waiting up to the
// configured lock timeout.
func (a *app) withLock(ctx context.Context, root string, fn func() error) error {
	var (
		l   *lock.RootLock
		err error
	)
	if timeout := a.cfg.Schedule.LockTimeout; timeout > 0 {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		l, err = lock.Acquire(lockCtx, root, 0)
	} else {
		l, err = lock.TryAcquire(root)
	}
	if err != nil {
		return fmt.Errorf("lock root %q: %w", root, err)
	}
	defer func() {
		if err := l.Release(); err != nil {
			a.logger.Warn("failed to release root lock", "root", root, "error", err)
		}
	}()

	return fn()
}

// parseSince parses --since as a duration ("24h") or an RFC3339 time.
func parseSince(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		t := now.Add(-d)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q: want a duration such as 24h or an RFC3339 time", s)
	}
	return &t, nil
}
