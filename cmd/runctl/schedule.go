package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/rundir/pkg/cli"
	"mercator-hq/rundir/pkg/config"
	"mercator-hq/rundir/pkg/schedule"
	"mercator-hq/rundir/pkg/server"
	"mercator-hq/rundir/pkg/telemetry/metrics"
	"mercator-hq/rundir/pkg/telemetry/tracing"
)

const shutdownTimeout = 10 * time.Second

var scheduleFlags struct {
	roots []string
	once  bool
	cron  string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Clean roots on a cron schedule",
	Long: `Run the cleaning daemon. Every configured root is cleaned on the
schedule.cron expression, each pass holding the root's lock.

While running, the daemon:
  - serves Prometheus metrics when telemetry.metrics.enabled is set
  - exports traces when telemetry.tracing.enabled is set
  - prunes journal records older than journal.max_age after each pass
  - reloads roots and schedule when the config file changes or on SIGHUP

Examples:
  # Run with the configured schedule
  runctl schedule --config runctl.yaml

  # Clean every 30 minutes
  runctl schedule --config runctl.yaml --cron "*/30 * * * *"

  # Run a single pass over all roots and exit
  runctl schedule --config runctl.yaml --once`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringSliceVarP(&scheduleFlags.roots, "root", "r", nil, "root directory, repeatable (default: all configured roots)")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.once, "once", false, "run one pass and exit")
	scheduleCmd.Flags().StringVar(&scheduleFlags.cron, "cron", "", "override schedule.cron")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	if scheduleFlags.cron != "" {
		cfg.Schedule.Cron = scheduleFlags.cron
	}

	tp, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Telemetry.Tracing.Enabled,
		Endpoint:       cfg.Telemetry.Tracing.Endpoint,
		Insecure:       cfg.Telemetry.Tracing.Insecure,
		SampleRatio:    cfg.Telemetry.Tracing.SampleRatio,
		ServiceName:    cfg.Telemetry.Tracing.ServiceName,
		ServiceVersion: Version,
	})
	if err != nil {
		return cli.NewCommandError("schedule", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	a.tracer = tp.Tracer()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var opts []schedule.Option
	opts = append(opts, schedule.WithLogger(a.logger))

	if cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&metrics.Config{
			Namespace:         cfg.Telemetry.Metrics.Namespace,
			RuntimeCollectors: true,
		}, nil)
	}
	if a.journal != nil {
		var recorder schedule.PruneRecorder
		if a.metrics != nil {
			recorder = a.metrics
		}
		opts = append(opts, schedule.WithPruner(schedule.NewJournalPruner(a.journal, cfg.Journal.MaxAge, recorder)))
	}

	roots, err := a.resolveRoots(scheduleFlags.roots)
	if err != nil {
		return err
	}

	sched := schedule.NewScheduler(schedule.Config{
		Cron:        cfg.Schedule.Cron,
		RunOnStart:  cfg.Schedule.RunOnStart,
		LockTimeout: cfg.Schedule.LockTimeout,
	}, a.manager, opts...)
	sched.SetTargets(a.targets(roots))

	if scheduleFlags.once {
		return runOncePass(ctx, a, sched)
	}

	if cfg.Schedule.Cron == "" {
		return cli.NewConfigError("schedule.cron", "no schedule configured")
	}

	if err := sched.Start(ctx); err != nil {
		return cli.NewCommandError("schedule", err)
	}
	defer sched.Stop()

	if a.metrics != nil {
		srv := server.NewServer(server.Config{
			ListenAddress:   cfg.Telemetry.Metrics.ListenAddress,
			MetricsPath:     cfg.Telemetry.Metrics.Path,
			ShutdownTimeout: shutdownTimeout,
		}, a.metrics.Handler(), sched)
		if err := srv.Start(ctx); err != nil {
			return cli.NewCommandError("schedule", err)
		}
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				a.logger.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	if next := sched.NextRun(); next != nil {
		a.logger.Info("cleaning daemon started",
			"roots", len(roots),
			"schedule", cfg.Schedule.Cron,
			"next_run", next.Format(time.RFC3339),
		)
	}

	reload := newReloader(a, sched, len(scheduleFlags.roots) == 0)

	if path := config.ConfigPath(); path != "" && cfg.Schedule.WatchConfig {
		watcher, err := config.NewWatcher(path, 0, a.logger)
		if err != nil {
			return cli.NewCommandError("schedule", err)
		}
		go func() {
			if err := watcher.Watch(ctx, func(next *config.Config) { reload(ctx, next) }); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	hup, stopHUP := cli.ReloadSignals()
	defer stopHUP()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("shutting down cleaning daemon")
			return nil
		case <-hup:
			path := config.ConfigPath()
			if path == "" {
				a.logger.Warn("SIGHUP ignored, no config file")
				continue
			}
			next, err := config.ReloadConfig(path)
			if err != nil {
				a.logger.Error("config reload failed, keeping current configuration", "error", err)
				continue
			}
			reload(ctx, next)
		}
	}
}

// runOncePass cleans every target once, prunes the journal and reports the
// joined errors.
func runOncePass(ctx context.Context, a *app, sched *schedule.Scheduler) error {
	var errs []error
	for _, r := range sched.RunOnce(ctx) {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Root, r.Err))
		}
	}
	if a.journal != nil {
		pruner := schedule.NewJournalPruner(a.journal, a.cfg.Journal.MaxAge, nil)
		if _, err := pruner.Prune(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return cli.NewCommandError("schedule", err)
	}
	return nil
}

// newReloader returns the function applied to each reloaded configuration.
// Targets follow the configured roots unless roots were given on the command
// line. Layout, journal and telemetry changes take effect on restart.
func newReloader(a *app, sched *schedule.Scheduler, followRoots bool) func(context.Context, *config.Config) {
	return func(ctx context.Context, next *config.Config) {
		if next.Layout != a.cfg.Layout {
			a.logger.Warn("layout changed, restart to apply",
				"active_dir", next.Layout.ActiveDir,
				"archive_dir", next.Layout.ArchiveDir,
			)
		}

		if followRoots {
			view := &app{cfg: next}
			sched.SetTargets(view.targets(next.Roots))
		}

		if scheduleFlags.cron == "" {
			if err := sched.Reschedule(ctx, next.Schedule.Cron); err != nil {
				a.logger.Error("invalid schedule in reloaded config", "error", err)
			}
		}

		a.logger.Info("configuration reloaded", "roots", len(sched.Targets()))
	}
}
