package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/rundir/pkg/lock"
	"mercator-hq/rundir/pkg/rundir"
)

// Config controls the scheduler.
type Config struct {
	// Cron is a standard 5-field cron expression or descriptor such as
	// "@hourly". An empty expression disables scheduling.
	Cron string

	// RunOnStart runs one pass as soon as Start is called.
	RunOnStart bool

	// LockTimeout bounds how long a pass waits for a root lock. 0 means the
	// pass fails immediately if the root is locked.
	LockTimeout time.Duration
}

// Target is one root and the options its passes use.
type Target struct {
	Root    string
	Options rundir.CleanOptions
}

// ManagerFactory builds the Manager for a root.
type ManagerFactory func(root string) (*rundir.Manager, error)

// Result is the outcome of cleaning one root.
type Result struct {
	Root   string
	Report *rundir.Report
	Err    error
}

// Scheduler runs cleaning passes over its targets on a cron schedule.
type Scheduler struct {
	config  Config
	factory ManagerFactory
	pruner  *JournalPruner
	logger  *slog.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu      sync.Mutex
	targets []Target
	running bool

	// passMu serializes passes started by cron, RunOnStart and RunOnce.
	passMu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPruner prunes the journal after every scheduled pass.
func WithPruner(p *JournalPruner) Option {
	return func(s *Scheduler) {
		s.pruner = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler. Targets are set with SetTargets.
func NewScheduler(cfg Config, factory ManagerFactory, opts ...Option) *Scheduler {
	s := &Scheduler{
		config:  cfg,
		factory: factory,
		cron:    cron.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "schedule")
	return s
}

// SetTargets replaces the roots cleaned by subsequent passes.
func (s *Scheduler) SetTargets(targets []Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append([]Target(nil), targets...)
}

// Targets returns a copy of the current targets.
func (s *Scheduler) Targets() []Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Target(nil), s.targets...)
}

// Start schedules passes according to the cron expression. The scheduler
// stops when ctx is done.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "*/30 * * * *" - Every 30 minutes
//   - "@hourly"      - Every hour
//
// If the expression is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	if s.config.Cron == "" {
		s.logger.Info("cleaning schedule not configured, skipping scheduler")
		return nil
	}

	id, err := s.addJob(ctx, s.config.Cron)
	if err != nil {
		return err
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID = id

	s.cron.Start()
	s.running = true

	s.logger.Info("cleaning scheduler started",
		"schedule", s.config.Cron,
		"roots", len(s.targets),
	)

	if s.config.RunOnStart {
		go s.runScheduled(ctx)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) addJob(ctx context.Context, expr string) (cron.EntryID, error) {
	if _, err := cron.ParseStandard(expr); err != nil {
		return 0, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}

	id, err := s.cron.AddFunc(expr, func() {
		s.runScheduled(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule cleaning: %w", err)
	}
	return id, nil
}

// Reschedule replaces the cron expression of a running scheduler.
func (s *Scheduler) Reschedule(ctx context.Context, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expr == s.config.Cron {
		return nil
	}
	if !s.running {
		s.config.Cron = expr
		return nil
	}

	id, err := s.addJob(ctx, expr)
	if err != nil {
		return err
	}
	s.cron.Remove(s.entryID)
	s.entryID = id

	s.logger.Info("cleaning schedule changed", "from", s.config.Cron, "to", expr)
	s.config.Cron = expr

	return nil
}

// runScheduled runs a pass and prunes the journal.
func (s *Scheduler) runScheduled(ctx context.Context) {
	s.logger.Info("starting scheduled cleaning")

	results := s.RunOnce(ctx)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if _, err := s.pruner.Prune(ctx); err != nil {
		s.logger.Error("scheduled journal pruning failed", "error", err)
	}

	s.logger.Info("scheduled cleaning completed",
		"roots", len(results),
		"failed_count", failed,
	)
}

// RunOnce cleans every target once, in order, and returns one Result per
// target.
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	targets := s.Targets()
	results := make([]Result, 0, len(targets))

	for _, t := range targets {
		if ctx.Err() != nil {
			results = append(results, Result{Root: t.Root, Err: ctx.Err()})
			continue
		}

		report, err := s.cleanTarget(ctx, t)
		if err != nil {
			s.logger.Error("scheduled cleaning failed", "root", t.Root, "error", err)
		}
		results = append(results, Result{Root: t.Root, Report: report, Err: err})
	}

	return results
}

func (s *Scheduler) cleanTarget(ctx context.Context, t Target) (*rundir.Report, error) {
	mgr, err := s.factory(t.Root)
	if err != nil {
		return nil, fmt.Errorf("open root %q: %w", t.Root, err)
	}

	l, err := s.acquire(ctx, mgr.Root())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := l.Release(); err != nil {
			s.logger.Warn("failed to release root lock", "root", t.Root, "error", err)
		}
	}()

	return mgr.Clean(ctx, t.Options)
}

func (s *Scheduler) acquire(ctx context.Context, root string) (*lock.RootLock, error) {
	if s.config.LockTimeout <= 0 {
		return lock.TryAcquire(root)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.config.LockTimeout)
	defer cancel()
	return lock.Acquire(lockCtx, root, 0)
}

// Stop stops the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done := s.cron.Stop()
	s.mu.Unlock()

	// Jobs read the targets under mu, so wait only after releasing it.
	<-done.Done()
	s.passMu.Lock()
	s.passMu.Unlock()

	s.logger.Info("cleaning scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled pass, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}
