package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/rundir/pkg/journal"
	"mercator-hq/rundir/pkg/lock"
	"mercator-hq/rundir/pkg/rundir"
	"mercator-hq/rundir/pkg/runname"
)

// seedRoot creates active and archived runs under root.
func seedRoot(t *testing.T, root string, active, archived int) {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < archived; i++ {
		name := runname.Encode(fmt.Sprintf("past%d", i), "1", base.Add(time.Duration(i)*time.Hour))
		if err := os.MkdirAll(filepath.Join(root, rundir.DefaultArchiveDir, name), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	for i := 0; i < active; i++ {
		name := runname.Encode(fmt.Sprintf("live%d", i), "1", base.Add(time.Duration(100+i)*time.Hour))
		if err := os.MkdirAll(filepath.Join(root, rundir.DefaultActiveDir, name), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
}

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.Name()[0] != '.' {
			n++
		}
	}
	return n
}

func newFactory(store journal.Store) ManagerFactory {
	return func(root string) (*rundir.Manager, error) {
		return rundir.NewManager(root, rundir.WithJournal(store))
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "valid daily schedule", schedule: "0 3 * * *", wantRunning: true},
		{name: "descriptor", schedule: "@hourly", wantRunning: true},
		{name: "empty schedule - no error, not running", schedule: ""},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(Config{Cron: tt.schedule}, newFactory(journal.NewMemoryStore()))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				next := s.NextRun()
				if next == nil {
					t.Fatal("NextRun() returned nil for running scheduler")
				}
				if !next.After(time.Now()) {
					t.Errorf("NextRun() = %v, want a future time", next)
				}
				if err := s.Start(ctx); err == nil {
					t.Error("second Start() expected error")
				}
			} else if s.NextRun() != nil {
				t.Error("NextRun() should be nil when not running")
			}

			s.Stop()
			if s.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewScheduler(Config{Cron: "0 3 * * *"}, newFactory(nil))

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancellation")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	store := journal.NewMemoryStore()
	rootA := t.TempDir()
	rootB := t.TempDir()
	seedRoot(t, rootA, 1, 9)
	seedRoot(t, rootB, 2, 2)

	s := NewScheduler(Config{}, newFactory(store))
	s.SetTargets([]Target{
		{Root: rootA, Options: rundir.CleanOptions{Keep: 5}},
		{Root: rootB, Options: rundir.CleanOptions{Keep: 3}},
	})

	results := s.RunOnce(context.Background())
	if len(results) != 2 {
		t.Fatalf("RunOnce() returned %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("root %s: %v", r.Root, r.Err)
		}
	}

	if got := countEntries(t, filepath.Join(rootA, rundir.DefaultArchiveDir)); got != 5 {
		t.Errorf("root A archive = %d, want 5", got)
	}
	if got := countEntries(t, filepath.Join(rootB, rundir.DefaultArchiveDir)); got != 3 {
		t.Errorf("root B archive = %d, want 3", got)
	}
	if store.Len() != 2 {
		t.Errorf("journal has %d records, want 2", store.Len())
	}

	// The lock file is released and hidden from cleaning.
	if _, err := os.Stat(lock.PathFor(rootA)); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
	l, err := lock.TryAcquire(rootA)
	if err != nil {
		t.Fatalf("root lock not released: %v", err)
	}
	_ = l.Release()
}

func TestScheduler_RunOnce_FailureDoesNotStopOthers(t *testing.T) {
	locked := t.TempDir()
	protected := t.TempDir()
	healthy := t.TempDir()
	seedRoot(t, locked, 1, 1)
	seedRoot(t, protected, 1, 1)
	seedRoot(t, healthy, 1, 6)

	if err := os.WriteFile(filepath.Join(protected, rundir.DefaultArchiveDir, "train.py"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	held, err := lock.TryAcquire(locked)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	defer held.Release()

	s := NewScheduler(Config{}, newFactory(nil))
	s.SetTargets([]Target{{Root: locked}, {Root: protected}, {Root: healthy}})

	results := s.RunOnce(context.Background())
	if len(results) != 3 {
		t.Fatalf("RunOnce() returned %d results, want 3", len(results))
	}

	if !errors.Is(results[0].Err, lock.ErrLocked) {
		t.Errorf("locked root error = %v, want ErrLocked", results[0].Err)
	}
	var protectedErr *rundir.ProtectedFileDetectedError
	if !errors.As(results[1].Err, &protectedErr) {
		t.Errorf("protected root error = %v, want *ProtectedFileDetectedError", results[1].Err)
	}
	if results[2].Err != nil {
		t.Errorf("healthy root error = %v", results[2].Err)
	}
	if got := countEntries(t, filepath.Join(healthy, rundir.DefaultArchiveDir)); got != 5 {
		t.Errorf("healthy archive = %d, want 5", got)
	}
}

func TestScheduler_LockTimeout(t *testing.T) {
	root := t.TempDir()
	seedRoot(t, root, 1, 0)

	held, err := lock.TryAcquire(root)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = held.Release()
	}()

	s := NewScheduler(Config{LockTimeout: 5 * time.Second}, newFactory(nil))
	s.SetTargets([]Target{{Root: root}})

	results := s.RunOnce(context.Background())
	if results[0].Err != nil {
		t.Fatalf("RunOnce() error = %v", results[0].Err)
	}
	if results[0].Report == nil || len(results[0].Report.Moved) != 1 {
		t.Errorf("report = %+v, want one moved run", results[0].Report)
	}
}

func TestScheduler_RunOnStart(t *testing.T) {
	root := t.TempDir()
	seedRoot(t, root, 1, 0)

	s := NewScheduler(Config{Cron: "0 3 * * *", RunOnStart: true}, newFactory(nil))
	s.SetTargets([]Target{{Root: root}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	active := filepath.Join(root, rundir.DefaultActiveDir)
	deadline := time.Now().Add(5 * time.Second)
	for countEntries(t, active) != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if countEntries(t, active) != 0 {
		t.Error("run on start did not clean the root")
	}
}

func TestScheduler_Reschedule(t *testing.T) {
	s := NewScheduler(Config{Cron: "0 3 * * *"}, newFactory(nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Reschedule(ctx, "not a cron"); err == nil {
		t.Error("Reschedule() expected error for invalid expression")
	}
	if err := s.Reschedule(ctx, "* * * * *"); err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}

	after := s.NextRun()
	if after == nil {
		t.Fatal("NextRun() nil after Reschedule")
	}
	if time.Until(*after) > time.Minute {
		t.Errorf("NextRun() = %v, want within a minute", after)
	}
}

type countingRecorder struct{ removed int64 }

func (c *countingRecorder) RecordJournalPrune(removed int64) { c.removed += removed }

func TestJournalPruner(t *testing.T) {
	store := journal.NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, age := range []time.Duration{time.Hour, 48 * time.Hour, 72 * time.Hour} {
		r := journal.NewRecord("/srv/a", journal.OperationClean)
		r.Outcome = journal.OutcomeOK
		r.StartedAt = now.Add(-age)
		r.FinishedAt = r.StartedAt
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rec := &countingRecorder{}
	p := NewJournalPruner(store, 24*time.Hour, rec)
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 || store.Len() != 1 {
		t.Errorf("Prune() deleted %d, remaining %d; want 2 and 1", deleted, store.Len())
	}
	if rec.removed != 2 {
		t.Errorf("recorded %d pruned records, want 2", rec.removed)
	}

	keepForever := NewJournalPruner(store, 0, nil)
	if deleted, err := keepForever.Prune(ctx); err != nil || deleted != 0 {
		t.Errorf("Prune() with zero max age = %d, %v", deleted, err)
	}

	var nilPruner *JournalPruner
	if _, err := nilPruner.Prune(ctx); err != nil {
		t.Errorf("nil pruner returned error: %v", err)
	}
}
