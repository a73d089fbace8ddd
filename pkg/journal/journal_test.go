package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTempStore opens a journal in a temporary directory.
func createTempStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "journal.db")
	store, err := NewSQLiteStore(&SQLiteConfig{
		Driver:      DriverModernc,
		Path:        dbPath,
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store, dbPath
}

func sampleRecords(now time.Time) []*Record {
	create := NewRecord("/srv/a", OperationCreate)
	create.Outcome = OutcomeOK
	create.RunName = "Run--mnist-----------------------1-20240301120000"
	create.StartedAt = now.Add(-3 * time.Hour)
	create.FinishedAt = create.StartedAt.Add(time.Millisecond)

	clean := NewRecord("/srv/a", OperationClean)
	clean.Outcome = OutcomeOK
	clean.Keep = 5
	clean.Deleted = []string{"Run--old-1-20240101000000", "Run--old-2-20240102000000"}
	clean.Moved = []string{"Run--mnist-----------------------1-20240301120000"}
	clean.StartedAt = now.Add(-2 * time.Hour)
	clean.FinishedAt = clean.StartedAt.Add(40 * time.Millisecond)

	blocked := NewRecord("/srv/b", OperationClean)
	blocked.Outcome = OutcomeProtected
	blocked.Keep = 3
	blocked.Malformed = []string{"notes"}
	blocked.Error = "protected file type .py found"
	blocked.StartedAt = now.Add(-time.Hour)
	blocked.FinishedAt = blocked.StartedAt.Add(time.Millisecond)

	return []*Record{create, clean, blocked}
}

func TestNewRecord(t *testing.T) {
	a := NewRecord("/root", OperationClean)
	b := NewRecord("/root", OperationClean)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("NewRecord() IDs = %q, %q, want distinct non-empty", a.ID, b.ID)
	}
	if a.Root != "/root" || a.Operation != OperationClean {
		t.Errorf("NewRecord() = %+v", a)
	}
}

func TestSQLiteStore_Initialize(t *testing.T) {
	_, dbPath := createTempStore(t)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestSQLiteStore_AppendAndQuery(t *testing.T) {
	store, _ := createTempStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, r := range sampleRecords(now) {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	all, err := store.Query(ctx, &Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Query() returned %d records, want 3", len(all))
	}
	if all[0].Root != "/srv/b" {
		t.Errorf("Query() first root = %q, want newest record first", all[0].Root)
	}

	blocked := all[0]
	if blocked.Outcome != OutcomeProtected || blocked.Error == "" {
		t.Errorf("blocked record = %+v", blocked)
	}
	if len(blocked.Malformed) != 1 || blocked.Malformed[0] != "notes" {
		t.Errorf("Malformed = %v, want [notes]", blocked.Malformed)
	}

	clean := all[1]
	if len(clean.Deleted) != 2 || len(clean.Moved) != 1 {
		t.Errorf("clean record deleted=%v moved=%v", clean.Deleted, clean.Moved)
	}
	if clean.Keep != 5 {
		t.Errorf("Keep = %d, want 5", clean.Keep)
	}
	if clean.Duration() != 40*time.Millisecond {
		t.Errorf("Duration() = %v, want 40ms", clean.Duration())
	}

	create := all[2]
	if create.RunName == "" || create.Operation != OperationCreate {
		t.Errorf("create record = %+v", create)
	}
}

func TestSQLiteStore_QueryFilters(t *testing.T) {
	store, _ := createTempStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, r := range sampleRecords(now) {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	since := now.Add(-150 * time.Minute)
	tests := []struct {
		name  string
		query *Query
		want  int
	}{
		{name: "by root", query: &Query{Root: "/srv/a"}, want: 2},
		{name: "by operation", query: &Query{Operation: OperationClean}, want: 2},
		{name: "root and operation", query: &Query{Root: "/srv/a", Operation: OperationClean}, want: 1},
		{name: "since", query: &Query{Since: &since}, want: 2},
		{name: "limit", query: &Query{Limit: 1}, want: 1},
		{name: "unknown root", query: &Query{Root: "/nope"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() returned %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	store, _ := createTempStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, r := range sampleRecords(now) {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	deleted, err := store.Prune(ctx, now.Add(-90*time.Minute))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted = %d, want 2", deleted)
	}

	remaining, _ := store.Query(ctx, &Query{})
	if len(remaining) != 1 {
		t.Errorf("remaining records = %d, want 1", len(remaining))
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	cfg := &SQLiteConfig{Driver: DriverModernc, Path: dbPath}

	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	r := NewRecord("/srv/a", OperationClean)
	r.Outcome = OutcomeOK
	r.StartedAt = time.Now().UTC()
	r.FinishedAt = r.StartedAt
	if err := store.Append(context.Background(), r); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(&SQLiteConfig{Driver: DriverModernc, Path: dbPath})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != r.ID {
		t.Errorf("Query() after reopen = %+v", got)
	}
}

func TestNewSQLiteStore_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *SQLiteConfig
	}{
		{name: "unknown driver", cfg: &SQLiteConfig{Driver: "postgres", Path: "x.db"}},
		{name: "empty path", cfg: &SQLiteConfig{Driver: DriverModernc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSQLiteStore(tt.cfg)
			if err == nil {
				t.Fatal("NewSQLiteStore() expected error")
			}
			var storageErr *StorageError
			if !errors.As(err, &storageErr) {
				t.Errorf("error type = %T, want *StorageError", err)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, r := range sampleRecords(now) {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}

	got, err := store.Query(ctx, &Query{Root: "/srv/a"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Query() returned %d records, want 2", len(got))
	}
	if !got[0].StartedAt.After(got[1].StartedAt) {
		t.Error("Query() results not sorted newest first")
	}

	// Returned records are copies.
	got[0].Deleted[0] = "mutated"
	again, _ := store.Query(ctx, &Query{Root: "/srv/a", Operation: OperationClean})
	if again[0].Deleted[0] == "mutated" {
		t.Error("Query() returned a shared record")
	}

	removed, err := store.Prune(ctx, now.Add(-90*time.Minute))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 || store.Len() != 1 {
		t.Errorf("Prune() removed %d, Len() = %d, want 2 and 1", removed, store.Len())
	}

	if err := store.Append(ctx, nil); err == nil {
		t.Error("Append(nil) expected error")
	}
}
