package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Operation identifies the kind of journaled operation.
type Operation string

const (
	// OperationCreate is a run directory creation.
	OperationCreate Operation = "create"
	// OperationClean is a cleaning pass.
	OperationClean Operation = "clean"
)

// Outcome is the result of a journaled operation.
type Outcome string

const (
	// OutcomeOK means the operation completed.
	OutcomeOK Outcome = "ok"
	// OutcomeDryRun means a cleaning pass was planned without mutating anything.
	OutcomeDryRun Outcome = "dry_run"
	// OutcomeProtected means the protected file gate aborted the pass.
	OutcomeProtected Outcome = "protected"
	// OutcomeError means the operation failed.
	OutcomeError Outcome = "error"
)

// Record is one journaled operation.
type Record struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Operation Operation `json:"operation"`
	Outcome   Outcome   `json:"outcome"`

	// RunName is the created directory name (create only).
	RunName string `json:"run_name,omitempty"`

	// Keep is the keep count of a cleaning pass.
	Keep int `json:"keep,omitempty"`

	// DryRun marks planned cleaning passes.
	DryRun bool `json:"dry_run,omitempty"`

	Deleted   []string `json:"deleted,omitempty"`
	Moved     []string `json:"moved,omitempty"`
	Malformed []string `json:"malformed,omitempty"`

	// Error is the error message for failed operations.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRecord creates a record with a fresh ID.
func NewRecord(root string, op Operation) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Root:      root,
		Operation: op,
	}
}

// Duration returns how long the operation took.
func (r *Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Query filters journal records.
type Query struct {
	// Root restricts results to one root directory. Empty matches all roots.
	Root string

	// Operation restricts results to one operation. Empty matches all.
	Operation Operation

	// Since excludes records started before this time.
	Since *time.Time

	// Limit caps the number of records returned (newest first).
	// Default: 100
	Limit int
}

// DefaultQueryLimit is used when Query.Limit is not positive.
const DefaultQueryLimit = 100

// Store persists journal records.
type Store interface {
	// Append stores a record.
	Append(ctx context.Context, record *Record) error

	// Query returns records matching q, newest first.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Prune removes records started before cutoff and returns how many were
	// removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
