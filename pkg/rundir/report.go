package rundir

import (
	"time"

	"mercator-hq/rundir/pkg/journal"
	"mercator-hq/rundir/pkg/runname"
)

// Report describes a cleaning pass. For dry runs Deleted and Moved list what
// would have happened.
type Report struct {
	Root   string `json:"root"`
	Keep   int    `json:"keep"`
	DryRun bool   `json:"dry_run"`

	// Active and Archive are the listings the pass started from.
	Active  []string `json:"active"`
	Archive []string `json:"archive"`

	// Kept are the names that survive the pass.
	Kept []string `json:"kept"`

	// Deleted are archive names removed by the pass.
	Deleted []string `json:"deleted"`

	// Moved are active names moved into the archive.
	Moved []string `json:"moved"`

	// Malformed are names excluded from selection because they could not be
	// decoded.
	Malformed []string `json:"malformed,omitempty"`

	// Skipped are hidden housekeeping entries that were ignored.
	Skipped []string `json:"skipped,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the pass took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome classifies the pass for metrics and the journal.
func (r *Report) Outcome(err error) journal.Outcome {
	switch {
	case err == nil && r.DryRun:
		return journal.OutcomeDryRun
	case err == nil:
		return journal.OutcomeOK
	case isProtected(err):
		return journal.OutcomeProtected
	default:
		return journal.OutcomeError
	}
}

// Status is a decoded snapshot of a root.
type Status struct {
	Root   string `json:"root"`
	Layout Layout `json:"layout"`

	// Active and Archive are sorted newest first.
	Active  []runname.Entry `json:"active"`
	Archive []runname.Entry `json:"archive"`

	Malformed []string `json:"malformed,omitempty"`
}
