package rundir

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rundir/pkg/journal"
)

// DefaultKeep is the default number of runs kept by a cleaning pass.
const DefaultKeep = 5

// MetricsRecorder receives operation outcomes. *metrics.Collector implements
// it.
type MetricsRecorder interface {
	RecordCreate(root string, success bool)
	RecordClean(root, outcome string, deleted, moved, malformed int, duration time.Duration)
	RecordProtectedFile(root, extension string)
	UpdateEntries(root string, active, archive int)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLayout overrides the active/archive location names.
func WithLayout(layout Layout) Option {
	return func(m *Manager) {
		m.layout = layout
	}
}

// WithFileSystem replaces the host filesystem.
func WithFileSystem(fsys FileSystem) Option {
	return func(m *Manager) {
		m.fs = fsys
	}
}

// WithClock replaces time.Now for name generation and reports.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(m *Manager) {
		m.metrics = recorder
	}
}

// WithJournal records every operation to store.
func WithJournal(store journal.Store) Option {
	return func(m *Manager) {
		m.journal = store
	}
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

// CleanOptions controls a cleaning pass.
type CleanOptions struct {
	// Keep is the number of most recent runs to keep. Active runs are always
	// kept, even beyond Keep.
	// Default: 5
	Keep int

	// ProtectedFileTypes are file suffixes whose presence anywhere under the
	// archive aborts the pass.
	// Default: .py, .cpp, .hpp
	ProtectedFileTypes []string

	// Strict fails the pass on the first name that cannot be decoded instead
	// of skipping it.
	Strict bool

	// DryRun computes and reports the pass without touching the filesystem
	// beyond creating missing locations.
	DryRun bool
}

func (o CleanOptions) withDefaults() CleanOptions {
	if o.Keep == 0 {
		o.Keep = DefaultKeep
	}
	if o.ProtectedFileTypes == nil {
		o.ProtectedFileTypes = append([]string(nil), DefaultProtectedFileTypes...)
	}
	return o
}
