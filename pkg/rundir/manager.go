package rundir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rundir/pkg/journal"
	"mercator-hq/rundir/pkg/retention"
	"mercator-hq/rundir/pkg/runname"
)

// TracerName is the instrumentation name used for spans.
const TracerName = "mercator-hq/rundir"

// Manager creates and cleans run directories under one root.
type Manager struct {
	root    string
	layout  Layout
	fs      FileSystem
	now     func() time.Time
	logger  *slog.Logger
	metrics MetricsRecorder
	journal journal.Store
	tracer  trace.Tracer
}

// NewManager creates a Manager for root. The root and its locations are created
// lazily by the first operation.
func NewManager(root string, opts ...Option) (*Manager, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("root directory is empty")
	}

	m := &Manager{
		root:   filepath.Clean(trimmed),
		layout: DefaultLayout(),
		fs:     OSFileSystem{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.layout.Validate(); err != nil {
		return nil, err
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "rundir.manager", "root", m.root)
	if m.tracer == nil {
		m.tracer = otel.Tracer(TracerName)
	}

	return m, nil
}

// Root returns the managed root directory.
func (m *Manager) Root() string { return m.root }

// Layout returns the location names in use.
func (m *Manager) Layout() Layout { return m.layout }

// ActivePath returns the absolute or root-relative active location.
func (m *Manager) ActivePath() string {
	return filepath.Join(m.root, m.layout.ActiveDir)
}

// ArchivePath returns the absolute or root-relative archive location.
func (m *Manager) ArchivePath() string {
	return filepath.Join(m.root, m.layout.ArchiveDir)
}

// Ensure creates the root, active and archive locations if they are missing.
// It is idempotent.
func (m *Manager) Ensure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.fs.MkdirAll(m.root); err != nil {
		return NewDirectoryCreationError(m.root, err)
	}

	for _, dir := range []string{m.ActivePath(), m.ArchivePath()} {
		if err := m.fs.Mkdir(dir); err != nil && !errors.Is(err, fs.ErrExist) {
			return NewDirectoryCreationError(dir, err)
		}

		ok, err := m.fs.DirExists(dir)
		if err != nil {
			return NewDirectoryCreationError(dir, err)
		}
		if !ok {
			return NewDirectoryCreationError(dir, fmt.Errorf("path exists and is not a directory"))
		}
	}

	return nil
}

// Create makes a new run directory in the active location and returns its
// name. Two calls within the same second with the same run name and unique ID
// collide and the second fails with *DirectoryCreationError.
func (m *Manager) Create(ctx context.Context, runName, uniqueID string) (string, error) {
	ctx, span := m.tracer.Start(ctx, "rundir.Create", trace.WithAttributes(
		attribute.String("rundir.root", m.root),
		attribute.String("rundir.run_name", runName),
	))
	defer span.End()

	started := m.now()
	record := journal.NewRecord(m.root, journal.OperationCreate)
	record.StartedAt = started.UTC()

	name, err := m.create(ctx, runName, uniqueID, started)

	record.FinishedAt = m.now().UTC()
	record.RunName = name
	record.Outcome = journal.OutcomeOK
	if err != nil {
		record.Outcome = journal.OutcomeError
		record.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Error("run directory creation failed", "run_name", runName, "error", err)
	} else {
		span.SetAttributes(attribute.String("rundir.name", name))
		m.logger.Info("run directory created", "name", name)
	}

	if m.metrics != nil {
		m.metrics.RecordCreate(m.root, err == nil)
	}
	m.appendJournal(ctx, record)

	return name, err
}

func (m *Manager) create(ctx context.Context, runName, uniqueID string, ts time.Time) (string, error) {
	if err := runname.Validate(runName, uniqueID); err != nil {
		return "", NewDirectoryCreationError(m.ActivePath(), err)
	}

	if err := m.Ensure(ctx); err != nil {
		return "", err
	}

	name := runname.Encode(runName, uniqueID, ts)
	path := filepath.Join(m.ActivePath(), name)

	if err := m.fs.Mkdir(path); err != nil {
		return "", NewDirectoryCreationError(path, err)
	}

	return name, nil
}

// Clean retires active runs into the archive and prunes the archive. The
// returned Report is never nil, even on error.
func (m *Manager) Clean(ctx context.Context, opts CleanOptions) (*Report, error) {
	opts = opts.withDefaults()

	ctx, span := m.tracer.Start(ctx, "rundir.Clean", trace.WithAttributes(
		attribute.String("rundir.root", m.root),
		attribute.Int("rundir.keep", opts.Keep),
		attribute.Bool("rundir.dry_run", opts.DryRun),
	))
	defer span.End()

	report := &Report{
		Root:      m.root,
		Keep:      opts.Keep,
		DryRun:    opts.DryRun,
		StartedAt: m.now().UTC(),
	}

	err := m.clean(ctx, opts, report)
	report.FinishedAt = m.now().UTC()

	outcome := report.Outcome(err)
	span.SetAttributes(
		attribute.String("rundir.outcome", string(outcome)),
		attribute.Int("rundir.deleted", len(report.Deleted)),
		attribute.Int("rundir.moved", len(report.Moved)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	m.observeClean(ctx, report, outcome, err)

	return report, err
}

// Plan computes a cleaning pass without deleting or moving anything.
func (m *Manager) Plan(ctx context.Context, opts CleanOptions) (*Report, error) {
	opts.DryRun = true
	return m.Clean(ctx, opts)
}

func (m *Manager) clean(ctx context.Context, opts CleanOptions, report *Report) error {
	if opts.Keep < 1 {
		return fmt.Errorf("keep must be at least 1, got %d", opts.Keep)
	}

	if err := m.Ensure(ctx); err != nil {
		return err
	}

	activePath := m.ActivePath()
	archivePath := m.ArchivePath()

	active, skipped, err := m.list(activePath)
	if err != nil {
		return err
	}
	report.Active = active
	report.Skipped = append(report.Skipped, skipped...)

	archive, skipped, err := m.list(archivePath)
	if err != nil {
		return err
	}
	report.Archive = archive
	report.Skipped = append(report.Skipped, skipped...)

	selectFn := retention.Select
	if opts.Strict {
		selectFn = retention.SelectStrict
	}
	decision, err := selectFn(active, archive, opts.Keep)
	if err != nil {
		return err
	}
	report.Malformed = decision.Malformed
	for _, c := range decision.Keepers {
		report.Kept = append(report.Kept, c.Name)
	}

	if len(decision.Malformed) > 0 {
		m.logger.Warn("ignoring run directories with malformed names",
			"malformed_count", len(decision.Malformed),
			"names", decision.Malformed,
		)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := findProtected(m.fs, archivePath, opts.ProtectedFileTypes); err != nil {
		var protected *ProtectedFileDetectedError
		if errors.As(err, &protected) {
			return err
		}
		return fmt.Errorf("scan archive for protected files: %w", err)
	}

	if opts.DryRun {
		report.Deleted = decision.DeleteNames()
		report.Moved = append([]string(nil), active...)
		return nil
	}

	// Past the gate: no further cancellation checks, the pass runs to
	// completion or to the first filesystem error.
	for _, c := range decision.ToDelete {
		if err := m.fs.RemoveAll(filepath.Join(archivePath, c.Name)); err != nil {
			return fmt.Errorf("delete archived run %q: %w", c.Name, err)
		}
		report.Deleted = append(report.Deleted, c.Name)
	}

	for _, name := range active {
		if err := m.fs.Move(filepath.Join(activePath, name), archivePath); err != nil {
			return fmt.Errorf("archive run %q: %w", name, err)
		}
		report.Moved = append(report.Moved, name)
	}

	return nil
}

// Status returns the decoded contents of both locations.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	if err := m.Ensure(ctx); err != nil {
		return nil, err
	}

	status := &Status{Root: m.root, Layout: m.layout}

	for _, loc := range []struct {
		path string
		dst  *[]runname.Entry
	}{
		{m.ActivePath(), &status.Active},
		{m.ArchivePath(), &status.Archive},
	} {
		names, _, err := m.list(loc.path)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			entry, err := runname.Decode(name)
			if err != nil {
				status.Malformed = append(status.Malformed, name)
				continue
			}
			*loc.dst = append(*loc.dst, entry)
		}
		sort.SliceStable(*loc.dst, func(i, j int) bool {
			return (*loc.dst)[i].Timestamp.After((*loc.dst)[j].Timestamp)
		})
	}

	if m.metrics != nil {
		m.metrics.UpdateEntries(m.root, len(status.Active), len(status.Archive))
	}

	return status, nil
}

// list returns the visible entry names of dir, sorted, and the hidden ones
// that were skipped.
func (m *Manager) list(dir string) (names, skipped []string, err error) {
	entries, err := m.fs.List(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list %q: %w", dir, err)
	}

	for _, e := range entries {
		if isHousekeeping(e.Name()) {
			skipped = append(skipped, e.Name())
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, skipped, nil
}

// isHousekeeping reports entries the host creates on its own, such as
// .DS_Store or editor lock files.
func isHousekeeping(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (m *Manager) observeClean(ctx context.Context, report *Report, outcome journal.Outcome, err error) {
	if m.metrics != nil {
		m.metrics.RecordClean(m.root, string(outcome),
			len(report.Deleted), len(report.Moved), len(report.Malformed), report.Duration())

		var protected *ProtectedFileDetectedError
		if errors.As(err, &protected) {
			m.metrics.RecordProtectedFile(m.root, protected.Extension)
		}

		if err == nil && !report.DryRun {
			m.metrics.UpdateEntries(m.root, 0, len(report.Archive)-len(report.Deleted)+len(report.Moved))
		}
	}

	switch outcome {
	case journal.OutcomeOK, journal.OutcomeDryRun:
		m.logger.Info("cleaning pass completed",
			"dry_run", report.DryRun,
			"keep", report.Keep,
			"deleted_count", len(report.Deleted),
			"moved_count", len(report.Moved),
			"duration_ms", report.Duration().Milliseconds(),
		)
	case journal.OutcomeProtected:
		m.logger.Warn("cleaning pass aborted by protected file", "error", err)
	default:
		m.logger.Error("cleaning pass failed",
			"deleted_count", len(report.Deleted),
			"moved_count", len(report.Moved),
			"error", err,
		)
	}

	record := journal.NewRecord(m.root, journal.OperationClean)
	record.Outcome = outcome
	record.Keep = report.Keep
	record.DryRun = report.DryRun
	record.Deleted = report.Deleted
	record.Moved = report.Moved
	record.Malformed = report.Malformed
	record.StartedAt = report.StartedAt
	record.FinishedAt = report.FinishedAt
	if err != nil {
		record.Error = err.Error()
	}
	m.appendJournal(ctx, record)
}

// appendJournal stores record. Journal failures are logged and never fail the
// operation.
func (m *Manager) appendJournal(ctx context.Context, record *journal.Record) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Append(context.WithoutCancel(ctx), record); err != nil {
		m.logger.Warn("failed to journal operation",
			"operation", record.Operation,
			"error", err,
		)
	}
}

func isProtected(err error) bool {
	var protected *ProtectedFileDetectedError
	return errors.As(err, &protected)
}
