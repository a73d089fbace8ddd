package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig configures the SQLite journal backend.
type SQLiteConfig struct {
	// Driver selects the database/sql driver: "sqlite" or "sqlite3".
	// Default: "sqlite"
	Driver string

	// Path is the database file path. Parent directories are created.
	Path string

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:      DriverModernc,
		Path:        "data/rundir.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and if needed creates) a journal database.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverMattn {
		return nil, NewStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", config.Driver))
	}
	if strings.TrimSpace(config.Path) == "" {
		return nil, NewStorageError("sqlite", "open", fmt.Errorf("database path is empty"))
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "journal.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError("sqlite", "create_dir", err)
		}
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("journal opened",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if !version.Valid || version.Int64 != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	return nil
}

// Append inserts record.
func (s *SQLiteStore) Append(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStorageError("sqlite", "append", fmt.Errorf("record is nil"))
	}

	deleted, _ := json.Marshal(nonNil(record.Deleted))
	moved, _ := json.Marshal(nonNil(record.Moved))
	malformed, _ := json.Marshal(nonNil(record.Malformed))

	var runName, errMsg interface{}
	if record.RunName != "" {
		runName = record.RunName
	}
	if record.Error != "" {
		errMsg = record.Error
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operations (
			id, root, operation, outcome, run_name, keep, dry_run,
			deleted, moved, malformed, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Root, string(record.Operation), string(record.Outcome), runName,
		record.Keep, record.DryRun,
		string(deleted), string(moved), string(malformed), errMsg,
		record.StartedAt.UnixNano(), record.FinishedAt.UnixNano(),
	)
	if err != nil {
		return NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query returns matching records, newest first.
func (s *SQLiteStore) Query(ctx context.Context, q *Query) ([]*Record, error) {
	if q == nil {
		q = &Query{}
	}

	var conditions []string
	var args []interface{}
	if q.Root != "" {
		conditions = append(conditions, "root = ?")
		args = append(args, q.Root)
	}
	if q.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, string(q.Operation))
	}
	if q.Since != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}

	sqlQuery := `SELECT id, root, operation, outcome, run_name, keep, dry_run,
		deleted, moved, malformed, error, started_at, finished_at FROM operations`
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started_at DESC LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Prune deletes records started before cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM operations WHERE started_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError("sqlite", "prune", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "prune", err)
	}

	s.logger.Debug("journal pruned", "deleted_count", n, "cutoff", cutoff)
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		r                         Record
		operation, outcome        string
		runName, errMsg           sql.NullString
		deleted, moved, malformed sql.NullString
		startedAt, finishedAt     int64
	)

	if err := rows.Scan(
		&r.ID, &r.Root, &operation, &outcome, &runName, &r.Keep, &r.DryRun,
		&deleted, &moved, &malformed, &errMsg, &startedAt, &finishedAt,
	); err != nil {
		return nil, err
	}

	r.Operation = Operation(operation)
	r.Outcome = Outcome(outcome)
	r.RunName = runName.String
	r.Error = errMsg.String
	r.StartedAt = time.Unix(0, startedAt).UTC()
	r.FinishedAt = time.Unix(0, finishedAt).UTC()

	for _, field := range []struct {
		raw sql.NullString
		dst *[]string
	}{
		{deleted, &r.Deleted},
		{moved, &r.Moved},
		{malformed, &r.Malformed},
	} {
		if !field.raw.Valid || field.raw.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(field.raw.String), field.dst); err != nil {
			return nil, fmt.Errorf("decode name list: %w", err)
		}
	}

	return &r, nil
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
