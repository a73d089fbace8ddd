package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Roots lists the root directories managed by runctl.
	Roots []RootConfig `yaml:"roots"`

	// Layout names the active and archive locations under every root.
	Layout LayoutConfig `yaml:"layout"`

	// Clean holds cleaning defaults shared by all roots.
	Clean CleanConfig `yaml:"clean"`

	// Schedule controls the cleaning daemon.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Journal controls the operation journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RootConfig describes one managed root directory.
type RootConfig struct {
	// Path is the root directory.
	Path string `yaml:"path"`

	// Keep overrides clean.keep for this root (0 = inherit).
	Keep int `yaml:"keep"`

	// ProtectedFileTypes overrides clean.protected_file_types for this root.
	// Unset inherits, an empty list disables the protected file check.
	ProtectedFileTypes []string `yaml:"protected_file_types"`
}

// LayoutConfig names the locations under a root.
type LayoutConfig struct {
	// ActiveDir holds runs in progress.
	// Default: "current_run"
	ActiveDir string `yaml:"active_dir"`

	// ArchiveDir holds retired runs.
	// Default: "past_run"
	ArchiveDir string `yaml:"archive_dir"`
}

// CleanConfig contains cleaning pass defaults.
type CleanConfig struct {
	// Keep is the number of most recent runs kept by a pass.
	// Default: 5
	Keep int `yaml:"keep"`

	// ProtectedFileTypes are file suffixes that abort a pass when found in
	// the archive.
	// Default: [".py", ".cpp", ".hpp"]
	ProtectedFileTypes []string `yaml:"protected_file_types"`

	// StrictNames fails a pass on names that cannot be decoded.
	// Default: false
	StrictNames bool `yaml:"strict_names"`
}

// ScheduleConfig controls the cleaning daemon.
type ScheduleConfig struct {
	// Cron is the cleaning schedule in standard 5-field cron syntax.
	// Default: "0 3 * * *" (3 AM daily)
	Cron string `yaml:"cron"`

	// RunOnStart runs one pass over all roots when the daemon starts.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`

	// WatchConfig reloads the roots and clean settings when the file changes.
	// Default: true
	WatchConfig bool `yaml:"watch_config"`

	// LockTimeout bounds how long a pass waits for a root lock held by
	// another process.
	// Default: 30s
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// JournalConfig controls the SQLite operation journal.
type JournalConfig struct {
	// Enabled controls whether operations are journaled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (modernc.org/sqlite), "sqlite3" (mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/rundir.db"
	Path string `yaml:"path"`

	// WALMode enables SQLite write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long SQLite waits for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxAge is how long records are kept. The daemon prunes older records
	// after each scheduled pass. 0 keeps records forever.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the daemon serves Prometheus metrics.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address of the metrics HTTP server.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "rundir"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces.
	// Default: "runctl"
	ServiceName string `yaml:"service_name"`
}

// RootKeep returns the keep count for root, falling back to clean.keep.
func (c *Config) RootKeep(root RootConfig) int {
	if root.Keep > 0 {
		return root.Keep
	}
	return c.Clean.Keep
}

// RootProtectedFileTypes returns the protected suffixes for root, falling
// back to clean.protected_file_types.
func (c *Config) RootProtectedFileTypes(root RootConfig) []string {
	if root.ProtectedFileTypes != nil {
		return root.ProtectedFileTypes
	}
	return c.Clean.ProtectedFileTypes
}
