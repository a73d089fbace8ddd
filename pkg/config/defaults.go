package config

import "time"

// Default values for configuration fields.
const (
	// Layout defaults
	DefaultActiveDir  = "current_run"
	DefaultArchiveDir = "past_run"

	// Clean defaults
	DefaultKeep        = 5
	DefaultStrictNames = false

	// Schedule defaults
	DefaultScheduleCron        = "0 3 * * *"
	DefaultScheduleWatchConfig = true
	DefaultScheduleLockTimeout = 30 * time.Second

	// Journal defaults
	DefaultJournalEnabled     = true
	DefaultJournalDriver      = "sqlite"
	DefaultJournalPath        = "data/rundir.db"
	DefaultJournalWALMode     = true
	DefaultJournalBusyTimeout = 5 * time.Second
	DefaultJournalMaxAge      = 30 * 24 * time.Hour

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "rundir"
	DefaultTracingEnabled       = false
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingInsecure      = true
	DefaultTracingSamplingRate  = 1.0
	DefaultTracingServiceName   = "runctl"
)

// DefaultProtectedFileTypes are the suffixes protected when clean.protected_file_types
// is not set.
var DefaultProtectedFileTypes = []string{".py", ".cpp", ".hpp"}

// NewDefaultConfig returns a configuration with every default applied,
// including boolean defaults that ApplyDefaults cannot tell apart from an
// explicit false. LoadConfig decodes YAML on top of it.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Schedule: ScheduleConfig{
			WatchConfig: DefaultScheduleWatchConfig,
		},
		Journal: JournalConfig{
			Enabled: DefaultJournalEnabled,
			WALMode: DefaultJournalWALMode,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled:  DefaultTracingEnabled,
				Insecure: DefaultTracingInsecure,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Layout defaults
	if cfg.Layout.ActiveDir == "" {
		cfg.Layout.ActiveDir = DefaultActiveDir
	}
	if cfg.Layout.ArchiveDir == "" {
		cfg.Layout.ArchiveDir = DefaultArchiveDir
	}

	// Clean defaults
	if cfg.Clean.Keep == 0 {
		cfg.Clean.Keep = DefaultKeep
	}
	if cfg.Clean.ProtectedFileTypes == nil {
		cfg.Clean.ProtectedFileTypes = append([]string(nil), DefaultProtectedFileTypes...)
	}

	// Schedule defaults
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = DefaultScheduleCron
	}
	if cfg.Schedule.LockTimeout == 0 {
		cfg.Schedule.LockTimeout = DefaultScheduleLockTimeout
	}

	// Journal defaults
	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = DefaultJournalDriver
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.BusyTimeout == 0 {
		cfg.Journal.BusyTimeout = DefaultJournalBusyTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
