package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "clean.keep").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRoots(cfg.Roots)...)
	errs = append(errs, validateLayout(&cfg.Layout)...)
	errs = append(errs, validateClean(&cfg.Clean)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateRoots(roots []RootConfig) []FieldError {
	var errs []FieldError
	seen := make(map[string]int, len(roots))

	for i, root := range roots {
		prefix := fmt.Sprintf("roots[%d]", i)

		if strings.TrimSpace(root.Path) == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".path",
				Message: "root path is required",
			})
			continue
		}

		clean := filepath.Clean(root.Path)
		if j, dup := seen[clean]; dup {
			errs = append(errs, FieldError{
				Field:   prefix + ".path",
				Message: fmt.Sprintf("duplicate root %q (also roots[%d])", root.Path, j),
			})
		}
		seen[clean] = i

		if root.Keep < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".keep",
				Message: "keep must be positive, or 0 to inherit clean.keep",
			})
		}
		errs = append(errs, validateSuffixes(prefix+".protected_file_types", root.ProtectedFileTypes)...)
	}

	return errs
}

func validateLayout(cfg *LayoutConfig) []FieldError {
	var errs []FieldError

	for _, dir := range []struct{ field, value string }{
		{"layout.active_dir", cfg.ActiveDir},
		{"layout.archive_dir", cfg.ArchiveDir},
	} {
		switch {
		case dir.value == "":
			errs = append(errs, FieldError{Field: dir.field, Message: "directory name is required"})
		case dir.value == "." || dir.value == ".." || strings.ContainsAny(dir.value, `/\`):
			errs = append(errs, FieldError{
				Field:   dir.field,
				Message: fmt.Sprintf("%q must be a single directory name", dir.value),
			})
		case strings.HasPrefix(dir.value, "."):
			errs = append(errs, FieldError{
				Field:   dir.field,
				Message: fmt.Sprintf("%q must not be a hidden directory", dir.value),
			})
		}
	}

	if cfg.ActiveDir != "" && cfg.ActiveDir == cfg.ArchiveDir {
		errs = append(errs, FieldError{
			Field:   "layout.archive_dir",
			Message: "archive directory must differ from the active directory",
		})
	}

	return errs
}

func validateClean(cfg *CleanConfig) []FieldError {
	var errs []FieldError

	if cfg.Keep < 1 {
		errs = append(errs, FieldError{
			Field:   "clean.keep",
			Message: fmt.Sprintf("keep must be at least 1, got %d", cfg.Keep),
		})
	}
	errs = append(errs, validateSuffixes("clean.protected_file_types", cfg.ProtectedFileTypes)...)

	return errs
}

func validateSuffixes(field string, suffixes []string) []FieldError {
	var errs []FieldError
	for i, s := range suffixes {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "file type must not be empty",
			})
		}
	}
	return errs
}

func validateSchedule(cfg *ScheduleConfig) []FieldError {
	var errs []FieldError

	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		errs = append(errs, FieldError{
			Field:   "schedule.cron",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Cron, err),
		})
	}
	if cfg.LockTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "schedule.lock_timeout",
			Message: "lock timeout must not be negative",
		})
	}

	return errs
}

func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	// If the journal is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "journal.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "journal.path",
			Message: "journal path is required when the journal is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.busy_timeout",
			Message: "busy timeout must not be negative",
		})
	}
	if cfg.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.max_age",
			Message: "max age must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	// Validate metrics endpoint
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" || !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/' when metrics are enabled",
			})
		}
		if _, _, err := net.SplitHostPort(cfg.Metrics.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: fmt.Sprintf("invalid listen address %q: %v", cfg.Metrics.ListenAddress, err),
			})
		}
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
