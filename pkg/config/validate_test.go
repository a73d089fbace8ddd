package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(NewDefaultConfig()); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty root path",
			mutate:    func(c *Config) { c.Roots = []RootConfig{{Path: " "}} },
			wantField: "roots[0].path",
		},
		{
			name: "duplicate roots",
			mutate: func(c *Config) {
				c.Roots = []RootConfig{{Path: "/srv/a"}, {Path: "/srv/a/"}}
			},
			wantField: "roots[1].path",
		},
		{
			name:      "negative root keep",
			mutate:    func(c *Config) { c.Roots = []RootConfig{{Path: "/a", Keep: -1}} },
			wantField: "roots[0].keep",
		},
		{
			name:      "empty protected type",
			mutate:    func(c *Config) { c.Clean.ProtectedFileTypes = []string{".py", ""} },
			wantField: "clean.protected_file_types[1]",
		},
		{
			name:      "nested layout",
			mutate:    func(c *Config) { c.Layout.ActiveDir = "runs/live" },
			wantField: "layout.active_dir",
		},
		{
			name:      "hidden layout",
			mutate:    func(c *Config) { c.Layout.ArchiveDir = ".past" },
			wantField: "layout.archive_dir",
		},
		{
			name:      "identical layout",
			mutate:    func(c *Config) { c.Layout.ArchiveDir = c.Layout.ActiveDir },
			wantField: "layout.archive_dir",
		},
		{
			name:      "zero keep",
			mutate:    func(c *Config) { c.Clean.Keep = 0 },
			wantField: "clean.keep",
		},
		{
			name:      "bad cron",
			mutate:    func(c *Config) { c.Schedule.Cron = "61 * * * *" },
			wantField: "schedule.cron",
		},
		{
			name:      "journal path",
			mutate:    func(c *Config) { c.Journal.Path = "" },
			wantField: "journal.path",
		},
		{
			name:      "negative max age",
			mutate:    func(c *Config) { c.Journal.MaxAge = -1 },
			wantField: "journal.max_age",
		},
		{
			name:      "log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "metrics address",
			mutate:    func(c *Config) { c.Telemetry.Metrics.ListenAddress = "9464" },
			wantField: "telemetry.metrics.listen_address",
		},
		{
			name:      "metrics path",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name:      "sample ratio",
			mutate:    func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			var valErr ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range valErr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, valErr.Errors)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipChecks(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Enabled = false
	cfg.Journal.Driver = "postgres"
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.ListenAddress = "nope"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled sections to be skipped, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "clean.keep", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: clean.keep: bad" {
		t.Errorf("unexpected message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: y") {
		t.Errorf("unexpected message %q", got)
	}
}
