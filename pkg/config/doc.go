// Package config provides configuration management for runctl.
//
// Configuration is read from a YAML file, completed with defaults, optionally
// overridden from the environment and validated before use.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("rundir.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("rundir.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RUNDIR_SECTION_FIELD:
//
//   - RUNDIR_CLEAN_KEEP overrides clean.keep
//   - RUNDIR_SCHEDULE_CRON overrides schedule.cron
//   - RUNDIR_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// RUNDIR_ROOTS takes a comma-separated list of root paths and replaces the
// roots section entirely.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values
//  2. YAML file values
//  3. Environment variable overrides
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and calls back with
// the new configuration after a debounce interval. A file that fails to load
// or validate is logged and the previous configuration stays in effect.
//
// # Global Configuration
//
// Initialize stores the configuration as a process-wide singleton, read back
// with GetConfig. Tests should pass *Config explicitly instead.
package config
