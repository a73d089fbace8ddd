package cli

import (
	"errors"
	"fmt"

	"mercator-hq/rundir/pkg/config"
	"mercator-hq/rundir/pkg/lock"
	"mercator-hq/rundir/pkg/rundir"
	"mercator-hq/rundir/pkg/runname"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitConfig    = 2
	ExitProtected = 3
	ExitLocked    = 4
	ExitMalformed = 5
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		configErr     *ConfigError
		validationErr config.ValidationError
		protectedErr  *rundir.ProtectedFileDetectedError
		malformedErr  *runname.MalformedNameError
	)
	switch {
	case errors.As(err, &protectedErr):
		return ExitProtected
	case errors.Is(err, lock.ErrLocked):
		return ExitLocked
	case errors.As(err, &malformedErr):
		return ExitMalformed
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitConfig
	default:
		return ExitFailure
	}
}
