package runname

import "fmt"

// MalformedNameError reports a directory name whose timestamp suffix cannot be
// decoded.
type MalformedNameError struct {
	Name   string // Offending directory name
	Reason string // Why decoding failed
	Cause  error  // Underlying parse error, if any
}

// Error implements the error interface.
func (e *MalformedNameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed run name %q: %s: %v", e.Name, e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed run name %q: %s", e.Name, e.Reason)
}

// Unwrap returns the underlying cause error.
func (e *MalformedNameError) Unwrap() error {
	return e.Cause
}

// NewMalformedNameError creates a new MalformedNameError.
func NewMalformedNameError(name, reason string, cause error) *MalformedNameError {
	return &MalformedNameError{
		Name:   name,
		Reason: reason,
		Cause:  cause,
	}
}
