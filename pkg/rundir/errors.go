package rundir

import "fmt"

// DirectoryCreationError reports a failure to create the layout or a new run
// directory.
type DirectoryCreationError struct {
	Path  string // Directory that could not be created
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("cannot create directory %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DirectoryCreationError) Unwrap() error {
	return e.Cause
}

// NewDirectoryCreationError creates a new DirectoryCreationError.
func NewDirectoryCreationError(path string, cause error) *DirectoryCreationError {
	return &DirectoryCreationError{
		Path:  path,
		Cause: cause,
	}
}

// ProtectedFileDetectedError reports a protected file type found under the
// archive. A cleaning pass that returns it has not modified anything.
type ProtectedFileDetectedError struct {
	Dir       string // Directory containing the file
	File      string // Full path of the offending file
	Extension string // Matched protected suffix
}

// Error implements the error interface.
func (e *ProtectedFileDetectedError) Error() string {
	return fmt.Sprintf("abort directory cleaning: there is a %s file present in the directory: %s", e.Extension, e.Dir)
}

// NewProtectedFileDetectedError creates a new ProtectedFileDetectedError.
func NewProtectedFileDetectedError(dir, file, extension string) *ProtectedFileDetectedError {
	return &ProtectedFileDetectedError{
		Dir:       dir,
		File:      file,
		Extension: extension,
	}
}
