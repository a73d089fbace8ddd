package rundir

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultProtectedFileTypes are the file suffixes that block cleaning.
var DefaultProtectedFileTypes = []string{".py", ".cpp", ".hpp"}

// findProtected walks root and returns a *ProtectedFileDetectedError for the
// first non-directory entry whose name ends with one of suffixes.
func findProtected(fsys FileSystem, root string, suffixes []string) error {
	if len(suffixes) == 0 {
		return nil
	}

	return fsys.Walk(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		for _, suffix := range suffixes {
			if suffix != "" && strings.HasSuffix(name, suffix) {
				return NewProtectedFileDetectedError(filepath.Dir(path), path, suffix)
			}
		}
		return nil
	})
}
