package rundir

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default location names under a root.
const (
	DefaultActiveDir  = "current_run"
	DefaultArchiveDir = "past_run"
)

// Layout names the active and archive locations under a root.
type Layout struct {
	// ActiveDir holds runs in progress.
	ActiveDir string `yaml:"active_dir" json:"active_dir"`

	// ArchiveDir holds retired runs.
	ArchiveDir string `yaml:"archive_dir" json:"archive_dir"`
}

// DefaultLayout returns the current_run / past_run layout.
func DefaultLayout() Layout {
	return Layout{
		ActiveDir:  DefaultActiveDir,
		ArchiveDir: DefaultArchiveDir,
	}
}

// Validate checks that both locations are distinct single path elements.
func (l Layout) Validate() error {
	for _, dir := range []struct{ field, value string }{
		{"active_dir", l.ActiveDir},
		{"archive_dir", l.ArchiveDir},
	} {
		v := strings.TrimSpace(dir.value)
		if v == "" {
			return fmt.Errorf("layout %s is empty", dir.field)
		}
		if v == "." || v == ".." || strings.ContainsAny(v, `/\`) || filepath.Clean(v) != v {
			return fmt.Errorf("layout %s %q must be a single directory name", dir.field, dir.value)
		}
		if strings.HasPrefix(v, ".") {
			return fmt.Errorf("layout %s %q must not be hidden", dir.field, dir.value)
		}
	}
	if l.ActiveDir == l.ArchiveDir {
		return fmt.Errorf("layout active_dir and archive_dir must differ, both are %q", l.ActiveDir)
	}
	return nil
}
