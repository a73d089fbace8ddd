package rundir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the set of filesystem primitives a Manager relies on. All
// operations are synchronous and are never retried.
type FileSystem interface {
	// DirExists reports whether path exists and is a directory.
	DirExists(path string) (bool, error)

	// Mkdir creates a single directory. It fails if the parent is missing or
	// path already exists.
	Mkdir(path string) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// List returns the entries of the directory at path.
	List(path string) ([]fs.DirEntry, error)

	// Move relocates src into the directory dstParent, keeping its base name.
	Move(src, dstParent string) error

	// RemoveAll deletes path and everything under it. Deletion is permanent.
	RemoveAll(path string) error

	// Walk visits every file and directory under root.
	Walk(root string, fn fs.WalkDirFunc) error
}

// OSFileSystem implements FileSystem on the host filesystem.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

// DirExists reports whether path is an existing directory.
func (OSFileSystem) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Mkdir creates path with mode 0755.
func (OSFileSystem) Mkdir(path string) error {
	return os.Mkdir(path, 0o755)
}

// MkdirAll creates path and its parents with mode 0755.
func (OSFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// List reads the directory at path.
func (OSFileSystem) List(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Move renames src into dstParent. Both must be on the same volume. An
// existing destination is never overwritten.
func (OSFileSystem) Move(src, dstParent string) error {
	dst := filepath.Join(dstParent, filepath.Base(src))

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move %q: destination %q: %w", src, dst, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("move %q: stat destination: %w", src, err)
	}

	return os.Rename(src, dst)
}

// RemoveAll deletes path recursively.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Walk walks the tree rooted at root.
func (OSFileSystem) Walk(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}
