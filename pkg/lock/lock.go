// Package lock serializes run directory operations on one root across
// processes with flock(2).
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// FileName is the lock file created under each root. It is hidden so cleaning
// passes skip it.
const FileName = ".runctl.lock"

// DefaultRetryInterval is how often Acquire retries a held lock.
const DefaultRetryInterval = 100 * time.Millisecond

// ErrLocked is returned by TryAcquire when another process holds the lock.
var ErrLocked = errors.New("root is locked by another process")

// RootLock is an exclusive lock on a root. The lock is held while the file
// descriptor stays open.
type RootLock struct {
	path string
	f    *os.File
}

// PathFor returns the lock file path for root.
func PathFor(root string) string {
	return filepath.Join(root, FileName)
}

// TryAcquire takes the lock for root without blocking. The PID of the holder
// is written into the lock file.
func TryAcquire(root string) (*RootLock, error) {
	if root == "" {
		return nil, fmt.Errorf("lock root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := PathFor(root)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	l := &RootLock{path: path, f: f}
	if err := l.writePID(); err != nil {
		_ = l.Release()
		return nil, err
	}

	return l, nil
}

// Acquire blocks until the lock for root is taken or ctx is done.
func Acquire(ctx context.Context, root string, retry time.Duration) (*RootLock, error) {
	if retry <= 0 {
		retry = DefaultRetryInterval
	}

	ticker := time.NewTicker(retry)
	defer ticker.Stop()

	for {
		l, err := TryAcquire(root)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrLocked) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: gave up waiting for %s: %w", ErrLocked, PathFor(root), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RootLock) writePID() error {
	if err := l.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := l.f.Seek(0, 0); err != nil {
		return fmt.Errorf("seek lock file: %w", err)
	}
	if _, err := fmt.Fprintf(l.f, "%d\n", os.Getpid()); err != nil {
		return fmt.Errorf("write pid: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync lock file: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *RootLock) Path() string { return l.path }

// Release drops the lock. It is safe to call more than once.
func (l *RootLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}
