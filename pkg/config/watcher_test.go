package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	reset()
	t.Cleanup(reset)

	path := writeConfig(t, "clean:\n  keep: 3\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func(c *Config) { changed <- c }) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	// An invalid edit is ignored.
	if err := os.WriteFile(path, []byte("clean:\n  keep: -4\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if GetConfig().Clean.Keep != 3 {
		t.Fatal("invalid edit replaced the configuration")
	}

	// A sibling file is not the configuration.
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := os.WriteFile(path, []byte("clean:\n  keep: 6\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Clean.Keep != 6 {
			t.Errorf("expected keep 6 after reload, got %d", cfg.Clean.Keep)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewWatcher_EmptyPath(t *testing.T) {
	if _, err := NewWatcher("", 0, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
