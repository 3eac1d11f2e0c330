package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_FiresAfterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte("steps: []\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 50*time.Millisecond, nil, func() { fired <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("steps: []\n# edited\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "s.yaml"), 0, nil, func() {})
	if err == nil {
		t.Error("Watch() on a missing directory returned nil")
	}
}
