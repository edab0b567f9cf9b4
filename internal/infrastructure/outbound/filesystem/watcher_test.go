package filesystem_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/stubwire/internal/testutil"
)

func startWatcher(t *testing.T, dir string, debounce time.Duration, reloads *atomic.Int32) *filesystem.Watcher {
	t.Helper()
	w, err := filesystem.NewWatcher(dir, debounce, &testutil.NoopLogger{}, func() {
		reloads.Add(1)
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	t.Cleanup(w.Stop)
	w.Start()
	return w
}

func TestWatcher_DetectsSeedCreate(t *testing.T) {
	dir := t.TempDir()

	var reloads atomic.Int32
	startWatcher(t, dir, 100*time.Millisecond, &reloads)

	if err := os.WriteFile(filepath.Join(dir, "new.yaml"), []byte("endpointId: /x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if reloads.Load() < 1 {
		t.Error("expected at least one reload")
	}
}

func TestWatcher_DetectsSeedModify(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "existing.yaml")
	if err := os.WriteFile(f, []byte("endpointId: /v1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reloads atomic.Int32
	startWatcher(t, dir, 100*time.Millisecond, &reloads)

	if err := os.WriteFile(f, []byte("endpointId: /v2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if reloads.Load() < 1 {
		t.Error("expected at least one reload on modify")
	}
}

func TestWatcher_IgnoresNonSeedFiles(t *testing.T) {
	dir := t.TempDir()

	var reloads atomic.Int32
	startWatcher(t, dir, 100*time.Millisecond, &reloads)

	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if reloads.Load() != 0 {
		t.Error("expected no reload for non-seed files")
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	var reloads atomic.Int32
	startWatcher(t, dir, 200*time.Millisecond, &reloads)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "burst.yaml"), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if count := reloads.Load(); count > 2 {
		t.Errorf("expected 1-2 reloads after debouncing, got %d", count)
	}
}
