package vault

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventCollector struct {
	mu     sync.Mutex
	events []string
}

func (c *eventCollector) emit(ev Event) {
	c.mu.Lock()
	c.events = append(c.events, ev.Kind+":"+ev.Path)
	c.mu.Unlock()
}

func (c *eventCollector) has(want string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e == want {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatch_NewFileEmitsCreated(t *testing.T) {
	vaultDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var c eventCollector
	go Watch(ctx, vaultDir, testLogger(), c.emit)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return c.has("created:new.md")
	}, "expected created:new.md event")
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	vaultDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var c eventCollector
	go Watch(ctx, vaultDir, testLogger(), c.emit)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "ignore.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "keep.md"), []byte("# k"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return c.has("created:keep.md")
	}, "expected created:keep.md event")
	if c.has("created:ignore.txt") {
		t.Error("non-markdown file produced an event")
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	vaultDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var c eventCollector
	go Watch(ctx, vaultDir, testLogger(), c.emit)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(vaultDir, "sub")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(subDir, "inner.md"), []byte("# inner"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return c.has("created:sub/inner.md")
	}, "expected created:sub/inner.md event")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	vaultDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, vaultDir, testLogger(), func(Event) {})
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}
