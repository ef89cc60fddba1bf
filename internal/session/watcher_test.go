package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnvid/mdlink/internal/document"
	"github.com/arnvid/mdlink/internal/filestore"
)

func eventually(t *testing.T, timeout, tick time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatal(msg)
}

// diskFactory builds sessions over the real filesystem so watcher tests
// exercise actual fsnotify events.
func diskFactory() Factory {
	store := filestore.NewOS()
	return func(string) (*Session, error) {
		binding, err := NewBinding(&fakeSurface{}, nil)
		if err != nil {
			return nil, err
		}
		return New(document.New(""), store, binding, &fakeHost{}, &fakeNotifier{}, nil), nil
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatch_ReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "note.md")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(diskFactory())
	sess, err := mgr.Get("doc-1")
	if err != nil {
		t.Fatal(err)
	}
	sess.OpenTarget(target)
	if sess.Text() != "v1" {
		t.Fatalf("text = %q, want v1", sess.Text())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, mgr, 50*time.Millisecond, quietLogger()) }()

	// Let the initial watch list settle before editing.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(target, []byte("v2 external"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return sess.Text() == "v2 external"
	}, "session did not pick up external write")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after cancel")
	}
}

func TestWatch_PicksUpTargetsOpenedLater(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the watch-list rescan interval")
	}

	dir := t.TempDir()
	mgr := NewManager(diskFactory())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, mgr, 50*time.Millisecond, quietLogger()) }()

	// Target opened only after the watcher started.
	target := filepath.Join(dir, "late.md")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	sess, err := mgr.Get("doc-late")
	if err != nil {
		t.Fatal(err)
	}
	sess.OpenTarget(target)

	// The rescan interval must elapse before the new dir is watched.
	time.Sleep(2500 * time.Millisecond)

	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return sess.Text() == "v2"
	}, "watcher never picked up the late-opened target")
}

func TestWatch_SurvivesDirectoryRecreation(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the watch-list rescan interval")
	}

	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(sub, "note.md")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(diskFactory())
	sess, err := mgr.Get("doc-1")
	if err != nil {
		t.Fatal(err)
	}
	sess.OpenTarget(target)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, mgr, 50*time.Millisecond, quietLogger()) }()
	time.Sleep(100 * time.Millisecond)

	// Deleting the directory drops the kernel watch; the rescan must not
	// be fooled by its own bookkeeping into never re-adding the dir.
	if err := os.RemoveAll(sub); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2500 * time.Millisecond)

	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2500 * time.Millisecond)

	if err := os.WriteFile(target, []byte("v3"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return sess.Text() == "v3"
	}, "external edits after directory recreation never reached the session")
}

func TestManager_GetCreatesOnce(t *testing.T) {
	calls := 0
	mgr := NewManager(func(string) (*Session, error) {
		calls++
		binding, err := NewBinding(&fakeSurface{}, nil)
		if err != nil {
			return nil, err
		}
		return New(document.New(""), newFakeStore(), binding, &fakeHost{}, &fakeNotifier{}, nil), nil
	})

	a, err := mgr.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := mgr.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Get must return the same session for the same id")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}

	mgr.Close("d1")
	if _, ok := mgr.Peek("d1"); ok {
		t.Error("session still present after Close")
	}
	if _, err := mgr.Get("d1"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("factory called %d times after Close, want 2", calls)
	}
}

func TestManager_LocalTargets(t *testing.T) {
	mgr := NewManager(diskFactory())

	local, err := mgr.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	remote, err := mgr.Get("d2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Get("d3"); err != nil { // unlinked
		t.Fatal(err)
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "a.md")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	local.OpenTarget(target)
	remote.OpenTarget("https://example.com/a.md")

	targets := mgr.LocalTargets()
	if len(targets) != 1 {
		t.Fatalf("targets = %v, want only the local one", targets)
	}
	if got := targets[target]; len(got) != 1 || got[0] != local {
		t.Errorf("targets[%q] = %v", target, got)
	}
}
