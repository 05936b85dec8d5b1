package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) handle(kind, rel string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+rel)
	r.mu.Unlock()
}

func (r *recorder) count(e string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.events {
		if got == e {
			n++
		}
	}
	return n
}

func (r *recorder) has(e string) bool { return r.count(e) > 0 }

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

func start(t *testing.T, cfg Config, r *recorder) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, cfg, logger, r.handle) //nolint:errcheck
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_NewFileReported(t *testing.T) {
	root := t.TempDir()
	r := &recorder{}
	start(t, Config{Root: root, Dirs: []string{"Drafts"}, Extensions: []string{".md"}, Debounce: 50 * time.Millisecond}, r)

	_ = os.WriteFile(filepath.Join(root, "Drafts", "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return r.has("changed:Drafts/new.md")
	}, "expected changed:Drafts/new.md callback")
}

func TestWatch_FiltersExtensionsAndHidden(t *testing.T) {
	root := t.TempDir()
	r := &recorder{}
	start(t, Config{Root: root, Dirs: []string{"Drafts"}, Extensions: []string{".md"}, Debounce: 20 * time.Millisecond}, r)

	_ = os.WriteFile(filepath.Join(root, "Drafts", "pic.png"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "Drafts", ".swap.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "Drafts", "ok.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return r.has("changed:Drafts/ok.md")
	}, "expected ok.md callback")
	if r.has("changed:Drafts/pic.png") || r.has("changed:Drafts/.swap.md") {
		t.Error("filtered files reported")
	}
}

func TestWatch_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	r := &recorder{}
	start(t, Config{Root: root, Dirs: []string{"References"}, Debounce: 300 * time.Millisecond}, r)

	p := filepath.Join(root, "References", "burst.md")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(p, []byte{byte('a' + i)}, 0o644)
		time.Sleep(20 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return r.has("changed:References/burst.md")
	}, "expected burst callback")
	time.Sleep(500 * time.Millisecond)
	if n := r.count("changed:References/burst.md"); n != 1 {
		t.Errorf("callbacks = %d, want 1", n)
	}
}

func TestWatch_RemoveAndRename(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "References")
	_ = os.MkdirAll(dir, 0o755)
	_ = os.WriteFile(filepath.Join(dir, "del.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "old.md"), []byte("x"), 0o644)

	r := &recorder{}
	start(t, Config{Root: root, Dirs: []string{"References"}, Debounce: 50 * time.Millisecond}, r)

	_ = os.Remove(filepath.Join(dir, "del.md"))
	_ = os.Rename(filepath.Join(dir, "old.md"), filepath.Join(dir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return r.has("removed:References/del.md") && r.has("removed:References/old.md") && r.has("changed:References/renamed.md")
	}, "rename/remove not reported")
}

func TestMatches(t *testing.T) {
	exts := []string{".md", ".txt"}
	for _, name := range []string{"a.md", "B.MD", "c.txt"} {
		if !matches(name, exts) {
			t.Errorf("%s should match", name)
		}
	}
	if matches("d.png", exts) {
		t.Error("d.png should not match")
	}
	if !matches("anything", nil) {
		t.Error("empty filter should match all")
	}
}
