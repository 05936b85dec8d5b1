// Package watcher reports debounced file changes in a set of flat vault
// directories.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event kinds.
const (
	KindChanged = "changed"
	KindRemoved = "removed"
)

// Handler is called once per settled change. rel is the slash-separated
// vault-relative path.
type Handler func(kind, rel string)

// Config selects what is watched.
type Config struct {
	Root       string        // absolute vault root
	Dirs       []string      // vault-relative directories, watched without recursion
	Extensions []string      // lower-case extensions; empty means all files
	Debounce   time.Duration // quiet period before a change is reported
}

// Watch starts an fsnotify watcher on cfg.Dirs and calls h for every settled
// change until ctx is cancelled. Writes to the same path inside the debounce
// window collapse into one call. Missing directories are created.
func Watch(ctx context.Context, cfg Config, logger *slog.Logger, h Handler) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, d := range cfg.Dirs {
		abs := filepath.Join(cfg.Root, filepath.FromSlash(d))
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return err
		}
		if err := w.Add(abs); err != nil {
			return err
		}
	}
	logger.Info("watcher: started", slog.String("root", cfg.Root), slog.Any("dirs", cfg.Dirs))

	d := newDebouncer(cfg.Debounce, h)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") || !matches(name, cfg.Extensions) {
				continue
			}
			rel, relErr := filepath.Rel(cfg.Root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if info, statErr := os.Stat(ev.Name); statErr != nil || info.IsDir() {
					continue
				}
				logger.Debug("watcher: changed", slog.String("path", rel))
				d.trigger(KindChanged, rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create.
				logger.Debug("watcher: removed", slog.String("path", rel))
				d.trigger(KindRemoved, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func matches(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
}

// debouncer delays each path's handler call until no event arrived for it
// during the quiet period. The latest kind wins.
type debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	h       Handler
	timers  map[string]*time.Timer
	pending map[string]string
}

func newDebouncer(quiet time.Duration, h Handler) *debouncer {
	return &debouncer{
		quiet:   quiet,
		h:       h,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]string),
	}
}

func (d *debouncer) trigger(kind, rel string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[rel] = kind
	if t, ok := d.timers[rel]; ok {
		t.Reset(d.quiet)
		return
	}
	d.timers[rel] = time.AfterFunc(d.quiet, func() { d.fire(rel) })
}

func (d *debouncer) fire(rel string) {
	d.mu.Lock()
	kind, ok := d.pending[rel]
	delete(d.pending, rel)
	delete(d.timers, rel)
	d.mu.Unlock()
	if ok {
		d.h(kind, rel)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for rel, t := range d.timers {
		t.Stop()
		delete(d.timers, rel)
		delete(d.pending, rel)
	}
}
