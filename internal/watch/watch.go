// Package watch re-runs a test command whenever files matching a set of
// glob patterns change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of file events (editor saves, git checkouts).
const DefaultDebounce = 300 * time.Millisecond

// ErrNoPatterns is returned when a Watcher has nothing to watch.
var ErrNoPatterns = errors.New("no watch patterns")

// RunFunc performs one run. It must return once ctx is cancelled.
type RunFunc func(ctx context.Context, trigger string) error

// Watcher runs a RunFunc once at start and again after matching changes.
// Runs never overlap: changes seen during a run schedule one follow-up run.
type Watcher struct {
	Root     string   // directory patterns are relative to; defaults to "."
	Patterns []string // doublestar globs, slash-separated
	Debounce time.Duration
	Logger   *log.Logger
}

func (w *Watcher) root() string {
	if w.Root == "" {
		return "."
	}
	return w.Root
}

func (w *Watcher) logger() *log.Logger {
	if w.Logger == nil {
		return log.New(io.Discard)
	}
	return w.Logger
}

// Run blocks until ctx is cancelled or the underlying watcher closes.
// Errors returned by run are logged, not fatal.
func (w *Watcher) Run(ctx context.Context, run RunFunc) error {
	if len(w.Patterns) == 0 {
		return ErrNoPatterns
	}
	for _, p := range w.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid watch pattern %q", p)
		}
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	lg := w.logger()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	dirs, err := w.watchDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			lg.Warn("failed to watch directory", "dir", dir, "err", err)
			continue
		}
		lg.Debug("watching", "dir", dir)
	}

	w.runOnce(ctx, run, "")

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		trigger string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				w.addIfDir(fsw, event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			lg.Debug("file event", "op", event.Op.String(), "path", event.Name)
			// Debounce: reset timer on each event
			trigger = event.Name
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			lg.Error("watcher error", "err", err)

		case <-fire:
			fire = nil
			w.runOnce(ctx, run, trigger)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, run RunFunc, trigger string) {
	if ctx.Err() != nil {
		return
	}
	if err := run(ctx, trigger); err != nil && ctx.Err() == nil {
		w.logger().Error("run failed", "err", err)
	}
}

// relevant reports whether a file event should trigger a re-run.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(w.root(), event.Name)
	if err != nil {
		return false
	}
	return w.Match(rel)
}

// Match reports whether a root-relative path matches any pattern.
func (w *Watcher) Match(rel string) bool {
	rel = filepath.ToSlash(filepath.Clean(rel))
	for _, p := range w.Patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// watchDirs returns the directories whose entries can match a pattern.
// A pattern's static prefix is watched; if the rest can cross directories
// the whole tree under it is walked. Hidden directories are skipped.
func (w *Watcher) watchDirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	for _, p := range w.Patterns {
		base, rest := doublestar.SplitPattern(p)
		dir := filepath.Join(w.root(), filepath.FromSlash(base))
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if !strings.Contains(rest, "/") && !strings.Contains(rest, "**") {
			add(dir)
			continue
		}
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	return dirs, nil
}

// addIfDir starts watching directories created after startup.
func (w *Watcher) addIfDir(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || isHidden(filepath.Base(path)) {
		return
	}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := fsw.Add(p); err != nil {
			w.logger().Warn("failed to watch directory", "dir", p, "err", err)
		}
		return nil
	})
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
