// Package watch regenerates artifacts when project sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dusk-indust/dontreadme/internal/source"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a regeneration starts.
const DefaultDebounce = 2 * time.Second

// alwaysSkipped directories are never watched.
var alwaysSkipped = map[string]bool{".git": true, "node_modules": true}

// Options configures a Watcher.
type Options struct {
	Root    string
	Include []string
	Exclude []string
	// SkipDirs are root-relative directories that are not watched, such as
	// the output directory.
	SkipDirs []string
	Debounce time.Duration
}

// RegenerateFunc rebuilds the artifacts. It runs on its own goroutine.
type RegenerateFunc func(ctx context.Context) error

// Watcher triggers a regeneration after source files stop changing for the
// debounce period. At most one regeneration runs at a time; a trigger that
// arrives while one is running is dropped.
type Watcher struct {
	opts   Options
	regen  RegenerateFunc
	logger *slog.Logger
	fsw    *fsnotify.Watcher

	running atomic.Bool
	done    chan struct{}
}

// New creates a watcher over opts.Root. Call Run to start it.
func New(opts Options, regen RegenerateFunc, logger *slog.Logger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{opts: opts, regen: regen, logger: logger, fsw: fsw, done: make(chan struct{})}, nil
}

// Run watches until ctx is cancelled, then waits for a running
// regeneration to finish.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	if err := w.addRecursive(w.opts.Root); err != nil {
		return err
	}
	w.logger.Info("watching for changes", "root", w.opts.Root, "debounce", w.opts.Debounce)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		w.wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(ev.Name); err != nil {
						w.logger.Warn("watching new directory failed", "path", ev.Name, "err", err)
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.trigger(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// trigger starts a regeneration unless one is already running.
func (w *Watcher) trigger(ctx context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Info("regeneration already running, skipping")
		return false
	}
	w.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		defer w.running.Store(false)
		start := time.Now()
		if err := w.regen(ctx); err != nil {
			w.logger.Error("regeneration failed", "err", err)
			return
		}
		w.logger.Info("regenerated", "duration", time.Since(start).Round(time.Millisecond))
	}(w.done)
	return true
}

// wait blocks until the last started regeneration has finished.
func (w *Watcher) wait() {
	if w.running.Load() {
		<-w.done
	}
}

// relevant reports whether an event touches an included source file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	rel, ok := w.rel(ev.Name)
	if !ok {
		return false
	}
	for dir := filepath.Dir(filepath.FromSlash(rel)); dir != "."; dir = filepath.Dir(dir) {
		if w.skipDir(filepath.ToSlash(dir)) {
			return false
		}
	}
	return source.Included(rel, w.opts.Include, w.opts.Exclude)
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) skipDir(rel string) bool {
	if alwaysSkipped[filepath.Base(rel)] || source.SkipDir(rel, w.opts.Exclude) {
		return true
	}
	for _, d := range w.opts.SkipDirs {
		if rel == filepath.ToSlash(filepath.Clean(d)) {
			return true
		}
	}
	return false
}

// addRecursive watches dir and every directory below it that is not skipped.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(path); ok && rel != "." && w.skipDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
