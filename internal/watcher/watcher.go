// Package watcher reports changes to individual files with fsnotify,
// debounced per file.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches files and invokes a callback once writes to a file settle.
// The parent directory of each file is watched, so a file replaced by an
// atomic rename is still seen.
type Watcher struct {
	files       map[string]bool // cleaned absolute paths
	onChange    func(path string)
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	dirRefs     map[string]int // watched directory -> number of files in it
	done        chan struct{}  // closed by Stop; replaced on every Start
	started     bool
	logger      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before onChange runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for paths. onChange receives the cleaned
// absolute path of a file that was created, written, renamed or removed.
func NewWatcher(paths []string, onChange func(path string), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		files:       make(map[string]bool, len(paths)),
		onChange:    onChange,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		dirRefs:     make(map[string]int),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, p := range paths {
		abs, err := cleanAbs(p)
		if err != nil {
			return nil, err
		}
		w.files[abs] = true
	}
	return w, nil
}

func cleanAbs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called,
// and may be started again after Stop. Every watched file's directory must
// exist.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	for path := range w.files {
		if err := w.addDirLocked(filepath.Dir(path)); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.dirRefs = make(map[string]int)
			w.mu.Unlock()
			return err
		}
	}
	done := make(chan struct{})
	w.done = done
	w.logger.Debug("Watcher started", zap.Strings("files", w.filesLocked()))
	w.mu.Unlock()
	go w.run(ctx, watcher, done)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.stop(done)
			return
		case <-done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("Watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched || ev.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("Watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	w.debounceChange(path)
}

func (w *Watcher) debounceChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.logger.Debug("Watcher file settled", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	})
}

func (w *Watcher) addDirLocked(dir string) error {
	if w.dirRefs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.dirRefs[dir]++
	return nil
}

// Add starts watching another file.
func (w *Watcher) Add(path string) error {
	abs, err := cleanAbs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}
	if w.watcher != nil {
		if err := w.addDirLocked(filepath.Dir(abs)); err != nil {
			return err
		}
	}
	w.files[abs] = true
	return nil
}

// Remove stops watching a file.
func (w *Watcher) Remove(path string) error {
	abs, err := cleanAbs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	if t, ok := w.debounceMap[abs]; ok {
		t.Stop()
		delete(w.debounceMap, abs)
	}
	if w.watcher == nil {
		return nil
	}
	dir := filepath.Dir(abs)
	w.dirRefs[dir]--
	if w.dirRefs[dir] <= 0 {
		delete(w.dirRefs, dir)
		_ = w.watcher.Remove(dir)
	}
	return nil
}

// Files returns the watched files in sorted order.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filesLocked()
}

func (w *Watcher) filesLocked() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.stop(nil)
}

// stop shuts down the running watcher. A non-nil done limits it to the run
// that owns that channel, so a stale run cannot stop a later Start.
func (w *Watcher) stop(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started || w.watcher == nil {
		return
	}
	if done != nil && done != w.done {
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.dirRefs = make(map[string]int)
	close(w.done)
	w.done = nil
}
