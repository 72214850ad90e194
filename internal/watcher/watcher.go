// Package watcher reports file changes under project roots the editor has
// open, so a stale ProjectHandle can be reloaded.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/alucardeht/forge/internal/logger"
)

var log = logger.ForComponent("watcher")

var ErrClosed = errors.New("watcher closed")

type Watcher struct {
	config      WatcherConfig
	fsWatcher   *fsnotify.Watcher
	fsWatcherMu sync.Mutex
	debouncer   *Debouncer
	roots       map[string][]string
	mu          sync.RWMutex
	running     bool
	closed      bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates a watcher that delivers debounced batches to onBatch. Nothing
// is delivered until Start.
func New(config WatcherConfig, onBatch func([]FileEvent)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:    config,
		fsWatcher: fsWatcher,
		roots:     make(map[string][]string),
		done:      make(chan struct{}),
	}
	w.debouncer = NewDebouncer(config.DebounceWindow, config.MaxBatchSize, onBatch)

	return w, nil
}

// Watch adds root and every non-ignored directory below it. Watching a root
// twice is a no-op.
func (w *Watcher) Watch(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "watch", Path: root, Err: errors.New("not a directory")}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, ok := w.roots[abs]; ok {
		return nil
	}

	dirs := []string{abs}
	if err := w.addToWatcher(abs); err != nil {
		return err
	}
	dirs = append(dirs, w.walkAndAdd(abs)...)
	w.roots[abs] = dirs

	log.Info("watching project", "root", abs, "dirs", len(dirs))
	return nil
}

// Unwatch stops watching root and the directories added for it.
func (w *Watcher) Unwatch(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dirs, ok := w.roots[abs]
	if !ok {
		return nil
	}
	for _, d := range dirs {
		w.removeFromWatcher(d)
	}
	delete(w.roots, abs)

	log.Info("stopped watching project", "root", abs)
	return nil
}

// Roots returns the watched project roots, sorted.
func (w *Watcher) Roots() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, 0, len(w.roots))
	for r := range w.roots {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) addToWatcher(path string) error {
	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Add(path)
}

func (w *Watcher) removeFromWatcher(path string) {
	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	_ = w.fsWatcher.Remove(path)
}

func (w *Watcher) walkAndAdd(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug("failed to read directory", "path", dir, "error", err)
		return nil
	}

	var added []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if w.shouldIgnore(full) {
			continue
		}
		if err := w.addToWatcher(full); err != nil {
			log.Debug("failed to watch directory", "path", full, "error", err)
			continue
		}
		added = append(added, full)
		added = append(added, w.walkAndAdd(full)...)
	}
	return added
}

// Start begins delivering events until ctx ends or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.running {
		return nil
	}

	w.running = true
	ctx, w.cancel = context.WithCancel(ctx)
	go w.handleEvents(ctx)

	return nil
}

func (w *Watcher) handleEvents(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			log.Debug("file event", "path", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) {
				w.trackNewDir(event.Name)
			}

			if fe := w.convertEvent(event); fe != nil {
				w.debouncer.Add(*fe)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "error", err)
		}
	}
}

// trackNewDir starts watching a directory created under a watched root.
func (w *Watcher) trackNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.shouldIgnore(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	root := w.rootOfLocked(path)
	if root == "" {
		return
	}
	if err := w.addToWatcher(path); err != nil {
		return
	}
	dirs := append([]string{path}, w.walkAndAdd(path)...)
	w.roots[root] = append(w.roots[root], dirs...)
}

func (w *Watcher) rootOfLocked(path string) string {
	best := ""
	for root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	return best
}

func (w *Watcher) convertEvent(event fsnotify.Event) *FileEvent {
	if w.shouldIgnore(event.Name) {
		return nil
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventModify
	case event.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return nil
	}

	w.mu.RLock()
	root := w.rootOfLocked(event.Name)
	w.mu.RUnlock()
	if root == "" {
		return nil
	}

	return &FileEvent{
		Root:      root,
		Path:      event.Name,
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	if !w.config.WatchHidden && strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}

	slashed := filepath.ToSlash(path)
	for _, pattern := range w.config.IgnorePatterns {
		if match, _ := doublestar.Match(pattern, slashed); match {
			return true
		}
	}

	return false
}

// Close stops event delivery, flushes any pending batch and releases the
// underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	if running {
		<-w.done
	}
	w.debouncer.Stop()

	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Close()
}
