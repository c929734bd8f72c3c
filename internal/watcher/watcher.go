// Package watcher reloads the product catalog when its files change on disk.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// catalogExtensions are the file types that trigger a reload.
var catalogExtensions = []string{".json", ".xlsx"}

// CatalogWatcher watches one catalog directory and invokes onReload after
// changes settle. Reloads are whole-catalog: record ordering is derived from
// the directory listing, so partial updates would break tie-break stability.
type CatalogWatcher struct {
	dir      string
	onReload func()
	debounce time.Duration
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewCatalogWatcher creates a watcher over dir. onReload runs on the
// watcher's goroutine after the debounce window closes.
func NewCatalogWatcher(dir string, debounce time.Duration, onReload func(), logger *zap.Logger) *CatalogWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogWatcher{
		dir:      filepath.Clean(dir),
		onReload: onReload,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *CatalogWatcher) Start(ctx context.Context) error {
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
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching catalog directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

func (w *CatalogWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *CatalogWatcher) handleEvent(ev fsnotify.Event) {
	if !isCatalogFile(ev.Name) {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("catalog change", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	w.scheduleReload()
}

// scheduleReload collapses a burst of file events into one reload.
func (w *CatalogWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Info("catalog changed, reloading")
		if w.onReload != nil {
			w.onReload()
		}
	})
}

func isCatalogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range catalogExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Stop stops the watcher and releases resources.
func (w *CatalogWatcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
