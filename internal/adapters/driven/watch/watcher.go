// Package watch re-ingests file-backed sources when their underlying
// files change on disk. Re-ingestion is delete-then-insert: the source's
// old chunk set is replaced atomically, never patched in place.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/notebook-cli/internal/logger"
)

// debounceDelay coalesces the write bursts editors produce into a single
// re-ingestion.
const debounceDelay = 500 * time.Millisecond

// Reingester is the subset of the notebook the watcher drives.
type Reingester interface {
	ReingestSource(ctx context.Context, id string) error
}

// Watcher maps watched file paths to source IDs and triggers
// re-ingestion on change.
type Watcher struct {
	notebook Reingester
	fs       *fsnotify.Watcher

	mu      sync.Mutex
	byPath  map[string]string // path -> source ID
	pending map[string]*time.Timer
}

// New creates a watcher driving the given notebook.
func New(notebook Reingester) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		notebook: notebook,
		fs:       fs,
		byPath:   make(map[string]string),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Add starts watching a file for the given source.
func (w *Watcher) Add(path, sourceID string) error {
	if err := w.fs.Add(path); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.byPath[path] = sourceID
	return nil
}

// Run consumes file events until ctx is cancelled. It is meant to run in
// its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule debounces a change and fires the re-ingestion.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sourceID, ok := w.byPath[path]
	if !ok {
		return
	}

	if timer, exists := w.pending[path]; exists {
		timer.Stop()
	}

	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		logger.Info("Source file changed, re-ingesting: %s", path)
		if err := w.notebook.ReingestSource(ctx, sourceID); err != nil {
			logger.Warn("Re-ingestion failed for %s: %v", path, err)
		}
	})
}

// Close stops all watches and pending re-ingestions.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	return w.fs.Close()
}
