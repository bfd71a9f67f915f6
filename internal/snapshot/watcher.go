package snapshot

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/canwork/internal/debug"
)

// DefaultDebounce absorbs the burst of events a single watcher rewrite produces
const DefaultDebounce = 250 * time.Millisecond

// Watcher notifies when the snapshot file is rewritten, created or removed.
// It only signals; consumers Load the snapshot themselves on every change.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path.
// The directory must exist. Call Run to consume events, or Close to release the watch.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot watcher: %w", err)
	}

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	debug.LogSnapshot("watching %s for snapshot changes\n", dir)
	return &Watcher{path: path, debounce: debounce, watcher: fsw}, nil
}

// Run calls onChange once per debounced burst of snapshot events until ctx
// is done. The watch is released when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.Close()

	// Each relevant event restarts the quiet period
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			debug.LogSnapshot("event %v for %s\n", event.Op, event.Name)
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[canwork] snapshot watcher error: %v", err)
		}
	}
}

// Close releases the underlying watch
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
