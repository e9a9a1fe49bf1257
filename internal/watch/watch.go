// Package watch turns file system notifications for the active document into
// debounced "document changed" callbacks.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher follows one active file. Switching the active file moves the
// underlying directory watch.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	mu     sync.Mutex
	active string
	dir    string
	timer  *time.Timer
}

// New creates a watcher that calls onChange with the active path after each
// debounced burst of writes. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{watcher: fw, debounce: debounce, onChange: onChange}, nil
}

// Active returns the path currently followed.
func (w *Watcher) Active() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SetActive makes path the followed document. Editors usually replace files
// by rename, so the parent directory is watched rather than the file itself.
func (w *Watcher) SetActive(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir != w.dir {
		if w.dir != "" {
			_ = w.watcher.Remove(w.dir)
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dir = dir
	}
	w.active = abs
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	return nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if name != w.active {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	path := w.active
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		current := w.active
		w.timer = nil
		w.mu.Unlock()
		if current == path && w.onChange != nil {
			w.onChange(path)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
