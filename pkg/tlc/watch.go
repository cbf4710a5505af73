package tlc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs a check callback whenever a contract source file under a
// watched directory changes, for `check --watch`. Debounced the same way
// the teacher's index watcher coalesces rapid-fire editor saves into a
// single reindex: a 100ms ticker sweeps a pending-file map rather than
// acting on every fsnotify event individually.
type Watcher struct {
	fsw        *fsnotify.Watcher
	debounce   time.Duration
	ext        string
	onChange   func(path string)
	stopCh     chan struct{}
	pending    map[string]time.Time
	pendingMu  sync.Mutex
	running    bool
	runningMu  sync.Mutex
}

// NewWatcher watches root recursively for writes/creates to files with the
// given extension (e.g. ".accord"), invoking onChange (debounced) for each.
func NewWatcher(root, ext string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: 100 * time.Millisecond,
		ext:      ext,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		pending:  make(map[string]time.Time),
	}
	if err := w.addDirectories(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirectories(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot watch %s: %v\n", path, err)
		}
		return nil
	})
}

// Start begins watching in the background. Stop ends it.
func (w *Watcher) Start() {
	w.runningMu.Lock()
	if w.running {
		w.runningMu.Unlock()
		return
	}
	w.running = true
	w.runningMu.Unlock()

	go w.processEvents()
	go w.processDebounced()
}

func (w *Watcher) Stop() error {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return w.fsw.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, w.ext) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] = time.Now()
			w.pendingMu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) processDebounced() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	now := time.Now()
	for path, ts := range w.pending {
		if now.Sub(ts) < w.debounce {
			continue
		}
		delete(w.pending, path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		w.onChange(path)
	}
}
