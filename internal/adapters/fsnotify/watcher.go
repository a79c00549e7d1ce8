// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches an inbox directory for history files (*.txt), skips generated
// reports and editor droppings, and debounces bursts of events so a file is
// handed over only after writes to it have settled.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corey/bbfs/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// ReportSuffix marks files written by the analyzer. They are never picked up.
const ReportSuffix = ".report.txt"

// DefaultDebounce is the quiet period before a changed file is reported.
const DefaultDebounce = 100 * time.Millisecond

// Editor temp files and OS metadata to ignore.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".swx":      true,
	"~":         true,
	".tmp":      true,
	".part":     true,
}

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	stopped  bool
	mu       sync.Mutex

	timers map[string]*time.Timer
	tmu    sync.Mutex
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new inbox watcher with the default debounce.
func NewWatcher() (*Watcher, error) {
	return NewWatcherWithDebounce(DefaultDebounce)
}

// NewWatcherWithDebounce creates an inbox watcher with a custom quiet period.
func NewWatcherWithDebounce(d time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		debounce: d,
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring dir (not recursive).
// onChange is called with the absolute path of each settled history file.
func (w *Watcher) Watch(dir string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}
	if err := w.fw.Add(absPath); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !IsHistoryFile(event.Name) {
					continue
				}
				w.schedule(event.Name, onChange)

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers on its own

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)arms the per-file timer so onChange fires once writes stop.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.tmu.Lock()
	defer w.tmu.Unlock()
	w.rearm(path, onChange)
}

// rearm must be called with tmu held. A timer that already fired may have
// its callback blocked on tmu; it is replaced rather than Reset, and the
// stale callback sees it no longer owns the map entry and does nothing.
func (w *Watcher) rearm(path string, onChange func(string)) {
	if t, ok := w.timers[path]; ok && t.Reset(w.debounce) {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.tmu.Lock()
		if w.timers[path] != t {
			w.tmu.Unlock()
			return
		}
		delete(w.timers, path)
		w.tmu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}
		onChange(path)
	})
	w.timers[path] = t
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)

	w.tmu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.tmu.Unlock()

	return w.fw.Close()
}

// IsHistoryFile reports whether path looks like a history file the inbox
// should analyze: a .txt file that is not a generated report or temp file.
func IsHistoryFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if ignoreFiles[base] {
		return false
	}
	for ext := range ignoreFiles {
		if strings.HasSuffix(base, ext) {
			return false
		}
	}
	if strings.HasSuffix(base, ReportSuffix) {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".txt")
}

// ReportPath returns where the report for historyPath is written inside outDir.
func ReportPath(outDir, historyPath string) string {
	base := filepath.Base(historyPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, name+ReportSuffix)
}
