// Package watch regenerates output whenever the schema or project
// configuration changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors the schema and config files and triggers a
// regeneration callback, debounced so editor save bursts collapse
// into one run.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	files     map[string]bool
	onChange  func([]string) error
	logger    *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates a watcher over the given files.
func New(files []string, onChange func([]string) error, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tracked := make(map[string]bool, len(files))
	for _, f := range files {
		tracked[filepath.Clean(f)] = true
	}

	w := &Watcher{
		watcher:   fsw,
		debouncer: newDebouncer(150 * time.Millisecond),
		files:     tracked,
		onChange:  onChange,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
	w.debouncer.callback = func(changed []string) {
		if err := w.onChange(changed); err != nil {
			w.logger.Error("regeneration failed", zap.Error(err))
		}
	}
	return w, nil
}

// Start begins watching. Directories are watched rather than the files
// themselves so atomic-rename saves keep working.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.logger.Info("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops the watcher. Safe to call twice.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopChan:
		return nil
	default:
		close(w.stopChan)
	}
	w.wg.Wait()
	w.debouncer.stop()
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("file changed", zap.String("file", event.Name))
			w.debouncer.add(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

// debouncer collects changed files and fires once the burst settles.
type debouncer struct {
	duration time.Duration
	timer    *time.Timer
	pending  map[string]struct{}
	mu       sync.Mutex
	callback func([]string)
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{
		duration: duration,
		pending:  make(map[string]struct{}),
	}
}

func (d *debouncer) add(file string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	files := make([]string, 0, len(d.pending))
	for f := range d.pending {
		files = append(files, f)
	}
	d.pending = make(map[string]struct{})
	cb := d.callback
	d.mu.Unlock()

	if cb != nil {
		cb(files)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
