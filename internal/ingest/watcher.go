package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/utils"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher reports posting files that are created or rewritten in a
// directory, after a quiet period.
type DirWatcher struct {
	mu sync.Mutex

	dir         string
	lastModTime map[string]time.Time
	pending     map[string]struct{}

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan  chan struct{}
	flushChan chan struct{}
	done      chan struct{}

	onChange func(files []string)
	logger   *apperrors.Logger

	running bool
}

// NewDirWatcher creates a watcher for dir. onChange runs on the watcher
// goroutine with the changed files in name order.
func NewDirWatcher(dir string, debounceDelay time.Duration, onChange func([]string), logger *apperrors.Logger) *DirWatcher {
	if debounceDelay <= 0 {
		debounceDelay = 500 * time.Millisecond
	}
	return &DirWatcher{
		dir:           dir,
		lastModTime:   make(map[string]time.Time),
		pending:       make(map[string]struct{}),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		flushChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. Files already present are recorded but not reported.
func (w *DirWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher for %s is already running", w.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}
	w.fsWatcher = watcher

	files, err := PostingFiles(w.dir)
	if err != nil {
		_ = watcher.Close()
		return err
	}
	for _, f := range files {
		if stat, err := os.Stat(f); err == nil {
			w.lastModTime[f] = stat.ModTime()
		}
	}

	w.running = true
	go w.watchLoop()

	w.logger.Info("Posting directory watcher started",
		"directory", w.dir,
		"existing_files", len(files),
		"debounce_delay", w.debounceDelay.String())
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (w *DirWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false
	w.mu.Unlock()

	<-w.done
	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	w.logger.Info("Posting directory watcher stopped", "directory", w.dir)
	return nil
}

func (w *DirWatcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.mu.Lock()
				w.pending[filepath.Clean(event.Name)] = struct{}{}
				w.mu.Unlock()
				w.scheduleFlush()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "File watcher error", "directory", w.dir)

		case <-w.flushChan:
			if changed := w.takeChanged(); len(changed) > 0 {
				w.onChange(changed)
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *DirWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !utils.IsPostingFile(event.Name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// takeChanged drains pending paths, keeping those whose modification time moved.
func (w *DirWatcher) takeChanged() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for file := range w.pending {
		stat, err := os.Stat(file)
		if err != nil {
			delete(w.lastModTime, file)
			continue
		}
		if last, ok := w.lastModTime[file]; !ok || stat.ModTime().After(last) {
			w.lastModTime[file] = stat.ModTime()
			changed = append(changed, file)
		}
	}
	clear(w.pending)
	sort.Strings(changed)
	return changed
}

func (w *DirWatcher) scheduleFlush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.flushChan <- struct{}{}:
		default:
		}
	})
}

// Watch ingests posting files written to dir until ctx is done.
func (i *Ingester) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	watcher := NewDirWatcher(dir, debounce, func(files []string) {
		for _, f := range files {
			if _, err := i.IngestFile(ctx, f); err != nil {
				i.logger.LogError(err, "Failed to ingest posting file", "file", f)
			}
		}
	}, i.logger)

	if err := watcher.Start(); err != nil {
		return apperrors.NewIOError(apperrors.ErrCodeFileNotReadable, "cannot watch posting directory", err).
			WithContext("directory", dir)
	}

	<-ctx.Done()
	return watcher.Stop()
}
