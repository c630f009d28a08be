package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/scssclass/pkg/classname"
)

// PassCallback is called after every pass the watcher triggers.
type PassCallback func(stats *ScanStats, err error)

// FileWatcher watches the workspace and re-runs a pass when stylesheets
// change.
//
// **Features:**
//   - Debouncing - a burst of saves produces a single pass
//   - Supersession - a pass started while another runs cancels the older one
//   - Incremental cost - unchanged units come from the index cache, so a
//     rescan only extracts the files that changed
//
// **Usage:**
//
//	watcher, err := NewFileWatcher(index, DefaultWatchOptions(), logger)
//	err = watcher.Start(ctx)
//	defer watcher.Stop()
type FileWatcher struct {
	watcher *fsnotify.Watcher
	index   *ClassIndex
	logger  *slog.Logger
	options WatchOptions
	onPass  PassCallback

	// Debouncing
	timer      *time.Timer
	debounceMu sync.Mutex

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	passWG  sync.WaitGroup
	stopped bool
	started bool
	mu      sync.Mutex

	// Statistics
	eventsSeen     atomic.Int64
	passesStarted  atomic.Int64
	watchedDirs    atomic.Int64
	pendingRescans atomic.Int64
}

// NewFileWatcher creates a watcher for index. It does not watch anything
// until Start is called.
func NewFileWatcher(index *ClassIndex, options WatchOptions, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultWatchOptions().DebounceMs
	}
	for _, pattern := range options.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern: %s", pattern)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		index:   index,
		logger:  logger,
		options: options,
	}, nil
}

// OnPass registers a callback for watcher-triggered passes. Call it before
// Start.
func (fw *FileWatcher) OnPass(cb PassCallback) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.onPass = cb
}

// Start registers watches on the workspace root and every directory below
// it that is not excluded, then processes events in the background until
// ctx is done or Stop is called.
//
// The whole root is watched, not only the current subdirectory, so a later
// SetSubdirectory on the index needs no new watches.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		return fmt.Errorf("watcher already started")
	}

	root := fw.index.Locator().Root()
	if err := fw.addTree(root); err != nil {
		return err
	}

	fw.ctx, fw.cancel = context.WithCancel(ctx)
	fw.started = true

	fw.logger.Info("File watcher started", "root", root, "directories", fw.watchedDirs.Load())

	go fw.eventLoop()
	return nil
}

// addTree adds a watch for dir and each non-excluded directory below it.
func (fw *FileWatcher) addTree(dir string) error {
	locator := fw.index.Locator()
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (locator.SkipsDir(path) || fw.shouldIgnore(path)) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err)
			return nil
		}
		fw.watchedDirs.Add(1)
		return nil
	})
}

// Stop stops the watcher, cancels a pass it started, and waits for that
// pass to return. Safe to call multiple times.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	if fw.cancel != nil {
		fw.cancel()
	}
	fw.mu.Unlock()

	fw.debounceMu.Lock()
	if fw.timer != nil && fw.timer.Stop() {
		fw.pendingRescans.Store(0)
	}
	fw.timer = nil
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.passWG.Wait()
	fw.logger.Info("File watcher stopped", "passes", fw.passesStarted.Load())
	return err
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// handleEvent filters one filesystem event and schedules a pass when it
// touches a stylesheet in scope.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if fw.shouldIgnore(path) {
		return
	}
	fw.eventsSeen.Add(1)

	locator := fw.index.Locator()

	if event.Op.Has(fsnotify.Create) {
		// New directories need their own watches; files created inside
		// them before the watch lands are picked up by the rescan.
		if isDir(path) {
			if !locator.SkipsDir(path) {
				if err := fw.addTree(path); err != nil {
					fw.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
				fw.scheduleRescan("directory created")
			}
			return
		}
	}

	if !locator.Matches(path) {
		// A removed or renamed directory takes its stylesheets with it.
		if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
			if filepath.Ext(path) == "" && !locator.SkipsDir(path) {
				fw.scheduleRescan("path removed")
			}
		}
		return
	}

	fw.logger.Debug("Stylesheet event", "op", event.Op.String(), "file", path)

	switch {
	case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create):
		fw.scheduleRescan("stylesheet changed")

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		fw.index.InvalidateUnit(locator.UnitID(path))
		fw.scheduleRescan("stylesheet removed")
	}
}

// scheduleRescan (re)starts the debounce timer. Only the last event of a
// burst triggers a pass.
func (fw *FileWatcher) scheduleRescan(reason string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	fw.mu.Lock()
	stopped := fw.stopped
	fw.mu.Unlock()
	if stopped {
		return
	}

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.pendingRescans.Store(1)
	fw.timer = time.AfterFunc(time.Duration(fw.options.DebounceMs)*time.Millisecond, func() {
		fw.runPass(reason)
	})
}

func (fw *FileWatcher) runPass(reason string) {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return
	}
	ctx := fw.ctx
	cb := fw.onPass
	fw.passWG.Add(1)
	fw.mu.Unlock()
	defer fw.passWG.Done()

	fw.pendingRescans.Store(0)
	fw.passesStarted.Add(1)
	fw.logger.Debug("Watcher triggering pass", "reason", reason)

	stats, err := fw.index.Rescan(ctx, nil)
	switch {
	case err == nil:
	case errors.Is(err, classname.ErrPassCancelled):
		fw.logger.Debug("Watcher pass superseded", "reason", reason)
	default:
		fw.logger.Warn("Watcher pass failed", "reason", reason, "error", err)
	}

	if cb != nil {
		cb(stats, err)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// shouldIgnore checks a path's base name against the ignore patterns.
func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range fw.options.IgnorePatterns {
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.mu.Lock()
	running := fw.started && !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		WatchedDirs:    int(fw.watchedDirs.Load()),
		EventsSeen:     fw.eventsSeen.Load(),
		PassesStarted:  fw.passesStarted.Load(),
		PendingRescans: int(fw.pendingRescans.Load()),
		IsRunning:      running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	WatchedDirs    int
	EventsSeen     int64
	PassesStarted  int64
	PendingRescans int
	IsRunning      bool
}
