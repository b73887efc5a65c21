// Package watch re-triggers validation when proposal files change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/proplint/config"
	"github.com/c360studio/proplint/proposal"
)

// triggerChannelBuffer is the size of the trigger channel.
const triggerChannelBuffer = 16

// Trigger is one debounced batch of file changes warranting a re-run.
type Trigger struct {
	// Paths are the changed files, relative to the watched root.
	Paths []string
}

// Watcher watches the proposal root for markdown changes and emits
// debounced re-validation triggers. Writes that do not change file content
// are suppressed by content hash, so editor save-without-change and CI
// checkout churn do not cause spurious runs.
type Watcher struct {
	cfg      config.WatchConfig
	root     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	excludes map[string]bool

	// Debouncing: collect changes before triggering
	pendingMu sync.Mutex
	pending   map[string]struct{}

	// Hash-based change suppression
	hashMu sync.RWMutex
	hashes map[string]string

	triggers chan Trigger

	droppedTriggers atomic.Int64
}

// New creates a watcher over the proposal root.
func New(cfg config.WatchConfig, root string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	excludes := make(map[string]bool)
	for _, dir := range cfg.ExcludeDirs {
		excludes[dir] = true
	}

	return &Watcher{
		cfg:      cfg,
		root:     root,
		watcher:  fsw,
		logger:   logger,
		excludes: excludes,
		pending:  make(map[string]struct{}),
		hashes:   make(map[string]string),
		triggers: make(chan Trigger, triggerChannelBuffer),
	}, nil
}

// Triggers returns the channel of re-validation triggers.
func (w *Watcher) Triggers() <-chan Trigger {
	return w.triggers
}

// Start begins watching. The triggers channel is closed when the context
// is cancelled or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Watching for proposal changes",
		"root", w.root,
		"debounce", w.debounce())

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// SetHash records the hash for a file.
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// Seed records content hashes for the given root-relative paths, so a
// save-without-change before any run is suppressed like one after.
// Unreadable paths are skipped; their first event triggers normally.
func (w *Watcher) Seed(paths []string) {
	for _, relPath := range paths {
		content, err := os.ReadFile(filepath.Join(w.root, relPath))
		if err != nil {
			continue
		}
		w.SetHash(relPath, proposal.ContentHash(content))
	}
}

// DroppedTriggers returns the number of triggers dropped because the
// channel was full.
func (w *Watcher) DroppedTriggers() int64 {
	return w.droppedTriggers.Load()
}

func (w *Watcher) debounce() time.Duration {
	if w.cfg.DebounceDelay <= 0 {
		return 500 * time.Millisecond
	}
	return w.cfg.DebounceDelay
}

// addWatchesRecursive adds watches to all directories under root.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if w.excludes[base] || (strings.HasPrefix(base, ".") && path != root) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.triggers)
	ticker := time.NewTicker(w.debounce())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent records a single fsnotify event in the pending set.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if strings.ToLower(filepath.Ext(path)) != ".md" {
		// New directories need their own watches.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.handleNewDirectory(path)
			}
		}
		return
	}

	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		return
	}
	for excludeDir := range w.excludes {
		if strings.Contains(relPath, excludeDir+string(filepath.Separator)) {
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[relPath] = struct{}{}
	w.pendingMu.Unlock()

	w.logger.Debug("Proposal change detected", "path", relPath, "op", event.Op.String())
}

// handleNewDirectory adds a watch to a newly created directory.
func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if w.excludes[base] || strings.HasPrefix(base, ".") {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
	}
}

// flushPending turns accumulated changes into one trigger, dropping paths
// whose content hash is unchanged.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	var changed []string
	for relPath := range toProcess {
		abs := filepath.Join(w.root, relPath)

		content, err := os.ReadFile(abs)
		if err != nil {
			// Deleted or unreadable: the id index may have changed either way.
			w.hashMu.Lock()
			delete(w.hashes, relPath)
			w.hashMu.Unlock()
			changed = append(changed, relPath)
			continue
		}

		newHash := proposal.ContentHash(content)
		w.hashMu.RLock()
		oldHash, hadHash := w.hashes[relPath]
		w.hashMu.RUnlock()
		if hadHash && oldHash == newHash {
			continue
		}

		w.SetHash(relPath, newHash)
		changed = append(changed, relPath)
	}

	if len(changed) == 0 {
		return
	}

	select {
	case w.triggers <- Trigger{Paths: changed}:
		w.logger.Debug("Revalidation triggered", "changed", len(changed))
	default:
		dropped := w.droppedTriggers.Add(1)
		w.logger.Warn("Trigger channel full, dropping trigger", "total_dropped", dropped)
	}
}
