package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// changeChannelBuffer is the size of the change notification channel.
	changeChannelBuffer = 16

	defaultDebounce = 500 * time.Millisecond
)

// Watcher watches the section documents directory and emits a notification
// once changes settle, so the admin binary can offer (or trigger) a re-sync.
// It is opt-in and lives only in the admin process; content serving never
// watches anything.
type Watcher struct {
	dir        string
	debounce   time.Duration
	extensions map[string]bool
	watcher    *fsnotify.Watcher
	logger     *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	changes chan []string
}

// NewWatcher creates a watcher over dir for files with the given
// extensions.
func NewWatcher(dir string, debounce time.Duration, fileExtensions []string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	extensions := make(map[string]bool)
	if len(fileExtensions) == 0 {
		extensions[".json"] = true
	} else {
		for _, ext := range fileExtensions {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			extensions[strings.ToLower(ext)] = true
		}
	}

	return &Watcher{
		dir:        dir,
		debounce:   debounce,
		extensions: extensions,
		watcher:    fsw,
		logger:     logger,
		pending:    make(map[string]fsnotify.Op),
		changes:    make(chan []string, changeChannelBuffer),
	}, nil
}

// Changes returns the channel of settled change batches. Each batch is the
// set of changed file paths since the previous notification.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Start begins watching the documents directory.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Document watcher started",
		slog.String("dir", w.dir),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Stop stops the watcher. The changes channel is closed by processEvents
// when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
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
			w.logger.Error("Watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	ext := strings.ToLower(filepath.Ext(event.Name))
	if !w.extensions[ext] {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	select {
	case w.changes <- paths:
	default:
		w.logger.Warn("Change notification dropped; consumer not keeping up",
			slog.Int("paths", len(paths)))
	}
}
