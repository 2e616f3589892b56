package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the config file watcher
type WatcherConfig struct {
	// Path is the config file to watch
	Path string

	// DebounceDelay is how long to wait for more changes before reloading
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// ReloadEvent carries the result of one config reload
type ReloadEvent struct {
	// Config is the reloaded configuration (nil on error)
	Config *Config

	// Error if reloading or validation failed
	Error error
}

// Watcher watches a config file and emits reloaded configurations.
// Editors often replace the file rather than write in place, so the
// parent directory is watched and events are filtered by name.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	events chan ReloadEvent
}

// NewWatcher creates a new config file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		events:  make(chan ReloadEvent, 8),
	}, nil
}

// Events returns the channel of reload events
func (w *Watcher) Events() <-chan ReloadEvent {
	return w.events
}

// Start begins watching the config file for changes
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.config.Path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Config watcher started",
		"path", w.config.Path,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.events)
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.pendingMu.Lock()
				w.pending = true
				w.pendingMu.Unlock()
				w.logger.Debug("Config change detected", "op", event.Op.String())
			}

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

// flushPending reloads the config if a change is pending
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if !pending {
		return
	}

	cfg, err := LoadFromFile(w.config.Path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.sendEvent(ReloadEvent{Error: err})
		return
	}
	w.sendEvent(ReloadEvent{Config: cfg})
}

// sendEvent sends an event to the output channel
func (w *Watcher) sendEvent(event ReloadEvent) {
	select {
	case w.events <- event:
	default:
		w.logger.Warn("Reload channel full, dropping event")
	}
}
