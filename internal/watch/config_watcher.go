// Package watch re-applies configuration-derived state when the agent
// configuration file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/agentboot/internal/config"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// DefaultDebounce coalesces bursts of editor writes.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc applies a freshly loaded configuration.
type ReloadFunc func(ctx context.Context, cfg *config.Config) error

// ConfigWatcher monitors the configuration file and triggers reloads.
type ConfigWatcher struct {
	configPath   string
	opts         config.Options
	reload       ReloadFunc
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
	stopped      bool
}

// NewConfigWatcher creates a watcher for configPath.
func NewConfigWatcher(configPath string, opts config.Options, reload ReloadFunc) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &ConfigWatcher{
		configPath:   absPath,
		opts:         opts,
		reload:       reload,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: DefaultDebounce,
	}, nil
}

// SetDebounce changes the debounce interval. Call before Start.
func (cw *ConfigWatcher) SetDebounce(d time.Duration) {
	cw.debounceTime = d
}

// Start begins monitoring. The directory is watched so atomic
// rename-into-place saves are seen.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", configDir, err)
	}

	slog.Info("Watching configuration", logfields.Path(cw.configPath))

	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.stopped {
		return nil
	}
	cw.stopped = true
	close(cw.stopChan)
	return cw.watcher.Close()
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(cw.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Config file change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				cw.triggerReload()
			case event.Has(fsnotify.Remove):
				slog.Warn("Config file removed", logfields.Path(event.Name))
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", logfields.Error(err))
		}
	}
}

func (cw *ConfigWatcher) reloadLoop(ctx context.Context) {
	var reloadTimer *time.Timer
	stop := func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-cw.stopChan:
			stop()
			return
		case <-cw.reloadChan:
			stop()
			reloadTimer = time.AfterFunc(cw.debounceTime, func() {
				if err := cw.performReload(ctx); err != nil {
					slog.Error("Failed to reload configuration", logfields.Error(err))
				}
			})
		}
	}
}

func (cw *ConfigWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

func (cw *ConfigWatcher) performReload(ctx context.Context) error {
	slog.Info("Reloading configuration", logfields.Path(cw.configPath))

	cfg, err := config.Load(cw.configPath, cw.opts)
	if err != nil {
		return err
	}
	if err := cw.reload(ctx, cfg); err != nil {
		return fmt.Errorf("failed to apply configuration: %w", err)
	}

	slog.Info("Configuration reloaded")
	return nil
}
