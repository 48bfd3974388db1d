package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the live configuration and reloads it when the file on disk
// changes. Streams read through GetConfig, so edits apply to the next stream
// without restarting the daemon.
type Manager struct {
	mu      sync.RWMutex
	config  *Config
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewManager() (*Manager, error) {
	cfg, err := Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// A daemon without provider keys can still serve status and configure;
	// streams fail later with a clear error, so this is only a warning here.
	if err := cfg.Validate(); err != nil {
		log.Printf("config: loaded with validation warning: %v", err)
	}
	return &Manager{config: cfg}, nil
}

// GetConfig returns a copy so callers cannot mutate the shared config.
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	return &cfg
}

func (m *Manager) StartWatching(ctx context.Context) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	// Watch the directory, not the file: editors that write-and-rename would
	// otherwise drop the watch after the first save.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx, configPath)

	log.Printf("config: watching %s", configPath)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context, configPath string) {
	defer m.wg.Done()
	fileName := filepath.Base(configPath)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				m.reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

// reload swaps in the new config only if it validates; a broken edit keeps
// the previous config live.
func (m *Manager) reload() {
	cfg, err := Load()
	if err != nil {
		log.Printf("config: reload failed: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("config: reload rejected, invalid config: %v", err)
		return
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	log.Printf("config: reloaded")
}
