package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domainconfig "hazboun-backend/domain/config"
)

// CatalogWatcher reloads the catalog provider when its overlay file changes.
type CatalogWatcher struct {
	provider *CatalogProvider
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	onChange []func(*domainconfig.DomainConfig)
	logger   *zap.Logger
	debounce time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCatalogWatcher creates a watcher for the provider's overlay file.
func NewCatalogWatcher(provider *CatalogProvider, logger *zap.Logger) (*CatalogWatcher, error) {
	path := provider.Path()
	if path == "" {
		return nil, fmt.Errorf("catalog provider has no file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch catalog file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch catalog directory", zap.Error(err))
	}

	return &CatalogWatcher{
		provider: provider,
		path:     path,
		watcher:  watcher,
		logger:   logger,
		debounce: 100 * time.Millisecond,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// OnChange registers a callback run after every successful reload.
func (w *CatalogWatcher) OnChange(fn func(*domainconfig.DomainConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for catalog changes
func (w *CatalogWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Catalog watcher started", zap.String("path", w.path))
}

// Stop stops watching and waits for the loop to exit
func (w *CatalogWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		<-w.done
		w.logger.Info("Catalog watcher stopped")
	})
}

func (w *CatalogWatcher) watchLoop() {
	defer close(w.done)

	// Debounce timer to avoid multiple reloads per save
	var debounce *time.Timer
	var pending <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.debounce)
			}
			pending = debounce.C

		case <-pending:
			pending = nil
			w.handleChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *CatalogWatcher) handleChange() {
	w.logger.Info("Catalog file changed, reloading", zap.String("path", w.path))

	if err := w.provider.Reload(); err != nil {
		w.logger.Error("Invalid catalog, keeping current", zap.Error(err))
		return
	}

	current := w.provider.Current()
	w.mu.Lock()
	handlers := append([]func(*domainconfig.DomainConfig){}, w.onChange...)
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(current)
	}

	w.logger.Info("Catalog reloaded",
		zap.Int("min_generation", current.MinGeneration),
		zap.Int("max_generation", current.MaxGeneration),
		zap.Uint64("generation", w.provider.Generation()),
	)
}
