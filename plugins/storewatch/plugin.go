// Package storewatch provides log store monitoring for aesdsocket.
// When enabled, it watches the store file's directory and logs changes to
// the store file, warning when the file disappears while the server is
// still serving.
package storewatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/aesdsocket/internal/ports"
)

// Plugin implements store watching functionality.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	path         string
	logger       ports.Logger
	shuttingDown func() bool
	watcher      *fsnotify.Watcher
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	debounce     *time.Timer
	closed       bool
}

// Config holds configuration options for the store watcher plugin.
type Config struct {
	// DebounceDelay coalesces bursts of write events into one log entry.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new store watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "storewatch"
}

// Initialize starts watching the directory holding cfg.StorePath.
func (p *Plugin) Initialize(ctx context.Context, cfg ports.PluginConfig) error {
	if cfg.StorePath == "" {
		return fmt.Errorf("storewatch: store path not configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storewatch: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(cfg.StorePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("storewatch: watch %s: %w", filepath.Dir(cfg.StorePath), err)
	}

	p.mu.Lock()
	p.path = filepath.Clean(cfg.StorePath)
	p.logger = cfg.Logger
	p.shuttingDown = cfg.ShuttingDown
	if p.shuttingDown == nil {
		p.shuttingDown = func() bool { return false }
	}
	p.watcher = watcher
	p.mu.Unlock()

	// Create cancellable context for the watcher loop
	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("Store watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the store watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	// A debounce callback already running holds p.mu until it has logged.
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.debounce != nil {
		p.debounce.Stop()
	}
	if p.watcher != nil {
		err := p.watcher.Close()
		p.watcher = nil
		return err
	}
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			p.handle(event)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Store watcher: watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) handle(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if p.shuttingDown() {
			p.logger.Debug("Store watcher: store removed during shutdown")
			return
		}
		p.logger.Warn("Store watcher: store file removed while serving",
			ports.String("path", p.path),
			ports.String("op", event.Op.String()),
		)
	case event.Has(fsnotify.Create):
		p.logger.Debug("Store watcher: store created", ports.String("path", p.path))
	case event.Has(fsnotify.Write):
		p.debounceReport(p.debounceDelay)
	}
}

func (p *Plugin) debounceReport(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, p.reportSize)
}

// reportSize logs the store size unless the plugin was shut down.
func (p *Plugin) reportSize() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	info, err := os.Stat(p.path)
	if err != nil {
		return
	}
	p.logger.Debug("Store watcher: store changed", ports.Int64("size", info.Size()))
}

// Ensure Plugin implements ports.Plugin.
var _ ports.Plugin = (*Plugin)(nil)
