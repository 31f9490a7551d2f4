package ports

import "context"

// Plugin is an optional component started after the listener is bound and
// stopped during shutdown cleanup.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize starts the plugin. The context is canceled at shutdown.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig carries what plugins may need from the running server.
type PluginConfig struct {
	// StorePath is the location of the persisted log file.
	StorePath string

	// Logger is the server logger.
	Logger Logger

	// ShuttingDown reports whether shutdown cleanup has begun.
	ShuttingDown func() bool
}
