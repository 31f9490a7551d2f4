package storewatch

import "github.com/bft-labs/aesdsocket/internal/app"

// WithStoreWatch returns a server Option that enables log store watching.
//
// Usage:
//
//	srv := app.NewServer(ln, store,
//	    storewatch.WithStoreWatch(storewatch.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithStoreWatch(cfg Config) app.Option {
	return app.WithPlugins(New(cfg))
}

// WithDefaultStoreWatch returns a server Option that enables store watching
// with default settings.
func WithDefaultStoreWatch() app.Option {
	return WithStoreWatch(DefaultConfig())
}
