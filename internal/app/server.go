package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	logadapter "github.com/bft-labs/aesdsocket/internal/adapters/log"
	"github.com/bft-labs/aesdsocket/internal/domain"
	"github.com/bft-labs/aesdsocket/internal/ports"
)

// DefaultCleanupTimeout bounds the context given to plugin and resource
// shutdown during cleanup.
const DefaultCleanupTimeout = 5 * time.Second

// Resource is an auxiliary component closed during cleanup, after the
// plugins and before the log store.
type Resource struct {
	Name  string
	Close func(ctx context.Context) error
}

// Option configures optional behavior of a Server.
type Option func(*options)

type options struct {
	logger    ports.Logger
	logCloser io.Closer
	plugins   []ports.Plugin
	resources []Resource
	chunkSize int
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogCloser registers the logging sink, closed as the last cleanup step.
func WithLogCloser(c io.Closer) Option {
	return func(o *options) {
		o.logCloser = c
	}
}

// WithPlugins adds plugins, initialized in order before the accept loop
// starts and shut down in reverse order during cleanup.
func WithPlugins(plugins ...ports.Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// WithResource adds an auxiliary resource closed during cleanup.
func WithResource(r Resource) Option {
	return func(o *options) {
		o.resources = append(o.resources, r)
	}
}

// WithChunkSize sets the receive and replay chunk size.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// Server owns the listening socket, the log store and the shutdown sequence.
type Server struct {
	ln        *net.TCPListener
	store     ports.LogStore
	opts      options
	lifecycle *Lifecycle
	state     *ShutdownState
	logger    ports.Logger
	started   []ports.Plugin
}

// NewServer wraps a bound listener. The server takes ownership of ln and
// store; both are released by Serve or Release.
func NewServer(ln *net.TCPListener, store ports.LogStore, opts ...Option) *Server {
	o := options{logger: logadapter.NewNoopLogger(), chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		ln:        ln,
		store:     store,
		opts:      o,
		lifecycle: NewLifecycle(o.logger),
		state:     NewShutdownState(),
		logger:    o.logger,
	}
}

// Addr returns the listener's network address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Listener returns the listening socket, for handing to a detached child.
func (s *Server) Listener() *net.TCPListener { return s.ln }

// State returns the lifecycle state.
func (s *Server) State() State { return s.lifecycle.State() }

// Shutdown requests shutdown as if a termination signal had arrived.
func (s *Server) Shutdown() { s.state.Request(nil) }

// Serve runs the accept loop until a value arrives on signals or Shutdown is
// called, then runs cleanup. Cleanup failures are logged and returned
// joined; they do not indicate that serving failed.
func (s *Server) Serve(signals <-chan os.Signal) error {
	if err := s.lifecycle.TransitionTo(StateServing, "serve"); err != nil {
		return err
	}
	stop := s.state.Watch(signals)
	defer stop()

	s.startPlugins()

	handler := NewConnectionHandler(s.store, s.opts.chunkSize, s.state, s.logger)
	loopErr := NewListener(s.ln, handler, s.state, s.logger).Run()
	if loopErr != nil {
		s.logger.Error("accept loop stopped", ports.Err(loopErr))
	}

	_ = s.lifecycle.TransitionTo(StateDraining, "shutdown requested")
	if sig := s.state.Signal(); sig != nil {
		s.logger.Info("Caught signal, exiting", ports.String("signal", sig.String()))
	}

	err := s.cleanup(true)
	_ = s.lifecycle.TransitionTo(StateStopped, "cleanup complete")
	return err
}

// Release closes the listener and the logging sink without touching the log
// store. A process that handed the listener to a detached child calls it.
func (s *Server) Release() error {
	if err := s.lifecycle.TransitionTo(StateStopped, "released"); err != nil {
		return err
	}
	s.state.Request(nil)
	return s.cleanup(false)
}

func (s *Server) startPlugins() {
	cfg := ports.PluginConfig{
		StorePath:    s.store.Path(),
		Logger:       s.logger,
		ShuttingDown: s.state.Requested,
	}
	for _, p := range s.opts.plugins {
		if err := p.Initialize(s.state.Context(), cfg); err != nil {
			s.logger.Warn("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err),
			)
			continue
		}
		s.started = append(s.started, p)
		s.logger.Debug("plugin initialized", ports.String("plugin", p.Name()))
	}
}

// cleanup runs the shutdown sequence. With removeStore unset the store file
// is left in place.
func (s *Server) cleanup(removeStore bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultCleanupTimeout)
	defer cancel()

	steps := []cleanupStep{
		{op: "close listener", run: func(context.Context) error {
			if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				return err
			}
			return nil
		}},
	}
	for i := len(s.started) - 1; i >= 0; i-- {
		p := s.started[i]
		steps = append(steps, cleanupStep{
			op:  fmt.Sprintf("shutdown plugin %s", p.Name()),
			run: p.Shutdown,
		})
	}
	for _, r := range s.opts.resources {
		steps = append(steps, cleanupStep{op: "close " + r.Name, run: r.Close})
	}
	if removeStore {
		steps = append(steps,
			cleanupStep{op: "close store", run: func(context.Context) error { return s.store.Close() }},
			cleanupStep{op: "remove store", run: func(context.Context) error { return s.store.Remove() }},
		)
	}

	err := runCleanup(ctx, s.logger, steps)
	if s.opts.logCloser != nil {
		if cerr := s.opts.logCloser.Close(); cerr != nil {
			err = errors.Join(err, domain.ShutdownError("close log sink", cerr))
		}
	}
	return err
}
