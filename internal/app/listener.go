package app

import (
	"errors"
	"net"
	"time"

	"github.com/bft-labs/aesdsocket/internal/adapters/sock"
	"github.com/bft-labs/aesdsocket/internal/domain"
	"github.com/bft-labs/aesdsocket/internal/metrics"
	"github.com/bft-labs/aesdsocket/internal/ports"
)

// Bind returns the listening socket: the one inherited from a detaching
// parent if present, otherwise a new one on port bound to every IPv4
// interface.
func Bind(port, backlog int, logger ports.Logger) (*net.TCPListener, error) {
	ln, ok, err := sock.Inherited()
	if err != nil {
		return nil, domain.StartupError("inherit listener", err)
	}
	if ok {
		logger.Debug("using inherited listener", ports.String("addr", ln.Addr().String()))
		return ln, nil
	}

	ln, err = sock.Listen(port, backlog)
	if err != nil {
		return nil, domain.StartupError("listen", err)
	}
	logger.Info("listening",
		ports.String("addr", ln.Addr().String()),
		ports.Int("backlog", backlog),
	)
	return ln, nil
}

// acceptListener is the part of *net.TCPListener the accept loop uses.
type acceptListener interface {
	Accept() (net.Conn, error)
	SetDeadline(t time.Time) error
}

// Listener runs the accept loop. Connections are handled one at a time on
// the loop's goroutine, so store operations are strictly serialized.
type Listener struct {
	ln      acceptListener
	handler *ConnectionHandler
	state   *ShutdownState
	backoff *backoff
	logger  ports.Logger
}

// NewListener creates an accept loop over ln.
func NewListener(ln acceptListener, handler *ConnectionHandler, state *ShutdownState, logger ports.Logger) *Listener {
	return &Listener{
		ln:      ln,
		handler: handler,
		state:   state,
		backoff: newBackoff(DefaultBackoffInitial, DefaultBackoffMax),
		logger:  logger,
	}
}

// Run accepts until shutdown is requested. It returns nil on a requested
// shutdown and ErrServerStopped if the listener was closed underneath it.
func (l *Listener) Run() error {
	l.state.trackListener(l.ln)

	for !l.state.Requested() {
		conn, err := l.ln.Accept()
		if err != nil {
			if l.state.Requested() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return domain.ErrServerStopped
			}

			err = domain.ConnectionError("accept", err)
			metrics.ErrorsTotal.WithLabelValues(domain.KindConnection.String()).Inc()
			l.logger.Error("Accept failed",
				ports.Err(err),
				ports.Duration("retry_in", l.backoff.Current()),
			)
			if !l.backoff.Wait(l.state.Done()) {
				return nil
			}
			continue
		}

		l.backoff.Reset()
		l.handler.Handle(conn)
	}
	return nil
}
