package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers check with errors.Is.
var (
	// ErrPeerClosed is returned when the client closes before a frame delimiter arrives.
	ErrPeerClosed = errors.New("aesdsocket: peer closed before delimiter")

	// ErrAlreadyRunning is returned when Serve() is called on a running server.
	ErrAlreadyRunning = errors.New("aesdsocket: already running")

	// ErrNotRunning is returned when a stop is requested on a stopped server.
	ErrNotRunning = errors.New("aesdsocket: not running")

	// ErrServerStopped is returned by the accept loop when its listener was
	// closed without a shutdown request.
	ErrServerStopped = errors.New("aesdsocket: server stopped")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("aesdsocket: invalid configuration")
)

// Kind classifies a failure by the component policy that handles it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindStartup is fatal: the process exits non-zero before the accept loop.
	KindStartup
	// KindConnection aborts one connection; the listener keeps accepting.
	KindConnection
	// KindResource aborts one connection (store open, buffer growth).
	KindResource
	// KindShutdown is logged; remaining cleanup steps still run.
	KindShutdown
)

// String returns a lowercase label, also used as a metrics label value.
func (k Kind) String() string {
	switch k {
	case KindStartup:
		return "startup"
	case KindConnection:
		return "connection"
	case KindResource:
		return "resource"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Error is a classified failure of a single operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StartupError wraps err as a fatal startup failure of op.
func StartupError(op string, err error) error {
	return &Error{Kind: KindStartup, Op: op, Err: err}
}

// ConnectionError wraps err as a failure scoped to one connection.
func ConnectionError(op string, err error) error {
	return &Error{Kind: KindConnection, Op: op, Err: err}
}

// ResourceError wraps err as a local resource failure.
func ResourceError(op string, err error) error {
	return &Error{Kind: KindResource, Op: op, Err: err}
}

// ShutdownError wraps err as a best-effort cleanup failure.
func ShutdownError(op string, err error) error {
	return &Error{Kind: KindShutdown, Op: op, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
