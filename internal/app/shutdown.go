package app

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/aesdsocket/internal/domain"
	"github.com/bft-labs/aesdsocket/internal/ports"
)

type deadliner interface {
	SetDeadline(t time.Time) error
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// ShutdownState is the process-wide shutdown flag together with the blocking
// calls it has to interrupt. Watch only records the request and expires the
// deadlines of the tracked listener and receiving connection; every other
// shutdown action happens on the accept loop's goroutine.
type ShutdownState struct {
	requested atomic.Bool
	signal    atomic.Value // os.Signal

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener deadliner
	conn     readDeadliner
}

// NewShutdownState returns a state with no shutdown requested.
func NewShutdownState() *ShutdownState {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownState{ctx: ctx, cancel: cancel}
}

// Watch requests shutdown on the first value received from signals.
// It returns immediately. The returned function stops watching and waits for
// the watcher to exit; no signal received after it returns has any effect.
func (s *ShutdownState) Watch(signals <-chan os.Signal) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig, ok := <-signals:
			if ok {
				s.Request(sig)
			}
		case <-quit:
		case <-s.ctx.Done():
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

// Request sets the shutdown flag and interrupts a blocked accept or receive.
// sig may be nil when shutdown is requested programmatically.
func (s *ShutdownState) Request(sig os.Signal) {
	if sig != nil {
		s.signal.CompareAndSwap(nil, sig)
	}
	if s.requested.Swap(true) {
		return
	}
	s.cancel()

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.SetDeadline(now)
	}
	if s.conn != nil {
		_ = s.conn.SetReadDeadline(now)
	}
}

// Requested reports whether shutdown was requested.
func (s *ShutdownState) Requested() bool { return s.requested.Load() }

// Signal returns the signal that requested shutdown, if any.
func (s *ShutdownState) Signal() os.Signal {
	sig, _ := s.signal.Load().(os.Signal)
	return sig
}

// Done is closed once shutdown is requested.
func (s *ShutdownState) Done() <-chan struct{} { return s.ctx.Done() }

// Context is canceled once shutdown is requested.
func (s *ShutdownState) Context() context.Context { return s.ctx }

func (s *ShutdownState) trackListener(l deadliner) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	if s.Requested() {
		_ = l.SetDeadline(time.Now())
	}
}

// trackConn registers c as the connection in its receive phase. A request
// that raced the registration is applied here.
func (s *ShutdownState) trackConn(c readDeadliner) {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
	if s.Requested() {
		_ = c.SetReadDeadline(time.Now())
	}
}

func (s *ShutdownState) untrackConn() {
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
}

// cleanupStep is one best-effort action of the shutdown sequence.
type cleanupStep struct {
	op  string
	run func(ctx context.Context) error
}

// runCleanup executes every step in order. A failing step is logged and the
// sequence continues; the failures are returned joined.
func runCleanup(ctx context.Context, logger ports.Logger, steps []cleanupStep) error {
	var errs []error
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			err = domain.ShutdownError(step.op, err)
			logger.Error("cleanup step failed", ports.String("step", step.op), ports.Err(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
