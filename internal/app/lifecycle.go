package app

import (
	"sync"

	"github.com/bft-labs/aesdsocket/internal/domain"
	"github.com/bft-labs/aesdsocket/internal/ports"
)

// State represents the lifecycle state of the server.
type State int

const (
	StateIdle State = iota
	StateServing
	StateDraining
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateServing:
		return "Serving"
	case StateDraining:
		return "Draining"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Lifecycle manages the state machine for the server.
// Stopped is terminal: the log store is gone once cleanup ran.
type Lifecycle struct {
	mu     sync.RWMutex
	state  State
	logger ports.Logger
}

// NewLifecycle creates a new lifecycle manager in StateIdle.
func NewLifecycle(logger ports.Logger) *Lifecycle {
	return &Lifecycle{
		state:  StateIdle,
		logger: logger,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	// Validate transition
	switch oldState {
	case StateIdle:
		if newState != StateServing && newState != StateStopped {
			l.mu.Unlock()
			return domain.ErrNotRunning
		}
	case StateServing:
		if newState != StateDraining {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateDraining:
		if newState != StateStopped {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStopped:
		l.mu.Unlock()
		return domain.ErrNotRunning
	}

	l.state = newState
	l.mu.Unlock()

	l.logger.Debug("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

// CanServe returns true if Serve() can be called.
func (l *Lifecycle) CanServe() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateIdle
}
