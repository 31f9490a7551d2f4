package ports

import "net"

// Detacher decides whether the current process keeps serving after the
// listener has been bound.
type Detacher interface {
	// Detach hands ln to a background process when required.
	// It returns true when the current process must exit without serving;
	// the caller then closes its copy of ln and exits 0.
	Detach(ln net.Listener) (bool, error)
}
