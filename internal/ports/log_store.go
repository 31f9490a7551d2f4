package ports

import "io"

// LogStore is the persisted, append-only byte sequence behind the service.
// Content visible to a replay is the ordered concatenation of every
// successful Append since the store was created.
//
// Implementations are not safe for concurrent use; the accept loop issues
// every call from a single goroutine.
type LogStore interface {
	// Open opens (creating if absent) a handle for one connection.
	Open() (LogHandle, error)

	// Close closes any handle still open. It is idempotent.
	Close() error

	// Remove deletes the persisted file. A missing file is not an error.
	Remove() error

	// Path returns the location of the persisted file.
	Path() string
}

// LogHandle is one open session against a LogStore.
type LogHandle interface {
	// Append writes p at the end of the store in a single operation.
	Append(p []byte) error

	// Reader rewinds to the start and returns a reader over the entire
	// current content. Each call restarts from the beginning.
	Reader() (io.Reader, error)

	// Size returns the current length of the store in bytes.
	Size() (int64, error)

	// Close releases the handle.
	Close() error
}
