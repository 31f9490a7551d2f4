package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/bft-labs/aesdsocket/internal/ports"
)

// DefaultPath is where the service keeps its accumulated frames.
const DefaultPath = "/var/tmp/aesdsocketdata"

const storePerm = 0o666

// FileLogStore implements ports.LogStore on a single append-only file.
// The file is created lazily by the first Open.
type FileLogStore struct {
	path   string
	active *fileHandle
}

// NewFileLogStore creates a store backed by the file at path.
func NewFileLogStore(path string) *FileLogStore {
	return &FileLogStore{path: path}
}

// Path returns the full path to the store file.
func (s *FileLogStore) Path() string { return s.path }

// Open opens the file in read-write-append mode, creating it if absent.
func (s *FileLogStore) Open() (ports.LogHandle, error) {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_RDWR, storePerm)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	h := &fileHandle{f: f, owner: s}
	s.active = h
	return h, nil
}

// Close closes the handle left open by an interrupted connection, if any.
func (s *FileLogStore) Close() error {
	if s.active == nil {
		return nil
	}
	return s.active.Close()
}

// Remove deletes the store file. A missing file is not an error.
func (s *FileLogStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type fileHandle struct {
	f     *os.File
	owner *FileLogStore
}

// Append issues a single write; O_APPEND places it at the current end.
func (h *fileHandle) Append(p []byte) error {
	n, err := h.f.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// Reader rewinds the file and returns it as a reader bounded by the size at
// the time of the call.
func (h *fileHandle) Reader() (io.Reader, error) {
	size, err := h.Size()
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(h.f, 0, size), nil
}

func (h *fileHandle) Size() (int64, error) {
	fi, err := h.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (h *fileHandle) Close() error {
	if h.f == nil {
		return nil
	}
	err := h.f.Close()
	h.f = nil
	if h.owner != nil && h.owner.active == h {
		h.owner.active = nil
	}
	return err
}
