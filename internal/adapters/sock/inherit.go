package sock

import (
	"errors"
	"net"
	"os"
	"strconv"
)

// InheritedFD is the descriptor number a re-executed process finds its
// listening socket on: the first entry of exec.Cmd.ExtraFiles.
const InheritedFD = 3

// EnvListenFD names the environment variable that marks an inherited socket.
const EnvListenFD = "AESDSOCKET_LISTEN_FD"

// Inherited returns the listener passed down by a parent process, if any.
func Inherited() (*net.TCPListener, bool, error) {
	v := os.Getenv(EnvListenFD)
	if v == "" {
		return nil, false, nil
	}
	fd, err := strconv.Atoi(v)
	if err != nil {
		return nil, false, err
	}
	ln, err := fileListener(os.NewFile(uintptr(fd), "inherited"))
	if err != nil {
		return nil, false, err
	}
	return ln, true, nil
}

// File returns a duplicate of ln's descriptor suitable for exec.Cmd.ExtraFiles.
func File(ln net.Listener) (*os.File, error) {
	type filer interface {
		File() (*os.File, error)
	}
	fl, ok := ln.(filer)
	if !ok {
		return nil, errNoFile
	}
	return fl.File()
}

var errNoFile = errors.New("listener has no file descriptor")
