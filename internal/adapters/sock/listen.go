// Package sock builds the service's listening socket.
//
// The socket is created with raw system calls so that SO_REUSEADDR and the
// listen backlog are set exactly as configured, then handed to the net
// package as an ordinary net.Listener.
package sock

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listen binds a TCP stream socket to port on all IPv4 interfaces with
// address reuse enabled and starts listening with the given backlog.
// Port 0 selects an ephemeral port.
func Listen(port, backlog int) (*net.TCPListener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("setsockopt", err)
	}

	// INADDR_ANY
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	return fileListener(os.NewFile(uintptr(fd), fmt.Sprintf("tcp:%d", port)))
}

// fileListener converts f into a *net.TCPListener. net.FileListener dups the
// descriptor, so f is always closed here.
func fileListener(f *os.File) (*net.TCPListener, error) {
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("file listener: %w", err)
	}
	tcp, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("file listener: not a TCP socket (%T)", ln)
	}
	return tcp, nil
}
