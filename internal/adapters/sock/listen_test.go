package sock

import (
	"errors"
	"net"
	"os"
	"strconv"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

func TestListen_EphemeralPort(t *testing.T) {
	ln, err := Listen(0, 10)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	if addr.Port == 0 {
		t.Fatal("expected an ephemeral port to be assigned")
	}
	if !addr.IP.IsUnspecified() {
		t.Errorf("bound to %v, want all interfaces", addr.IP)
	}

	c, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(addr.Port)))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	c.Close()
}

func TestListen_PortInUse(t *testing.T) {
	first, err := Listen(0, 1)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer first.Close()

	port := first.Addr().(*net.TCPAddr).Port
	_, err = Listen(port, 1)
	if err == nil {
		t.Fatal("expected bind failure on a port already listening")
	}
	var sysErr *os.SyscallError
	if !errors.As(err, &sysErr) || sysErr.Syscall != "bind" {
		t.Errorf("error = %v, want bind syscall error", err)
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		t.Errorf("error = %v, want EADDRINUSE", err)
	}
}

func TestInherited(t *testing.T) {
	t.Setenv(EnvListenFD, "")
	if _, ok, err := Inherited(); ok || err != nil {
		t.Fatalf("Inherited() without env = %v, %v", ok, err)
	}

	ln, err := Listen(0, 1)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	f, err := File(ln)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	// Inherited takes ownership of the descriptor, so hand it a private copy.
	fd, err := unix.Dup(int(f.Fd()))
	f.Close()
	if err != nil {
		t.Fatalf("dup: %v", err)
	}
	t.Setenv(EnvListenFD, strconv.Itoa(fd))

	got, ok, err := Inherited()
	if err != nil || !ok {
		t.Fatalf("Inherited() = %v, %v", ok, err)
	}
	defer got.Close()
	if got.Addr().String() != ln.Addr().String() {
		t.Errorf("inherited addr = %s, want %s", got.Addr(), ln.Addr())
	}

	t.Setenv(EnvListenFD, "not-a-number")
	if _, _, err := Inherited(); err == nil {
		t.Error("expected error for malformed descriptor")
	}
}
