package proc

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireBinary(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Skipf("%s not available: %v", path, err)
	}
}

func TestRun(t *testing.T) {
	requireBinary(t, "/bin/sh")

	tests := []struct {
		name     string
		cmd      Command
		wantErr  bool
		wantExit bool
	}{
		{"exit zero", Command{Path: "/bin/sh", Args: []string{"-c", "exit 0"}}, false, false},
		{"exit non-zero", Command{Path: "/bin/sh", Args: []string{"-c", "exit 3"}}, true, true},
		{"missing executable", Command{Path: "/nonexistent/cmd"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(context.Background(), tt.cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			var exitErr *exec.ExitError
			if got := errors.As(err, &exitErr); got != tt.wantExit {
				t.Errorf("exit error = %v, want %v (err %v)", got, tt.wantExit, err)
			}
		})
	}
}

func TestRun_RelativePath(t *testing.T) {
	err := Run(context.Background(), Command{Path: "sh", Args: []string{"-c", "true"}})
	if !errors.Is(err, ErrRelativePath) {
		t.Fatalf("Run() error = %v, want ErrRelativePath", err)
	}
}

func TestRun_RedirectStdout(t *testing.T) {
	requireBinary(t, "/bin/sh")
	out := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(out, []byte("stale content that must be truncated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), Command{
		Path:   "/bin/sh",
		Args:   []string{"-c", "echo home is $HOME"},
		Env:    []string{"HOME=/root"},
		Stdout: out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "home is /root\n" {
		t.Errorf("redirected output = %q", b)
	}
}

func TestRun_RedirectOpenFailure(t *testing.T) {
	err := Run(context.Background(), Command{
		Path:   "/bin/sh",
		Stdout: filepath.Join(t.TempDir(), "missing", "out.txt"),
	})
	if err == nil {
		t.Fatal("expected error for unwritable output file")
	}
}

func TestStart(t *testing.T) {
	requireBinary(t, "/bin/sh")
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	pid, err := Start(Command{
		Path:   "/bin/sh",
		Args:   []string{"-c", "pwd > " + marker},
		Dir:    dir,
		Setsid: true,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if pid <= 0 {
		t.Errorf("pid = %d, want > 0", pid)
	}

	if _, err := Start(Command{Path: "relative"}); !errors.Is(err, ErrRelativePath) {
		t.Errorf("Start(relative) error = %v", err)
	}
}
