// Package proc launches external processes and implements the process
// detachment strategies built on top of that.
package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// ErrRelativePath is returned for commands not given by absolute path;
// no PATH lookup is ever performed.
var ErrRelativePath = errors.New("proc: command path must be absolute")

// Command describes a process to launch.
type Command struct {
	// Path is the absolute path of the executable.
	Path string

	// Args are the arguments after the program name.
	Args []string

	// Stdout, when set, is a file that receives standard output.
	// It is created or truncated with mode 0644.
	Stdout string

	// Env replaces the environment when non-nil.
	Env []string

	// Dir is the working directory; empty means the caller's.
	Dir string

	// ExtraFiles are inherited as descriptors 3, 4, ...
	ExtraFiles []*os.File

	// Setsid starts the process in a new session without a controlling terminal.
	Setsid bool
}

func (c Command) build(ctx context.Context) (*exec.Cmd, *os.File, error) {
	if !filepath.IsAbs(c.Path) {
		return nil, nil, fmt.Errorf("%w: %q", ErrRelativePath, c.Path)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = c.Env
	cmd.Dir = c.Dir
	cmd.ExtraFiles = c.ExtraFiles
	if c.Setsid {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	}

	var out *os.File
	if c.Stdout != "" {
		f, err := os.OpenFile(c.Stdout, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open output file: %w", err)
		}
		cmd.Stdout = f
		out = f
	}
	return cmd, out, nil
}

// Run executes c and waits for it to exit. It returns nil only when the
// process exits normally with status 0; otherwise the error wraps an
// *exec.ExitError or the launch failure.
func Run(ctx context.Context, c Command) error {
	cmd, out, err := c.build(ctx)
	if err != nil {
		return err
	}
	if out != nil {
		defer out.Close()
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", c.Path, err)
	}
	return nil
}

// Start launches c without waiting for it. The returned process has been
// released; its exit status is never collected by the caller.
func Start(c Command) (int, error) {
	cmd, out, err := c.build(context.Background())
	if err != nil {
		return 0, err
	}
	if out != nil {
		defer out.Close()
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", c.Path, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release %d: %w", pid, err)
	}
	return pid, nil
}
