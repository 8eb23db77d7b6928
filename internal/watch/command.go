package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// ErrNoCommand is returned when asked to run an empty command line.
var ErrNoCommand = errors.New("no command to run")

// SignalTimeout is how long a cancelled command gets to exit before it is killed.
const SignalTimeout = 2 * time.Second

// Command is a shell command line whose stdout is consumed by the caller.
type Command struct {
	Line   string
	Dir    string
	Stderr io.Writer // defaults to os.Stderr
}

// Process is a started Command.
type Process struct {
	Stdout io.ReadCloser
	cmd    *exec.Cmd
}

// Start launches the command under sh -c. The caller must drain Stdout
// and then call Wait.
func (c Command) Start(ctx context.Context) (*Process, error) {
	if c.Line == "" {
		return nil, ErrNoCommand
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", c.Line)
	cmd.Dir = c.Dir
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = SignalTimeout

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %q: %w", c.Line, err)
	}
	return &Process{Stdout: stdout, cmd: cmd}, nil
}

// Wait waits for the command to exit and returns its exit code. A non-zero
// exit is not an error: failing tests are reported through the output.
func (p *Process) Wait() (int, error) {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
