package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ShellRunner implements Runner by starting the program with os/exec
type ShellRunner struct {
	dir    string
	logger *slog.Logger
}

// NewShellRunner creates a runner that executes commands in dir
// (the current directory when dir is empty).
func NewShellRunner(dir string, logger *slog.Logger) *ShellRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShellRunner{dir: dir, logger: logger}
}

// Run executes cmd and captures stdout, stderr and the exit code
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrCommandFailed)
	}

	r.logger.Info("executing command", "command", cmd.String())

	c := exec.CommandContext(ctx, cmd.Program(), cmd.Args()...)
	if r.dir != "" {
		c.Dir = r.dir
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}
	r.logger.Debug("command finished", "command", cmd.Program(), "exit_code", result.ExitCode)

	if err != nil {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		return result, fmt.Errorf("%w: %s: %v: %s", ErrCommandFailed, cmd.String(), err, msg)
	}
	return result, nil
}
