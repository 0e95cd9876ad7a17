package command

import (
	"context"
	"errors"
	"strings"
)

// ErrCommandFailed is returned when an external command exits non-zero or
// cannot be started.
var ErrCommandFailed = errors.New("command failed")

// Command is a single external invocation: program name followed by its arguments.
type Command []string

// New creates a command from a program and its arguments
func New(program string, args ...string) Command {
	return append(Command{program}, args...)
}

// Program returns the executable name, or "" for an empty command
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments after the program name
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// String renders the command the way it is printed in dry-run output
func (c Command) String() string {
	return strings.Join(c, " ")
}

// Result holds the captured output of one command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Lines splits stdout into lines, dropping the trailing empty line.
func (r *Result) Lines() []string {
	if r == nil || r.Stdout == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(r.Stdout, "\r\n", "\n"), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Runner executes a single command synchronously
type Runner interface {
	// Run executes cmd and waits for it to finish. A non-zero exit returns
	// both the captured result and an error wrapping ErrCommandFailed.
	Run(ctx context.Context, cmd Command) (*Result, error)
}
