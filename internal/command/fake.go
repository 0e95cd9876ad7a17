package command

import (
	"context"
	"fmt"
	"strings"
)

// FakeRunner implements Runner with scripted responses for testing.
// Responses are matched by command-string prefix; the longest prefix wins.
type FakeRunner struct {
	responses map[string]fakeResponse
	calls     []Command
}

type fakeResponse struct {
	stdout   string
	exitCode int
}

// NewFakeRunner creates a FakeRunner that succeeds with empty output by default.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]fakeResponse)}
}

// Respond scripts stdout for every command whose string form starts with prefix.
func (f *FakeRunner) Respond(prefix, stdout string) {
	f.responses[prefix] = fakeResponse{stdout: stdout}
}

// Fail scripts a non-zero exit for every command whose string form starts with prefix.
func (f *FakeRunner) Fail(prefix string, exitCode int) {
	f.responses[prefix] = fakeResponse{exitCode: exitCode}
}

// Calls returns every command run so far, in order.
func (f *FakeRunner) Calls() []Command {
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Run records cmd and returns the scripted response.
func (f *FakeRunner) Run(_ context.Context, cmd Command) (*Result, error) {
	f.calls = append(f.calls, cmd)

	s := cmd.String()
	best := ""
	found := false
	for prefix := range f.responses {
		if strings.HasPrefix(s, prefix) && len(prefix) >= len(best) {
			best = prefix
			found = true
		}
	}
	if !found {
		return &Result{}, nil
	}

	resp := f.responses[best]
	result := &Result{Stdout: resp.stdout, ExitCode: resp.exitCode}
	if resp.exitCode != 0 {
		return result, fmt.Errorf("%w: %s: exit status %d", ErrCommandFailed, s, resp.exitCode)
	}
	return result, nil
}
