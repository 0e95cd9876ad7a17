package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/schaermu/databricks-sync/internal/command"
)

// DefaultCommitMessage is used for the commit appended after an export
const DefaultCommitMessage = "committed changes exported from workspace"

// ErrMalformedPushTarget is returned when a push target is not of the form remote/branch
var ErrMalformedPushTarget = errors.New("malformed push target")

// untracked is the status code git uses for files it does not track
const untracked = "??"

// Change is one entry of the short status output
type Change struct {
	Code string
	Path string
}

// Client reports local changes that would block a sync
type Client interface {
	// Changes returns files with uncommitted or untracked changes under path
	Changes(ctx context.Context, path string, recursive, modifiedOnly bool) ([]Change, error)
}

// ShellClient implements Client by shelling out to the git command
type ShellClient struct {
	runner command.Runner
}

// NewShellClient creates a new git client that runs git through runner
func NewShellClient(runner command.Runner) *ShellClient {
	return &ShellClient{runner: runner}
}

// StatusCommand returns the short status query including untracked files
func StatusCommand(path string) command.Command {
	return command.New("git", "status", "-s", "-u", "normal", path)
}

// Changes runs git status for path. A failing status query is returned as an
// error wrapping command.ErrCommandFailed.
func (c *ShellClient) Changes(ctx context.Context, path string, recursive, modifiedOnly bool) ([]Change, error) {
	res, err := c.runner.Run(ctx, StatusCommand(path))
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	return ParseStatus(res.Lines(), recursive, modifiedOnly), nil
}

// ParseStatus turns short status lines into change records. Entries outside
// the queried directory (paths starting with "..") are dropped, as are
// untracked files when modifiedOnly is set and nested paths unless recursive.
func ParseStatus(lines []string, recursive, modifiedOnly bool) []Change {
	var changes []Change
	for _, l := range lines {
		if len(l) < 2 {
			continue
		}
		ch := Change{Code: l[:2], Path: statusPath(strings.TrimSpace(l[2:]))}
		if ch.Path == "" || strings.HasPrefix(ch.Path, "..") {
			continue
		}
		if modifiedOnly && ch.Code == untracked {
			continue
		}
		if !recursive && strings.Contains(ch.Path, "/") {
			continue
		}
		changes = append(changes, ch)
	}
	return changes
}

// statusPath extracts the current path from a short status path field.
// Renames ("old -> new") yield the new path; C-quoted paths are unquoted.
func statusPath(field string) string {
	if _, dst, ok := strings.Cut(field, " -> "); ok {
		field = dst
	}
	if strings.HasPrefix(field, `"`) {
		if unquoted, err := strconv.Unquote(field); err == nil {
			return unquoted
		}
	}
	return field
}

// Paths returns the paths of changes, in order
func Paths(changes []Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Path
	}
	return out
}

// AddCommand stages a single file
func AddCommand(file string) command.Command {
	return command.New("git", "add", file)
}

// CommitCommand commits the staged files
func CommitCommand(message string) command.Command {
	if message == "" {
		message = DefaultCommitMessage
	}
	return command.New("git", "commit", "-m", message)
}

// PushTarget is a parsed remote/branch pair
type PushTarget struct {
	Remote string
	Branch string
}

func (p PushTarget) String() string {
	return p.Remote + "/" + p.Branch
}

// ParsePushTarget splits s into remote and branch. Exactly two non-empty
// components are required.
func ParsePushTarget(s string) (PushTarget, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return PushTarget{}, fmt.Errorf("%w: %q: use remote/branch", ErrMalformedPushTarget, s)
	}
	remote, branch := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if remote == "" || branch == "" {
		return PushTarget{}, fmt.Errorf("%w: %q: use remote/branch", ErrMalformedPushTarget, s)
	}
	return PushTarget{Remote: remote, Branch: branch}, nil
}

// PushCommand pushes branch to remote
func PushCommand(t PushTarget) command.Command {
	return command.New("git", "push", t.Remote, t.Branch)
}
