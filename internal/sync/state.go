package sync

import (
	"github.com/schaermu/databricks-sync/internal/git"
	"github.com/schaermu/databricks-sync/internal/workspace"
)

// Phase is the lifecycle position of the current operation
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhasePlanning
	PhaseDryRunPrinting
	PhaseExecuting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhasePlanning:
		return "planning"
	case PhaseDryRunPrinting:
		return "dry-run"
	case PhaseExecuting:
		return "executing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ListRequest describes a workspace listing
type ListRequest struct {
	Path      string
	Recursive bool
	Absolute  bool
}

// DiffRequest compares a local path with a workspace path
type DiffRequest struct {
	LocalPath     string
	WorkspacePath string
	Recursive     bool
	Absolute      bool
}

// DiffResult holds both sides of a diff. Only presence is reported, file
// contents are never compared.
type DiffResult struct {
	// Changes are local files not yet committed
	Changes []git.Change
	Local   []string
	Remote  []workspace.Entry
}

// ExportRequest copies notebooks from the workspace into the local checkout
type ExportRequest struct {
	WorkspacePath string
	LocalPath     string
	Format        string
	Recursive     bool
	Overwrite     bool
	NoCommit      bool
	// PushTo is a remote/branch pair pushed after the commit
	PushTo string
	// Force skips the uncommitted changes check
	Force bool
}

// ImportRequest copies local files into the workspace
type ImportRequest struct {
	LocalPath     string
	WorkspacePath string
	Language      string
	Format        string
	Recursive     bool
	Overwrite     bool
	Force         bool
	// KeepExtensions keeps the local file extension on the workspace path
	KeepExtensions bool
}
