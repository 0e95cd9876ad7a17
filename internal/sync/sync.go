package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schaermu/databricks-sync/internal/command"
	"github.com/schaermu/databricks-sync/internal/config"
	"github.com/schaermu/databricks-sync/internal/git"
	"github.com/schaermu/databricks-sync/internal/local"
	"github.com/schaermu/databricks-sync/internal/notebook"
	"github.com/schaermu/databricks-sync/internal/pathmap"
	"github.com/schaermu/databricks-sync/internal/workspace"
)

var (
	// ErrUncommittedChanges is returned when the local subtree has modified or
	// untracked files and the check was not bypassed.
	ErrUncommittedChanges = errors.New("there are uncommitted changes")
	// ErrTargetExists is returned when an export would replace a local file
	ErrTargetExists = errors.New("export would replace existing file, use --overwrite")
	// ErrLanguageRequired is returned when an import has no target language
	ErrLanguageRequired = errors.New("a notebook language is required for import")
	// ErrPushWithoutCommit is returned when a push is requested without a commit
	ErrPushWithoutCommit = errors.New("cannot push when commits are disabled")
)

// Engine plans and runs sync operations between the workspace and the local checkout
type Engine struct {
	cfg       *config.Config
	runner    command.Runner
	workspace *workspace.Client
	walker    *workspace.Walker
	git       git.Client
	files     *local.Lister
	out       io.Writer
	logger    *slog.Logger
	dryRun    bool
	workDir   string
	phase     Phase
}

// NewEngine creates a new sync engine. Read-only queries (listings, status)
// always run; dryRun only affects the command plan.
func NewEngine(cfg *config.Config, runner command.Runner, gitClient git.Client, files *local.Lister, logger *slog.Logger, dryRun bool) *Engine {
	ws := workspace.NewClient(runner, cfg.Profile)
	return &Engine{
		cfg:       cfg,
		runner:    runner,
		workspace: ws,
		walker:    workspace.NewWalker(ws, logger),
		git:       gitClient,
		files:     files,
		out:       os.Stdout,
		logger:    logger,
		dryRun:    dryRun,
	}
}

// SetOutput sets where the dry-run plan is printed
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

// SetWorkDir sets the directory absolute local paths are rooted at
func (e *Engine) SetWorkDir(dir string) {
	e.workDir = dir
}

// Phase returns the lifecycle position of the last operation
func (e *Engine) Phase() Phase {
	return e.phase
}

func (e *Engine) setPhase(p Phase) {
	if p == e.phase {
		return
	}
	e.logger.Debug("phase transition", "from", e.phase.String(), "to", p.String())
	e.phase = p
}

// fail moves to the failed phase and passes err through
func (e *Engine) fail(err error) error {
	e.setPhase(PhaseFailed)
	return err
}

// List walks the workspace at req.Path, keeping folders and other objects
func (e *Engine) List(ctx context.Context, req ListRequest) ([]workspace.Entry, error) {
	e.phase = PhaseIdle
	e.setPhase(PhaseValidating)
	root := pathmap.Resolve(req.Path, e.cfg.Root)
	e.logger.Info("listing workspace", "path", root)

	e.setPhase(PhasePlanning)
	entries, err := e.walker.Walk(ctx, workspace.Query{
		Path:         root,
		Recursive:    req.Recursive,
		IncludeOther: true,
		Absolute:     req.Absolute,
	})
	if err != nil {
		return nil, e.fail(err)
	}

	e.setPhase(PhaseDone)
	return entries, nil
}

// Diff lists the local files and the workspace notebooks addressed by req.
// Uncommitted local changes are only reported.
func (e *Engine) Diff(ctx context.Context, req DiffRequest) (*DiffResult, error) {
	e.phase = PhaseIdle
	e.setPhase(PhaseValidating)
	recursive := implicitRecursive(req.Recursive, req.LocalPath, req.WorkspacePath)

	changes, err := e.git.Changes(ctx, req.LocalPath, recursive, false)
	if err != nil {
		return nil, e.fail(err)
	}
	if len(changes) > 0 {
		e.logger.Warn("there are modified or untracked files not checked in to local repo", "files", git.Paths(changes))
	}

	pattern, err := pathmap.LocalPattern(req.LocalPath, recursive, req.Absolute, e.workDir)
	if err != nil {
		return nil, e.fail(err)
	}

	e.setPhase(PhasePlanning)
	files, err := e.files.Glob(pattern, recursive)
	if err != nil {
		return nil, e.fail(fmt.Errorf("failed to list local files: %w", err))
	}

	remote, err := e.walker.Walk(ctx, workspace.Query{
		Path:      pathmap.Resolve(req.WorkspacePath, e.cfg.Root),
		Recursive: recursive,
		OmitDirs:  true,
		Absolute:  req.Absolute,
	})
	if err != nil {
		return nil, e.fail(err)
	}

	e.setPhase(PhaseDone)
	return &DiffResult{Changes: changes, Local: files, Remote: remote}, nil
}

// Export plans and runs an export
func (e *Engine) Export(ctx context.Context, req ExportRequest) error {
	plan, err := e.PlanExport(ctx, req)
	if err != nil {
		return err
	}
	return e.Execute(ctx, plan)
}

// PlanExport builds the commands that export notebooks from the workspace into
// req.LocalPath and commit them. No command of the plan is run.
func (e *Engine) PlanExport(ctx context.Context, req ExportRequest) (*command.Plan, error) {
	e.phase = PhaseIdle
	e.setPhase(PhaseValidating)

	var push *git.PushTarget
	if req.PushTo != "" {
		if req.NoCommit {
			return nil, e.fail(ErrPushWithoutCommit)
		}
		target, err := git.ParsePushTarget(req.PushTo)
		if err != nil {
			return nil, e.fail(err)
		}
		push = &target
	}

	format, err := e.format(req.Format)
	if err != nil {
		return nil, e.fail(err)
	}

	recursive := implicitRecursive(req.Recursive, req.LocalPath, req.WorkspacePath)
	if err := e.checkClean(ctx, req.LocalPath, recursive, req.Force); err != nil {
		return nil, e.fail(err)
	}

	e.setPhase(PhasePlanning)
	q := workspace.Query{
		Path:      pathmap.Resolve(req.WorkspacePath, e.cfg.Root),
		Recursive: recursive,
		OmitDirs:  true,
		Absolute:  true,
	}
	src, pattern := q.Root()
	e.logger.Info("retrieving workspace files", "path", src, "pattern", pattern)

	entries, err := e.walker.Walk(ctx, q)
	if err != nil {
		return nil, e.fail(err)
	}

	localDir := filepath.FromSlash(pathmap.TrimRecursiveMarker(req.LocalPath))

	type transfer struct{ src, dst string }
	transfers := make([]transfer, 0, len(entries))
	folders := make(map[string]bool)
	for _, entry := range entries {
		lang, err := notebook.ParseLanguage(entry.Language)
		if err != nil {
			return nil, e.fail(fmt.Errorf("notebook %s: %w", entry.Path, err))
		}
		name, err := notebook.LocalFilename(relativeTo(src, entry.Path), lang, format)
		if err != nil {
			return nil, e.fail(fmt.Errorf("notebook %s: %w", entry.Path, err))
		}
		dst := filepath.Join(localDir, filepath.FromSlash(name))

		if !req.Overwrite && e.files.Exists(dst) {
			return nil, e.fail(fmt.Errorf("%w: %s", ErrTargetExists, dst))
		}

		if dir := filepath.Dir(dst); dir != "." {
			folders[dir] = true
		}
		transfers = append(transfers, transfer{src: pathmap.Resolve(src, e.cfg.Root, entry.Path), dst: dst})
	}

	plan := command.NewPlan()
	if len(transfers) == 0 {
		e.logger.Warn("no notebooks matched", "path", q.Path)
		return plan, nil
	}

	for _, dir := range sortedKeys(folders) {
		plan.Add(command.New("mkdir", "-p", dir))
	}
	for _, t := range transfers {
		plan.Add(e.workspace.ExportCommand(t.src, t.dst, format, req.Overwrite))
		plan.Add(git.AddCommand(t.dst))
	}
	if !req.NoCommit {
		plan.Add(git.CommitCommand(git.DefaultCommitMessage))
	}
	if push != nil {
		plan.Add(git.PushCommand(*push))
	}

	e.logger.Info("export plan", "notebooks", len(transfers), "folders", len(folders), "commands", plan.Len())
	return plan, nil
}

// Import plans and runs an import
func (e *Engine) Import(ctx context.Context, req ImportRequest) error {
	plan, err := e.PlanImport(ctx, req)
	if err != nil {
		return err
	}
	return e.Execute(ctx, plan)
}

// PlanImport builds the commands that import local files into the workspace.
// No command of the plan is run.
func (e *Engine) PlanImport(ctx context.Context, req ImportRequest) (*command.Plan, error) {
	e.phase = PhaseIdle
	e.setPhase(PhaseValidating)

	langName := req.Language
	if langName == "" {
		langName = e.cfg.Language
	}
	if langName == "" {
		return nil, e.fail(ErrLanguageRequired)
	}
	lang, err := notebook.ParseLanguage(langName)
	if err != nil {
		return nil, e.fail(err)
	}
	format, err := e.format(req.Format)
	if err != nil {
		return nil, e.fail(err)
	}

	recursive := implicitRecursive(req.Recursive, req.LocalPath, req.WorkspacePath)
	if err := e.checkClean(ctx, req.LocalPath, recursive, req.Force); err != nil {
		return nil, e.fail(err)
	}

	pattern, err := pathmap.LocalPattern(req.LocalPath, recursive, false, e.workDir)
	if err != nil {
		return nil, e.fail(err)
	}

	e.setPhase(PhasePlanning)
	files, err := e.files.Glob(pattern, recursive)
	if err != nil {
		return nil, e.fail(fmt.Errorf("failed to list local files: %w", err))
	}
	e.logger.Info("local files to import", "pattern", pattern, "files", files)

	base := pathmap.TrimRecursiveMarker(pathmap.Resolve(req.WorkspacePath, e.cfg.Root))

	type transfer struct{ src, dst string }
	transfers := make([]transfer, 0, len(files))
	folders := make(map[string]bool)
	for _, f := range files {
		dst := pathmap.Resolve(base, e.cfg.Root, strings.TrimPrefix(filepath.ToSlash(f), pathmap.Separator))
		folders[path.Dir(dst)] = true
		if !req.KeepExtensions {
			dst = stripExtension(dst)
		}
		transfers = append(transfers, transfer{src: f, dst: dst})
	}

	plan := command.NewPlan()
	if len(transfers) == 0 {
		e.logger.Warn("no local files matched", "pattern", pattern)
		return plan, nil
	}

	for _, dir := range sortedKeys(folders) {
		plan.Add(e.workspace.MkdirsCommand(dir))
	}
	for _, t := range transfers {
		plan.Add(e.workspace.ImportCommand(t.src, t.dst, lang, format, req.Overwrite))
	}

	e.logger.Info("import plan", "files", len(transfers), "folders", len(folders), "commands", plan.Len())
	return plan, nil
}

// Execute runs plan in order and stops at the first failing command.
// Commands that already ran are not undone. In dry-run mode each command is
// printed instead.
func (e *Engine) Execute(ctx context.Context, plan *command.Plan) error {
	if e.dryRun {
		e.setPhase(PhaseDryRunPrinting)
		for _, cmd := range plan.Commands() {
			if _, err := fmt.Fprintf(e.out, "Dryrun: Executing command [%s]\n", cmd); err != nil {
				return e.fail(fmt.Errorf("failed to print plan: %w", err))
			}
		}
		e.logger.Info("dry-run complete, no commands executed", "commands", plan.Len())
		e.setPhase(PhaseDone)
		return nil
	}

	e.setPhase(PhaseExecuting)
	for i, cmd := range plan.Commands() {
		if err := ctx.Err(); err != nil {
			return e.fail(err)
		}
		res, err := e.runner.Run(ctx, cmd)
		if err != nil {
			e.logger.Error("command failed, aborting", "command", cmd.String(), "step", i+1, "of", plan.Len())
			return e.fail(err)
		}
		if res != nil && res.Stdout != "" {
			e.logger.Debug("command output", "command", cmd.String(), "stdout", res.Stdout)
		}
	}

	e.setPhase(PhaseDone)
	return nil
}

// checkClean fails when the local subtree has uncommitted or untracked files,
// unless force is set.
func (e *Engine) checkClean(ctx context.Context, localPath string, recursive, force bool) error {
	e.logger.Info("checking for uncommitted changes", "path", localPath)
	changes, err := e.git.Changes(ctx, localPath, recursive, false)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	paths := git.Paths(changes)
	if force {
		e.logger.Warn("ignoring uncommitted changes", "files", paths)
		return nil
	}
	e.logger.Error("there are modified or untracked files not checked in to local repo", "files", paths)
	return fmt.Errorf("%w: %s", ErrUncommittedChanges, strings.Join(paths, ", "))
}

// format picks the requested format, then the configured default, then SOURCE
func (e *Engine) format(requested string) (notebook.Format, error) {
	switch {
	case requested != "":
		return notebook.ParseFormat(requested)
	case e.cfg.Format != "":
		return notebook.ParseFormat(e.cfg.Format)
	default:
		return notebook.FormatSource, nil
	}
}

// implicitRecursive turns on recursion when any path uses the ** wildcard
func implicitRecursive(recursive bool, paths ...string) bool {
	if recursive {
		return true
	}
	for _, p := range paths {
		if pathmap.HasRecursiveMarker(p) {
			return true
		}
	}
	return false
}

// relativeTo returns p relative to the walk root dir. A notebook that is the
// root itself is named by its base name.
func relativeTo(dir, p string) string {
	prefix := strings.TrimSuffix(dir, pathmap.Separator) + pathmap.Separator
	if rel := strings.TrimPrefix(p, prefix); rel != p {
		return rel
	}
	return path.Base(p)
}

// stripExtension removes the extension from the last element of p.
// Dot files keep their name.
func stripExtension(p string) string {
	ext := path.Ext(p)
	if ext == "" || ext == path.Base(p) {
		return p
	}
	return strings.TrimSuffix(p, ext)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
