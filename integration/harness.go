//go:build integration

package integration

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/schaermu/databricks-sync/internal/testutil"
)

const (
	binaryName     = "databricks-sync"
	shimName       = "databricks"
	defaultTimeout = 2 * time.Minute
)

// Harness runs the databricks-sync binary against a local git repository and
// a databricks CLI shim backed by a fixture directory.
type Harness struct {
	t       *testing.T
	binary  string
	binDir  string
	repo    string
	fixture string
	shimLog string
	home    string
}

// NewHarness builds the binary and prepares a fresh repository, fixture
// workspace and shim.
func NewHarness(ctx context.Context, t *testing.T) *Harness {
	t.Helper()

	base := t.TempDir()
	h := &Harness{
		t:       t,
		binDir:  filepath.Join(base, "bin"),
		repo:    filepath.Join(base, "repo"),
		fixture: filepath.Join(base, "workspace"),
		shimLog: filepath.Join(base, "databricks.log"),
		home:    filepath.Join(base, "home"),
	}
	for _, dir := range []string{h.binDir, h.repo, h.fixture, h.home} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}

	if err := h.build(ctx); err != nil {
		t.Fatalf("build binary: %v", err)
	}
	if err := h.installShim(); err != nil {
		t.Fatalf("install shim: %v", err)
	}

	testutil.InitRepo(t, h.repo, map[string]string{"README.md": "notebooks\n"})

	return h
}

// build compiles the CLI into the harness bin directory
func (h *Harness) build(ctx context.Context) error {
	projectRoot, err := testutil.FindProjectRoot()
	if err != nil {
		return fmt.Errorf("get project root: %w", err)
	}

	h.binary = filepath.Join(h.binDir, binaryName)
	h.t.Logf("Building %s", h.binary)

	cmd := exec.CommandContext(ctx, "go", "build", "-o", h.binary, "./cmd/databricks-sync")
	cmd.Dir = projectRoot
	cmd.Stdout = &testWriter{t: h.t, prefix: "[build] "}
	cmd.Stderr = &testWriter{t: h.t, prefix: "[build] "}
	return cmd.Run()
}

// installShim copies the databricks CLI shim next to the binary
func (h *Harness) installShim() error {
	src, err := testutil.TestdataPath("integration", shimName)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(h.binDir, shimName), data, 0755)
}

func (h *Harness) env() []string {
	return append(os.Environ(),
		"PATH="+h.binDir+string(os.PathListSeparator)+os.Getenv("PATH"),
		"HOME="+h.home,
		"XDG_CONFIG_HOME="+filepath.Join(h.home, ".config"),
		"GIT_CONFIG_GLOBAL="+filepath.Join(h.home, ".gitconfig"),
		"DATABRICKS_FIXTURE="+h.fixture,
		"SHIM_LOG="+h.shimLog,
	)
}

// Run executes databricks-sync in the repository
func (h *Harness) Run(ctx context.Context, args ...string) (string, string, int, error) {
	h.t.Helper()
	return h.execIn(ctx, h.binary, args...)
}

// MustRun executes databricks-sync and fails the test on a non-zero exit
func (h *Harness) MustRun(ctx context.Context, args ...string) (string, string) {
	h.t.Helper()
	stdout, stderr, exitCode, err := h.Run(ctx, args...)
	if err != nil {
		h.t.Fatalf("exec failed: %v", err)
	}
	if exitCode != 0 {
		h.t.Fatalf("command failed with exit code %d\nstdout: %s\nstderr: %s\nargs: %v",
			exitCode, stdout, stderr, args)
	}
	return stdout, stderr
}

// MustGit runs git in the repository and returns its trimmed output
func (h *Harness) MustGit(ctx context.Context, args ...string) string {
	h.t.Helper()
	stdout, stderr, exitCode, err := h.execIn(ctx, "git", args...)
	if err != nil {
		h.t.Fatalf("git failed: %v", err)
	}
	if exitCode != 0 {
		h.t.Fatalf("git %v failed with exit code %d: %s", args, exitCode, stderr)
	}
	return strings.TrimSpace(stdout)
}

func (h *Harness) execIn(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = h.repo
	cmd.Env = h.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", "", 0, fmt.Errorf("exec failed: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return stdout.String(), stderr.String(), exitCode, nil
}

// AddNotebook creates a notebook in the fixture workspace
func (h *Harness) AddNotebook(path, language, content string) {
	h.t.Helper()
	testutil.WriteFile(h.t, filepath.Join(h.fixture, filepath.FromSlash(path)+"."+language), content)
}

// WorkspaceHasNotebook reports whether the fixture workspace holds path
func (h *Harness) WorkspaceHasNotebook(path, language string) bool {
	_, err := os.Stat(filepath.Join(h.fixture, filepath.FromSlash(path)+"."+language))
	return err == nil
}

// WriteFile writes a file relative to the repository root
func (h *Harness) WriteFile(rel, content string) {
	h.t.Helper()
	testutil.WriteFile(h.t, filepath.Join(h.repo, filepath.FromSlash(rel)), content)
}

// ReadFile reads a file relative to the repository root
func (h *Harness) ReadFile(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(h.repo, filepath.FromSlash(rel)))
	return string(data), err
}

// FileExists checks if a file exists relative to the repository root
func (h *Harness) FileExists(rel string) bool {
	info, err := os.Stat(filepath.Join(h.repo, filepath.FromSlash(rel)))
	return err == nil && !info.IsDir()
}

// ReadShimLog reads and parses the databricks shim log
func (h *Harness) ReadShimLog() ([]ShimLogEntry, error) {
	h.t.Helper()
	f, err := os.Open(h.shimLog)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var entries []ShimLogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		// Parse: "2024-01-01T12:00:00Z workspace ls -l --absolute /Shared"
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		entries = append(entries, ShimLogEntry{
			Timestamp: parts[0],
			Args:      strings.Fields(parts[1]),
		})
	}

	return entries, scanner.Err()
}

// ClearShimLog clears the databricks shim log
func (h *Harness) ClearShimLog() error {
	h.t.Helper()
	err := os.Remove(h.shimLog)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ShimLogEntry represents a parsed databricks shim log entry
type ShimLogEntry struct {
	Timestamp string
	Args      []string
}

// String returns a human-readable representation
func (e ShimLogEntry) String() string {
	return fmt.Sprintf("%s: databricks %s", e.Timestamp, strings.Join(e.Args, " "))
}

// HasArgs checks if the entry starts with the given arguments
func (e ShimLogEntry) HasArgs(args ...string) bool {
	if len(e.Args) < len(args) {
		return false
	}
	for i, arg := range args {
		if e.Args[i] != arg {
			return false
		}
	}
	return true
}

// ContainsArg checks if the entry contains a specific argument anywhere
func (e ShimLogEntry) ContainsArg(arg string) bool {
	for _, a := range e.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// testWriter wraps test logging for command output
type testWriter struct {
	t      *testing.T
	prefix string
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if line != "" {
			w.t.Log(w.prefix + line)
		}
	}
	return len(p), nil
}

var _ io.Writer = (*testWriter)(nil)
