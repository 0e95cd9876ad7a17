package workspace

import (
	"context"
	"fmt"

	"github.com/schaermu/databricks-sync/internal/command"
	"github.com/schaermu/databricks-sync/internal/notebook"
)

// DefaultBinary is the workspace CLI executable
const DefaultBinary = "databricks"

// Client builds and runs `databricks workspace` invocations for one profile
type Client struct {
	runner  command.Runner
	binary  string
	profile string
}

// NewClient creates a workspace client. An empty profile leaves profile
// selection to the workspace CLI.
func NewClient(runner command.Runner, profile string) *Client {
	return &Client{
		runner:  runner,
		binary:  DefaultBinary,
		profile: profile,
	}
}

// Profile returns the connection profile in use
func (c *Client) Profile() string {
	return c.profile
}

func (c *Client) workspace(op string, args ...string) command.Command {
	cmd := command.New(c.binary, "workspace", op)
	if c.profile != "" {
		cmd = append(cmd, "--profile", c.profile)
	}
	return append(cmd, args...)
}

// ListCommand returns the extended, absolute listing command for dir
func (c *Client) ListCommand(dir string) command.Command {
	return c.workspace("ls", "-l", "--absolute", dir)
}

// List runs the listing for dir and returns its output lines.
// It implements Lister.
func (c *Client) List(ctx context.Context, dir string) ([]string, error) {
	result, err := c.runner.Run(ctx, c.ListCommand(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return result.Lines(), nil
}

// ExportCommand returns the command exporting the notebook at src to the local file dst
func (c *Client) ExportCommand(src, dst string, format notebook.Format, overwrite bool) command.Command {
	var args []string
	if overwrite {
		args = append(args, "--overwrite")
	}
	args = append(args, "--format", string(format), src, dst)
	return c.workspace("export", args...)
}

// ImportCommand returns the command importing the local file src as the notebook dst
func (c *Client) ImportCommand(src, dst string, lang notebook.Language, format notebook.Format, overwrite bool) command.Command {
	args := []string{"--format", string(format), "--language", string(lang)}
	if overwrite {
		args = append(args, "--overwrite")
	}
	args = append(args, src, dst)
	return c.workspace("import", args...)
}

// MkdirsCommand returns the command creating dir and any missing parents
func (c *Client) MkdirsCommand(dir string) command.Command {
	return c.workspace("mkdirs", dir)
}
