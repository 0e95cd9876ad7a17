package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schaermu/databricks-sync/internal/config"
	"github.com/schaermu/databricks-sync/internal/notebook"
	"github.com/schaermu/databricks-sync/internal/pathmap"
	"github.com/schaermu/databricks-sync/internal/sync"
)

const recursiveHelp = "scan folders recursively for matches (implied when any path contains **)"

func newLsCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var long, absolute, recursive bool

	cmd := &cobra.Command{
		Use:   "ls [flags] path",
		Short: "List contents of a Databricks workspace folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupSignalHandler()
			defer cancel()

			logger := setupLogger(opts, stderr)
			cfg := loadConfig(opts, logger)
			engine := newEngine(opts, cfg, logger, stdout)

			entries, err := engine.List(ctx, sync.ListRequest{
				Path:      args[0],
				Recursive: recursive,
				Absolute:  absolute,
			})
			if err != nil {
				logger.Error("listing failed", "error", err)
				return err
			}

			printHeader(stdout, "listing contents of remote workspace: "+pathmap.Resolve(args[0], cfg.Root))
			printEntries(stdout, entries, long)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "list objects in long form")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "list objects using absolute paths")
	cmd.Flags().BoolVarP(&recursive, "recursive", "R", false, recursiveHelp)
	return cmd
}

func newDiffCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var long, absolute, recursive bool

	cmd := &cobra.Command{
		Use:   "diff [flags] src_path wksp_path",
		Short: "Show differences between the local filesystem and a workspace folder",
		Long: `Diff lists the local files and the workspace notebooks addressed by the two
paths. It does not compare file contents when a file exists on both sides.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupSignalHandler()
			defer cancel()

			logger := setupLogger(opts, stderr)
			cfg := loadConfig(opts, logger)
			engine := newEngine(opts, cfg, logger, stdout)

			res, err := engine.Diff(ctx, sync.DiffRequest{
				LocalPath:     args[0],
				WorkspacePath: args[1],
				Recursive:     recursive,
				Absolute:      absolute,
			})
			if err != nil {
				logger.Error("diff failed", "error", err)
				return err
			}

			if n := len(res.Changes); n > 0 {
				printWarning(stdout, fmt.Sprintf("%d modified or untracked files not checked in to local repo", n))
			}
			printHeader(stdout, "local file system contents:")
			printPaths(stdout, res.Local)
			printHeader(stdout, "workspace contents:")
			printEntries(stdout, res.Remote, long)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "list objects in long form")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "list objects using absolute paths")
	cmd.Flags().BoolVarP(&recursive, "recursive", "R", false, recursiveHelp)
	return cmd
}

func newExportCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var req sync.ExportRequest

	cmd := &cobra.Command{
		Use:   "export [flags] wksp_path tgt_path",
		Short: "Export notebooks from the Databricks workspace into the local repository",
		Long: `Export downloads the notebooks under wksp_path into tgt_path, stages them
with git add and commits them. Non-notebook objects are ignored.

The export is refused when tgt_path has uncommitted or untracked files,
unless --force is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupSignalHandler()
			defer cancel()

			logger := setupLogger(opts, stderr)
			cfg := loadConfig(opts, logger)
			engine := newEngine(opts, cfg, logger, stdout)

			req.WorkspacePath = args[0]
			req.LocalPath = args[1]
			if err := engine.Export(ctx, req); err != nil {
				logger.Error("export failed", "error", err)
				return err
			}

			if !opts.dryRun {
				printSuccess(stdout, "export complete")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&req.Overwrite, "overwrite", "o", false, "overwrite local files if they exist")
	cmd.Flags().StringVar(&req.Format, "format", "", "export format: "+formatNames()+" (default from config, else SOURCE)")
	cmd.Flags().BoolVarP(&req.Recursive, "recursive", "R", false, recursiveHelp)
	cmd.Flags().BoolVar(&req.NoCommit, "no-commit", false, "don't commit changes to the local repository")
	cmd.Flags().StringVar(&req.PushTo, "push-to", "", "push the commit to a remote, in the form remote/branch")
	cmd.Flags().BoolVarP(&req.Force, "force", "f", false, "export even when the target has uncommitted changes")
	return cmd
}

func newImportCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var req sync.ImportRequest

	cmd := &cobra.Command{
		Use:   "import [flags] src_path wksp_path",
		Short: "Import notebooks into the Databricks workspace",
		Example: `  databricks-sync import -l PYTHON --format SOURCE '*.py' TestSync
  databricks-sync import -l SQL 'queries/**/*.sql' /Shared/queries`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupSignalHandler()
			defer cancel()

			logger := setupLogger(opts, stderr)
			cfg := loadConfig(opts, logger)
			engine := newEngine(opts, cfg, logger, stdout)

			req.LocalPath = args[0]
			req.WorkspacePath = args[1]
			if err := engine.Import(ctx, req); err != nil {
				logger.Error("import failed", "error", err)
				return err
			}

			if !opts.dryRun {
				printSuccess(stdout, "import complete")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&req.Overwrite, "overwrite", "o", false, "overwrite workspace notebooks if they exist")
	cmd.Flags().BoolVarP(&req.Force, "force", "f", false, "import even when the source has uncommitted changes")
	cmd.Flags().BoolVarP(&req.KeepExtensions, "keep-extensions", "k", false, "keep source extensions when importing")
	cmd.Flags().BoolVarP(&req.Recursive, "recursive", "R", false, recursiveHelp)
	cmd.Flags().StringVarP(&req.Language, "language", "l", "", "notebook language: "+languageNames()+" (default from config)")
	cmd.Flags().StringVar(&req.Format, "format", "", "import format: "+formatNames()+" (default from config, else SOURCE)")
	return cmd
}

func newConfigureCmd(opts *options, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var root, language, format string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure defaults for subsequent commands",
		Long: `Configure stores the default profile, root folder, language and format.
Values not given as flags are prompted for; an empty answer keeps the
current value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(opts, stderr)

			current, err := config.Load(config.Locate(opts.cfgFile))
			if err != nil {
				logger.Warn("could not read configuration file, using defaults", "error", err)
			}
			logger.Debug("existing defaults", "profile", current.Profile, "root", current.Root)

			in := bufio.NewReader(stdin)
			profile := opts.profile
			if profile == "" {
				profile = prompt(in, stdout, "Enter default profile", current.Profile)
			}
			if root == "" {
				root = prompt(in, stdout, "Enter default root directory", current.Root)
			}
			if language == "" {
				language = string(notebook.LanguagePython)
			}
			if format == "" {
				format = string(notebook.FormatSource)
			}

			path := opts.cfgFile
			if path == "" {
				path = config.DefaultPath()
			}

			cfg := &config.Config{Profile: profile, Root: root, Language: language, Format: format}
			if err := config.Save(path, cfg); err != nil {
				logger.Error("configure failed", "error", err)
				return err
			}
			logger.Info("new defaults written", "path", path, "profile", cfg.Profile, "root", cfg.Root)

			printSuccess(stdout, "configuration written to "+path)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "default workspace root folder")
	cmd.Flags().StringVar(&language, "language", "", "default notebook language (default PYTHON)")
	cmd.Flags().StringVar(&format, "format", "", "default notebook format (default SOURCE)")
	return cmd
}

// prompt asks for a value on in. An empty answer or a closed input returns def.
func prompt(in *bufio.Reader, out io.Writer, label, def string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, def)
	line, _ := in.ReadString('\n')
	if v := strings.TrimSpace(line); v != "" {
		return v
	}
	return def
}

func languageNames() string {
	names := make([]string, len(notebook.Languages))
	for i, l := range notebook.Languages {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

func formatNames() string {
	names := make([]string, len(notebook.Formats))
	for i, f := range notebook.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
