package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// options holds the global flags shared by every command
type options struct {
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool
	debug     bool
	dryRun    bool
	profile   string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "databricks-sync",
		Short: "Synchronize Databricks workspace notebooks with a local git checkout",
		Long: `databricks-sync moves notebooks between a Databricks workspace and a local
git checkout. It plans the databricks and git commands needed for a transfer
and runs them in order, or prints them with --dry-run.

Paths may contain shell wildcards such as *.py. The git style directory
wildcard ** implies --recursive. Workspace paths that are not absolute are
placed under the configured default root.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/databricks-sync/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "increase output verbosity")
	pf.BoolVarP(&opts.debug, "debug", "d", false, "show debug output")
	pf.BoolVar(&opts.dryRun, "dry-run", false, "show the commands that would be executed without executing them")
	pf.StringVar(&opts.profile, "profile", "", "profile to use when connecting to the Databricks workspace")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "databricks-sync %s\n", version)
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		},
	}

	rootCmd.AddCommand(
		newLsCmd(opts, stdout, stderr),
		newDiffCmd(opts, stdout, stderr),
		newExportCmd(opts, stdout, stderr),
		newImportCmd(opts, stdout, stderr),
		newConfigureCmd(opts, stdin, stdout, stderr),
		versionCmd,
	)
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
