package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schaermu/databricks-sync/internal/command"
	"github.com/schaermu/databricks-sync/internal/config"
	"github.com/schaermu/databricks-sync/internal/git"
	"github.com/schaermu/databricks-sync/internal/local"
	"github.com/schaermu/databricks-sync/internal/sync"
)

// setupLogger builds the logger for one invocation. --debug and --verbose
// take precedence over --log-level.
func setupLogger(opts *options, w io.Writer) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch opts.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	switch {
	case opts.debug:
		level = slog.LevelDebug
	case opts.verbose && level > slog.LevelInfo:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.logFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// loadConfig reads the defaults file. A file that cannot be read is reported
// and replaced by empty defaults. --profile overrides the configured profile.
func loadConfig(opts *options, logger *slog.Logger) *config.Config {
	configPath := config.Locate(opts.cfgFile)
	logger.Info("loading configuration", "path", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Warn("could not read configuration file, using defaults", "path", configPath, "error", err)
	}

	if opts.profile != "" {
		cfg.Profile = opts.profile
	}

	logger.Debug("configuration loaded",
		"profile", cfg.Profile,
		"root", cfg.Root,
		"language", cfg.Language,
		"format", cfg.Format)

	return cfg
}

// newEngine wires the sync engine to the real workspace CLI, git and filesystem
func newEngine(opts *options, cfg *config.Config, logger *slog.Logger, stdout io.Writer) *sync.Engine {
	runner := command.NewShellRunner("", logger)
	engine := sync.NewEngine(cfg, runner, git.NewShellClient(runner), local.NewOSLister(), logger, opts.dryRun)
	engine.SetOutput(stdout)
	if wd, err := os.Getwd(); err == nil {
		engine.SetWorkDir(wd)
	}
	return engine
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
