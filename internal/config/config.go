package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/schaermu/databricks-sync/internal/notebook"
)

const (
	appName    = "databricks-sync"
	configFile = "config.yaml"
)

// Config holds the defaults used by every sync command
type Config struct {
	Profile  string `yaml:"default_profile"`
	Root     string `yaml:"default_root"`
	Language string `yaml:"default_language"`
	Format   string `yaml:"default_format"`
}

// DefaultPath returns the configuration file location under the XDG config home
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFile)
}

// LegacyPath returns the location used by older releases. The file is JSON,
// which the YAML parser reads as is.
func LegacyPath() string {
	return filepath.Join(xdg.Home, ".databricks_sync", "config.txt")
}

// Locate picks the file to load: explicit when set, otherwise the default
// path, falling back to the legacy path when only that one exists.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	def := DefaultPath()
	if fileExists(def) {
		return def
	}
	if legacy := LegacyPath(); fileExists(legacy) {
		return legacy
	}
	return def
}

// Load reads and parses the configuration file. A missing file yields empty
// defaults. Any other failure also yields empty defaults together with the
// error so callers can warn and carry on.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return &Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return &Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed
func Save(path string, cfg *Config) error {
	path = os.ExpandEnv(path)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv() {
	c.Profile = os.ExpandEnv(c.Profile)
	c.Root = os.ExpandEnv(c.Root)
}

// Validate checks the language and format defaults and normalizes their case.
// Empty values are allowed.
func (c *Config) Validate() error {
	if c.Language != "" {
		lang, err := notebook.ParseLanguage(c.Language)
		if err != nil {
			return fmt.Errorf("default_language: %w", err)
		}
		c.Language = string(lang)
	}
	if c.Format != "" {
		format, err := notebook.ParseFormat(c.Format)
		if err != nil {
			return fmt.Errorf("default_format: %w", err)
		}
		c.Format = string(format)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
