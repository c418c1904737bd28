// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"taskmaster/internal/task"
)

// Default values.
const (
	DefaultDBPath       = "tasks.db"
	DefaultLogFile      = "taskmaster.log"
	DefaultLogLevel     = "info"
	DefaultExportFormat = "csv"
)

// Config holds the full configuration for taskmaster.
type Config struct {
	// Paths
	DBPath  string `toml:"db_path"`
	LogFile string `toml:"log_file"`

	// Logging
	LogLevel string `toml:"log_level"`

	// Behavior
	DefaultPriority int    `toml:"default_priority"`
	SeedSamples     bool   `toml:"seed_samples"`
	ExportFormat    string `toml:"export_format"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskmaster/taskmaster.toml or OS config dir)
// 3. Project config file (taskmaster.toml or .taskmaster.toml in cwd)
// 4. Environment variables
// 5. CLI flags registered on fs
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.DBPath = DefaultDBPath
	cfg.LogFile = DefaultLogFile
	cfg.LogLevel = DefaultLogLevel
	cfg.DefaultPriority = task.DefaultPriority
	cfg.SeedSamples = true
	cfg.ExportFormat = DefaultExportFormat
}

func findUserConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".taskmaster", "taskmaster.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "taskmaster", "taskmaster.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{"taskmaster.toml", ".taskmaster.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

// loadFromEnv overrides config from TASKMASTER_* environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKMASTER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKMASTER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TASKMASTER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKMASTER_DEFAULT_PRIORITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultPriority = n
		}
	}
	if v := os.Getenv("TASKMASTER_SEED_SAMPLES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SeedSamples = b
		}
	}
	if v := os.Getenv("TASKMASTER_EXPORT_FORMAT"); v != "" {
		cfg.ExportFormat = v
	}
}

// parseFlags registers global flags on fs and parses args. Flags override
// every other source.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	dbPath := fs.String("db", cfg.DBPath, "Path to the task database file")
	logFile := fs.String("log-file", cfg.LogFile, "Path to the log file")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.DBPath = *dbPath
	cfg.LogFile = *logFile
	cfg.LogLevel = *logLevel
	return nil
}

func finalizeConfig(cfg *Config) error {
	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.LogFile = expandPath(cfg.LogFile)
	if cfg.DefaultPriority < task.MinPriority || cfg.DefaultPriority > task.MaxPriority {
		return fmt.Errorf("default_priority must be between %d and %d, got %d",
			task.MinPriority, task.MaxPriority, cfg.DefaultPriority)
	}
	switch cfg.ExportFormat {
	case "csv", "json", "pdf":
	default:
		return fmt.Errorf("export_format must be csv, json, or pdf, got %q", cfg.ExportFormat)
	}
	return nil
}

// expandPath expands a leading ~ and environment variables in paths.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return home
	}
	if strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, expanded[2:])
	}
	return expanded
}
