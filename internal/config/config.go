// Package config provides unified configuration loading for simselect.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/simselect/internal/constants"
	"github.com/nvandessel/simselect/internal/pathutil"
	"github.com/nvandessel/simselect/internal/toggle"
	"gopkg.in/yaml.v3"
)

// Config contains all simselect configuration settings.
type Config struct {
	// Documents controls which files make up the working set.
	Documents DocumentsConfig `json:"documents" yaml:"documents"`

	// Backup controls where generations are written and how many are kept.
	Backup BackupConfig `json:"backup" yaml:"backup"`

	// Attribute holds the literal lines that are toggled.
	Attribute toggle.Attribute `json:"attribute" yaml:"attribute"`

	// Logging contains settings for operational logging and the run journal.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DocumentsConfig configures document discovery.
type DocumentsConfig struct {
	// Extension is the filename suffix of eligible documents, including the dot.
	Extension string `json:"extension" yaml:"extension"`
}

// BackupConfig configures backup generations.
type BackupConfig struct {
	// Dir is the backup root, relative to the working directory.
	// Supports ${VAR} syntax for env vars.
	Dir string `json:"dir" yaml:"dir"`

	// Prefix is prepended to the generation number to form directory names.
	Prefix string `json:"prefix" yaml:"prefix"`

	// MaxGenerations is the retention cap.
	MaxGenerations int `json:"max_generations" yaml:"max_generations"`
}

// LoggingConfig configures simselect's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the run journal in ~/.simselect/journal.jsonl.
	// "trace" additionally logs every rewritten document.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Documents: DocumentsConfig{
			Extension: constants.DefaultDocumentExtension,
		},
		Backup: BackupConfig{
			Dir:            constants.DefaultBackupDir,
			Prefix:         constants.DefaultGenerationPrefix,
			MaxGenerations: constants.MaxGenerations,
		},
		Attribute: toggle.DefaultAttribute(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.simselect/config.yaml -> <workDir>/.simselect.yaml -> environment variables
func Load(workDir string) (*Config, error) {
	config := Default()

	if userDir := UserDir(); userDir != "" {
		if err := mergeFile(config, filepath.Join(userDir, constants.UserConfigFile)); err != nil {
			return nil, err
		}
	}

	if workDir != "" {
		if err := mergeFile(config, filepath.Join(workDir, constants.ProjectConfigFile)); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// UserDir returns the per-user directory (~/.simselect) holding the user config
// and the run journal, or "" when the home directory cannot be determined.
func UserDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, constants.UserConfigDir)
}

// mergeFile overlays the YAML file at path onto config. A missing file is not an error.
func mergeFile(config *Config, path string) error {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", pathutil.RedactPath(path), err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file %s: %w", pathutil.RedactPath(path), err)
	}
	config.Backup.Dir = expandEnvVars(config.Backup.Dir)
	return nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Backup.Dir = expandEnvVars(config.Backup.Dir)

	return config, nil
}

// BackupRoot returns the absolute backup root for workDir.
func (c *Config) BackupRoot(workDir string) string {
	if filepath.IsAbs(c.Backup.Dir) {
		return filepath.Clean(c.Backup.Dir)
	}
	return filepath.Join(workDir, c.Backup.Dir)
}

// Validate checks that the configuration is valid for the given working directory.
func (c *Config) Validate(workDir string) error {
	if !strings.HasPrefix(c.Documents.Extension, ".") || len(c.Documents.Extension) < 2 {
		return fmt.Errorf("invalid document extension: %q (must start with '.')", c.Documents.Extension)
	}

	if c.Backup.MaxGenerations < 1 {
		return fmt.Errorf("max_generations must be at least 1, got %d", c.Backup.MaxGenerations)
	}

	if c.Backup.Prefix == "" {
		return fmt.Errorf("backup prefix must not be empty")
	}
	if err := pathutil.ValidateName(c.Backup.Prefix); err != nil {
		return fmt.Errorf("invalid backup prefix: %w", err)
	}

	if c.Backup.Dir == "" {
		return fmt.Errorf("backup dir must not be empty")
	}
	if err := pathutil.ValidateWithin(c.BackupRoot(workDir), workDir); err != nil {
		return fmt.Errorf("invalid backup dir: %w", err)
	}

	if err := c.Attribute.Validate(); err != nil {
		return fmt.Errorf("invalid attribute: %w", err)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SIMSELECT_EXTENSION"); v != "" {
		config.Documents.Extension = v
	}

	if v := os.Getenv("SIMSELECT_BACKUP_DIR"); v != "" {
		config.Backup.Dir = v
	}

	if v := os.Getenv("SIMSELECT_MAX_GENERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Backup.MaxGenerations = n
		}
	}

	if v := os.Getenv("SIMSELECT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
