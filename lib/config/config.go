// Package config loads clip's optional YAML configuration file.
//
// The config file is entirely optional: every field has a sensible
// default, and command-line flags always take precedence over
// whatever it sets. There is no environment-specific override
// machinery here — clip has one configuration, not a
// development/staging/production split.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable consulted for a config path when
// --config is not passed on the command line.
const EnvVar = "CLIP_CONFIG"

// Config mirrors the CLI flag surface: every field here has a
// corresponding flag, and a flag explicitly set on the command line
// always overrides the value loaded from a file.
type Config struct {
	OpenDelim         string   `yaml:"open_delim"`
	CloseDelim        string   `yaml:"close_delim"`
	ChunkEnd          string   `yaml:"chunk_end"`
	CommentMarkers    []string `yaml:"comment_markers"`
	PrivDir           string   `yaml:"priv_dir"`
	Gen               string   `yaml:"gen"`
	BackupEnabled     *bool    `yaml:"backup_enabled"`
	ModificationCheck *bool    `yaml:"modification_check"`
	BackupCompression string   `yaml:"backup_compression"`
	BackupEncryptTo   string   `yaml:"backup_encrypt_to"`
}

// Default returns clip's built-in defaults, matching spec.md §6's
// flag defaults exactly.
func Default() *Config {
	backupEnabled := true
	modificationCheck := true
	return &Config{
		OpenDelim:         "<<",
		CloseDelim:        ">>",
		ChunkEnd:          "@",
		CommentMarkers:    []string{"#", "//"},
		PrivDir:           "_azadi_work",
		Gen:               "gen",
		BackupEnabled:     &backupEnabled,
		ModificationCheck: &modificationCheck,
		BackupCompression: "none",
	}
}

// LoadFile reads path, merging its contents onto Default(). A field
// absent from the file keeps its default value; yaml.Unmarshal only
// overwrites fields the file actually sets.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve returns the configuration to use: the file at explicitPath
// if non-empty, else the file named by CLIP_CONFIG if set, else
// Default(). It never fails by falling back silently — a path that
// was actually specified but cannot be read or parsed is always a
// reported error.
func Resolve(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
