package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration shape for colourscan. The same
// keys are accepted in YAML and TOML files.
type FileConfig struct {
	EscapePairs          *int    `yaml:"escape_pairs,omitempty" toml:"escape_pairs,omitempty"`
	Format               *string `yaml:"format,omitempty" toml:"format,omitempty"`
	Include              *string `yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude              *string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	MaxBytes             *int64  `yaml:"max_bytes,omitempty" toml:"max_bytes,omitempty"`
	MaxDecompressedBytes *int64  `yaml:"max_decompressed_bytes,omitempty" toml:"max_decompressed_bytes,omitempty"`
	Raw                  *bool   `yaml:"raw,omitempty" toml:"raw,omitempty"`
	Threads              *int    `yaml:"threads,omitempty" toml:"threads,omitempty"`
	NoColor              *bool   `yaml:"no_color,omitempty" toml:"no_color,omitempty"`
	NoCache              *bool   `yaml:"no_cache,omitempty" toml:"no_cache,omitempty"`
	CacheDir             *string `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty"`
	Baseline             *string `yaml:"baseline,omitempty" toml:"baseline,omitempty"`
	FailOn               *string `yaml:"fail_on,omitempty" toml:"fail_on,omitempty"`
	MetricsTextfile      *string `yaml:"metrics_textfile,omitempty" toml:"metrics_textfile,omitempty"`
	Audit                *bool   `yaml:"audit,omitempty" toml:"audit,omitempty"`

	Log *LogConfig `yaml:"log,omitempty" toml:"log,omitempty"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  *string `yaml:"level,omitempty" toml:"level,omitempty"`
	Format *string `yaml:"format,omitempty" toml:"format,omitempty"`
}

// Formats lists the report formats understood by the CLI.
var Formats = []string{"debug", "text", "table", "json", "sarif"}

// ErrNotFound is returned by LoadLocal and LoadGlobal when no config file
// exists. Any other error means a file was found but could not be used.
var ErrNotFound = errors.New("no config file")

var localNames = []string{
	".colourscan.yml", ".colourscan.yaml", ".colourscan.toml",
	"colourscan.yml", "colourscan.yaml", "colourscan.toml",
}

// LoadFile reads a config file from the provided path. Files ending in
// .toml are decoded as TOML, everything else as YAML.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a config file in dir.
// It supports .colourscan.{yml,yaml,toml} and colourscan.{yml,yaml,toml}.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range localNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// Dir returns the per-user colourscan directory under $XDG_CONFIG_HOME or
// ~/.config. It is "" when neither is known. The global config, viewer
// preferences and the update check all live there.
func Dir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "colourscan")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "colourscan")
}

// LoadGlobal loads config.yml, config.yaml or config.toml from Dir.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	dir := Dir()
	if dir == "" {
		return cfg, ErrNotFound
	}
	for _, name := range []string{"config.yml", "config.yaml", "config.toml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNotFound
}

// Validate rejects values that no command can act on.
func (fc FileConfig) Validate() error {
	if fc.EscapePairs != nil && *fc.EscapePairs < 0 {
		return fmt.Errorf("escape_pairs must not be negative, got %d", *fc.EscapePairs)
	}
	if fc.Threads != nil && *fc.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", *fc.Threads)
	}
	if fc.Format != nil && !ValidFormat(*fc.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", *fc.Format, strings.Join(Formats, ", "))
	}
	if fc.FailOn != nil && !ValidFailOn(*fc.FailOn) {
		return fmt.Errorf("unknown fail_on %q (want never or any)", *fc.FailOn)
	}
	return nil
}

// ValidFormat reports whether f names a known report format.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// ValidFailOn reports whether s is a known fail policy.
func ValidFailOn(s string) bool {
	return s == "never" || s == "any"
}

// GetLogLevel returns the configured log level or empty string.
func (fc FileConfig) GetLogLevel() string {
	if fc.Log == nil || fc.Log.Level == nil {
		return ""
	}
	return *fc.Log.Level
}

// GetLogFormat returns the configured log format or empty string.
func (fc FileConfig) GetLogFormat() string {
	if fc.Log == nil || fc.Log.Format == nil {
		return ""
	}
	return *fc.Log.Format
}
