package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultOutputDir is where artifacts are written relative to the project root.
const DefaultOutputDir = ".dontreadme"

// Scanner names accepted by the scanner setting.
const (
	ScannerRegex      = "regex"
	ScannerTreeSitter = "treesitter"
)

// ProjectConfig holds project-level settings loaded from dontreadme.yml.
type ProjectConfig struct {
	OutputDir   string        `yaml:"outputDir,omitempty"`
	Include     []string      `yaml:"include,omitempty"`
	Exclude     []string      `yaml:"exclude,omitempty"`
	MaxFileSize int64         `yaml:"maxFileSize,omitempty"`
	Scanner     string        `yaml:"scanner,omitempty"`
	History     HistoryConfig `yaml:"history,omitempty"`
	Watch       WatchConfig   `yaml:"watch,omitempty"`
}

// HistoryConfig bounds how much version-control history is read.
type HistoryConfig struct {
	LogLimit     int      `yaml:"logLimit,omitempty"`
	NumstatLimit int      `yaml:"numstatLimit,omitempty"`
	Timeout      Duration `yaml:"timeout,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce,omitempty"`
}

// Duration is a time.Duration that unmarshals from strings like "30s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns a config with every field set to its default value.
func Defaults() *ProjectConfig {
	return &ProjectConfig{
		OutputDir: DefaultOutputDir,
		Include:   []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"},
		Exclude: []string{
			"node_modules/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.d.ts",
			"**/*.min.js",
			"**/*.bundle.js",
			DefaultOutputDir + "/**",
		},
		MaxFileSize: 100_000,
		Scanner:     ScannerRegex,
		History: HistoryConfig{
			LogLimit:     500,
			NumstatLimit: 1000,
			Timeout:      Duration(30 * time.Second),
		},
		Watch: WatchConfig{
			Debounce: Duration(2 * time.Second),
		},
	}
}

// Load attempts to read dontreadme.yml or dontreadme.yaml from the given
// directory and overlays it on Defaults. A missing file is not an error.
func Load(dir string) (*ProjectConfig, error) {
	cfg := Defaults()
	for _, name := range []string{"dontreadme.yml", "dontreadme.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var file ProjectConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		cfg.merge(&file)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot honor.
func (c *ProjectConfig) Validate() error {
	switch c.Scanner {
	case ScannerRegex, ScannerTreeSitter:
	default:
		return fmt.Errorf("unknown scanner %q (want %s or %s)", c.Scanner, ScannerRegex, ScannerTreeSitter)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be positive, got %d", c.MaxFileSize)
	}
	if c.History.LogLimit <= 0 || c.History.NumstatLimit <= 0 {
		return errors.New("history limits must be positive")
	}
	return nil
}

// merge copies every non-zero field of other into c.
func (c *ProjectConfig) merge(other *ProjectConfig) {
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if len(other.Include) > 0 {
		c.Include = other.Include
	}
	if len(other.Exclude) > 0 {
		c.Exclude = other.Exclude
	}
	if other.MaxFileSize != 0 {
		c.MaxFileSize = other.MaxFileSize
	}
	if other.Scanner != "" {
		c.Scanner = other.Scanner
	}
	if other.History.LogLimit != 0 {
		c.History.LogLimit = other.History.LogLimit
	}
	if other.History.NumstatLimit != 0 {
		c.History.NumstatLimit = other.History.NumstatLimit
	}
	if other.History.Timeout != 0 {
		c.History.Timeout = other.History.Timeout
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
