// Package config reads the optional YAML settings file of gitk-graph.
// Command line flags override every value loaded here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitk-graph/internal/git"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

const (
	DefaultSearchField   = "summary"
	DefaultLogLevel      = "info"
	DefaultWatchDebounce = 300 * time.Millisecond
	// DefaultMaxColumns caps the lanes printed per row.
	DefaultMaxColumns = 40
)

type Config struct {
	// Capacity presizes the revisions cache.
	Capacity        int           `yaml:"capacity"`
	GraphMaxColumns int           `yaml:"graph_max_columns"`
	SearchField     string        `yaml:"search_field"`
	LogLevel        string        `yaml:"log_level"`
	Watch           bool          `yaml:"watch"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
	// MinGitVersion is the oldest git accepted as producer of a capture.
	MinGitVersion string `yaml:"min_git_version"`

	path string
}

func Default() *Config {
	return &Config{
		Capacity:        git.DefaultCapacity,
		GraphMaxColumns: DefaultMaxColumns,
		SearchField:     DefaultSearchField,
		LogLevel:        DefaultLogLevel,
		WatchDebounce:   DefaultWatchDebounce,
	}
}

// DefaultPath returns the per-user config location, or "" when the
// platform has no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gitk-graph", "config.yaml")
}

// Path is the file the config was loaded from, empty for defaults.
func (c *Config) Path() string { return c.path }

// Load reads path over the defaults. Keys absent from the file keep their
// default value; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(typeErr.Errors, "; "))
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity must be >= 0", ErrInvalidConfig)
	}
	if c.GraphMaxColumns < 0 {
		return fmt.Errorf("%w: graph_max_columns must be >= 0", ErrInvalidConfig)
	}
	if _, ok := git.FieldFromString(c.SearchField); !ok {
		return fmt.Errorf("%w: unknown search_field %q", ErrInvalidConfig, c.SearchField)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("%w: watch_debounce must be >= 0", ErrInvalidConfig)
	}
	if c.MinGitVersion != "" {
		if _, err := semver.NewVersion(c.MinGitVersion); err != nil {
			return fmt.Errorf("%w: min_git_version %q: %w", ErrInvalidConfig, c.MinGitVersion, err)
		}
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// Field is the parsed SearchField; it falls back to the summary.
func (c *Config) Field() git.Field {
	if f, ok := git.FieldFromString(c.SearchField); ok {
		return f
	}
	return git.FieldShortLog
}
