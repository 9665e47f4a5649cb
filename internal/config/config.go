// Package config provides configuration management for the snapshot generator.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used in configuration and file names.
const DateLayout = "2006-01-02"

// Configuration validation errors.
var (
	ErrInvalidStartDate   = errors.New("snapshot.start_date must be a YYYY-MM-DD date")
	ErrInvalidEndDate     = errors.New("snapshot.end_date must be a YYYY-MM-DD date")
	ErrEndBeforeStart     = errors.New("snapshot.end_date cannot be before snapshot.start_date")
	ErrMissingInputFile   = errors.New("snapshot.input_file is required")
	ErrMissingFilePrefix  = errors.New("snapshot.file_prefix is required")
	ErrInvalidMaxArticles = errors.New("snapshot.max_articles must be at least 1")
	ErrInvalidDefaultTime = errors.New("snapshot.default_time must be a non-empty time of day without 'T'")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the main application configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source is the file the configuration was read from, empty when only
	// defaults and environment variables were used.
	Source string `yaml:"-"`
}

// SnapshotConfig controls where the base dataset is read from and which
// snapshots are produced.
type SnapshotConfig struct {
	InputFile    string   `yaml:"input_file" env:"SNAPSHOT_INPUT_FILE"`
	FallbackDirs []string `yaml:"fallback_dirs" env:"SNAPSHOT_FALLBACK_DIRS" envSeparator:","`
	FilePrefix   string   `yaml:"file_prefix" env:"SNAPSHOT_FILE_PREFIX"`
	StartDate    string   `yaml:"start_date" env:"SNAPSHOT_START_DATE"`
	EndDate      string   `yaml:"end_date" env:"SNAPSHOT_END_DATE"`
	MaxArticles  int      `yaml:"max_articles" env:"SNAPSHOT_MAX_ARTICLES"`
	DefaultTime  string   `yaml:"default_time" env:"SNAPSHOT_DEFAULT_TIME"`
	DedupeByLink bool     `yaml:"dedupe_by_link" env:"SNAPSHOT_DEDUPE_BY_LINK"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when no file or environment
// variables override it.
func Default() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			InputFile:    "live-sources-all.json",
			FallbackDirs: []string{filepath.Join("public", "data")},
			FilePrefix:   "live-sources-",
			StartDate:    "2025-11-14",
			EndDate:      "2026-03-31",
			MaxArticles:  120,
			DefaultTime:  "05:00:00.000Z",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path is provided by user as configuration file path
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
			cfg.Source = path
		case errors.Is(err, fs.ErrNotExist):
			// no file: defaults and environment only
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	s := c.Snapshot

	if s.InputFile == "" {
		return ErrMissingInputFile
	}
	if s.FilePrefix == "" {
		return ErrMissingFilePrefix
	}

	start, err := ParseDate(s.StartDate)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStartDate, s.StartDate)
	}
	end, err := ParseDate(s.EndDate)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEndDate, s.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, s.EndDate, s.StartDate)
	}

	if s.MaxArticles < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidMaxArticles, s.MaxArticles)
	}
	if s.DefaultTime == "" || strings.Contains(s.DefaultTime, "T") {
		return fmt.Errorf("%w: %q", ErrInvalidDefaultTime, s.DefaultTime)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// Start returns the first date of the snapshot range. Only valid after Validate.
func (s SnapshotConfig) Start() time.Time {
	t, _ := ParseDate(s.StartDate)
	return t
}

// End returns the last date of the snapshot range, inclusive. Only valid after Validate.
func (s SnapshotConfig) End() time.Time {
	t, _ := ParseDate(s.EndDate)
	return t
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 -- configuration contains no secrets
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
