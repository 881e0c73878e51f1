// Package config reads the spdb command configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

var ErrInvalid = errors.New("invalid config")

// Config is the configuration file structure. Every field is optional.
type Config struct {
	// Associations maps backend names to extra regular expressions
	// claiming request strings for them.
	Associations map[string][]string `yaml:"associations"`

	// Color is one of auto, always and never.
	Color string `yaml:"color"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`

	// Root is the directory file backends resolve relative paths in.
	// Empty means the host filesystem as is.
	Root string `yaml:"root"`
}

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// LoadConfig loads a configuration file in YAML format. Fields missing
// from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Color:    ColorAuto,
		LogLevel: "warn",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color %q", ErrInvalid, c.Color)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for name, pats := range c.Associations {
		for _, p := range pats {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("%w: association %s: %w", ErrInvalid, name, err)
			}
		}
	}
	if c.Root != "" {
		fi, err := os.Stat(c.Root)
		if err != nil {
			return fmt.Errorf("%w: root: %w", ErrInvalid, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: root %s is not a directory", ErrInvalid, c.Root)
		}
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: logLevel %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}
