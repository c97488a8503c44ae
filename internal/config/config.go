package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vrorigins/internal/origins"
)

// Config is the decoded configuration file.
type Config struct {
	// Manifest is the action manifest registered at bring-up.
	Manifest string `yaml:"manifest"`

	// RuntimeFixture describes the simulated runtime to connect to.
	RuntimeFixture string `yaml:"runtime_fixture"`

	// Database is the history store path. Empty disables history.
	Database string `yaml:"database,omitempty"`

	// ActiveSets names the sets to activate, in order. Empty activates
	// every manifest set in declaration order.
	ActiveSets []string `yaml:"active_sets,omitempty"`

	// MetadataPolicy is one of omit_origin, fail_call or positional.
	MetadataPolicy string `yaml:"metadata_policy,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`

	// AppKey identifies the application to the binding UI.
	AppKey string `yaml:"app_key,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Manifest:       "actions.json",
		RuntimeFixture: "rig.yaml",
		MetadataPolicy: string(origins.DefaultPolicy),
		LogLevel:       "info",
	}
}

// Load reads and validates a configuration file. Fields the file omits keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Manifest, &c.RuntimeFixture, &c.Database} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if c.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if c.RuntimeFixture == "" {
		return fmt.Errorf("runtime_fixture is required")
	}
	if _, err := origins.ParsePolicy(c.MetadataPolicy); err != nil {
		return fmt.Errorf("metadata_policy: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	seen := make(map[string]bool, len(c.ActiveSets))
	for i, name := range c.ActiveSets {
		if name == "" {
			return fmt.Errorf("active_sets[%d]: empty name", i)
		}
		if seen[name] {
			return fmt.Errorf("active_sets[%d]: duplicate set %q", i, name)
		}
		seen[name] = true
	}
	return nil
}

// Policy returns the parsed metadata policy. Call Validate first.
func (c *Config) Policy() origins.MetadataPolicy {
	p, err := origins.ParsePolicy(c.MetadataPolicy)
	if err != nil {
		return origins.DefaultPolicy
	}
	return p
}

// ParseLevel converts a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
