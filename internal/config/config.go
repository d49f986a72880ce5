// Package config provides configuration loading and structs for the Shirabe server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/shirabe/internal/normalize"
)

// Config holds all configuration for the application.
type Config struct {
	Debug          bool            `yaml:"debug"`
	Server         ServerConfig    `yaml:"server"`
	Storage        StorageConfig   `yaml:"storage"`
	Normalize      NormalizeConfig `yaml:"normalize"`
	Match          MatchConfig     `yaml:"match"`
	MetadataFields []string        `yaml:"metadata_fields"`
	Ingest         IngestConfig    `yaml:"ingest"`
	Watch          WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the report database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// NormalizeConfig holds the ordered replacement table applied to
// report text and queries before matching.
type NormalizeConfig struct {
	Rules []normalize.Rule `yaml:"rules"`
}

// MatchConfig holds matching defaults.
type MatchConfig struct {
	DefaultMeasure   string `yaml:"default_measure"`
	DefaultThreshold *int   `yaml:"default_threshold"`
	ScanWorkers      int    `yaml:"scan_workers"`
}

// ThresholdOrDefault returns the configured fuzzy threshold; defaults to 2 when unset.
// A pointer keeps an explicit zero (exact matches only) distinct from absent.
func (m *MatchConfig) ThresholdOrDefault() int {
	if m.DefaultThreshold != nil {
		return *m.DefaultThreshold
	}
	return 2
}

// IngestConfig holds file ingestion settings.
type IngestConfig struct {
	Extensions []string `yaml:"extensions"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Directories []string `yaml:"directories"`
	DebounceMS  int      `yaml:"debounce_ms"`
}

// Debounce returns the watch debounce window as a duration.
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Load reads and parses the config file at path, applies defaults, and
// expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	expandPaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	expandPaths(cfg, ".")
	return cfg
}

// Save writes the config to path. Used for persisting settings edited at runtime.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandPaths(cfg *Config, configDir string) {
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "~/" are
// relative to the home directory, "./" paths are relative to configDir,
// and any other relative path is relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
