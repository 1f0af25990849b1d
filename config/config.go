// Package config provides configuration loading and management for the
// member directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/memberdir/visibility"
)

// Config represents the complete member directory configuration
type Config struct {
	Visibility VisibilityConfig `yaml:"visibility"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Backup     BackupConfig     `yaml:"backup"`
	Storage    StorageConfig    `yaml:"storage"`
	NATS       NATSConfig       `yaml:"nats"`
	Watch      WatchConfig      `yaml:"watch"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// VisibilityConfig configures the PMP resolver
type VisibilityConfig struct {
	// GlobalDefault is the directory-wide visibility baseline. Must be an
	// explicit value; it is the terminal level of the waterfall.
	GlobalDefault visibility.PMP `yaml:"global_default"`
	// Fallback decides how a malformed global value resolves
	// (permissive or fail_closed)
	Fallback visibility.FallbackPolicy `yaml:"fallback"`
}

// DocumentsConfig configures the section document source
type DocumentsConfig struct {
	// Dir is the directory section documents are discovered under
	Dir string `yaml:"dir"`
	// Patterns are doublestar globs relative to Dir
	Patterns []string `yaml:"patterns"`
}

// BackupConfig configures backup-before-write behavior
type BackupConfig struct {
	// Dir is where dated backups are written
	Dir string `yaml:"dir"`
	// SoftLimit is the per-section backup count above which a warning is
	// logged (not enforced)
	SoftLimit int `yaml:"soft_limit"`
}

// StorageConfig selects the snapshot store backend
type StorageConfig struct {
	// Backend is "file" or "nats"
	Backend string `yaml:"backend"`
	// Path is the snapshot file path (file backend only)
	Path string `yaml:"path"`
}

// NATSConfig configures the NATS connection (nats backend only)
type NATSConfig struct {
	// URLs are the NATS server URLs
	URLs []string `yaml:"urls"`
}

// WatchConfig configures document directory watching in the admin binary
type WatchConfig struct {
	// Enabled controls whether file watching is active
	Enabled bool `yaml:"enabled"`
	// DebounceDelay is how long to wait for more changes before emitting
	DebounceDelay time.Duration `yaml:"debounce_delay"`
	// FileExtensions lists extensions to watch
	FileExtensions []string `yaml:"file_extensions"`
}

// MetricsConfig configures the metrics endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Visibility: VisibilityConfig{
			GlobalDefault: visibility.Public,
			Fallback:      visibility.FallbackPermissive,
		},
		Documents: DocumentsConfig{
			Dir:      "sections",
			Patterns: []string{"*.json"},
		},
		Backup: BackupConfig{
			Dir:       "backups",
			SoftLimit: 3,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(".memberdir", "snapshot.json"),
		},
		NATS: NATSConfig{
			URLs: nil,
		},
		Watch: WatchConfig{
			Enabled:        false,
			DebounceDelay:  500 * time.Millisecond,
			FileExtensions: []string{".json"},
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Visibility.GlobalDefault.MustExplicit(); err != nil {
		return fmt.Errorf("visibility.global_default: %w", err)
	}
	switch c.Visibility.Fallback {
	case visibility.FallbackPermissive, visibility.FallbackClosed:
	default:
		return fmt.Errorf("visibility.fallback must be %q or %q", visibility.FallbackPermissive, visibility.FallbackClosed)
	}
	if c.Documents.Dir == "" {
		return fmt.Errorf("documents.dir is required")
	}
	if len(c.Documents.Patterns) == 0 {
		return fmt.Errorf("documents.patterns is required")
	}
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file backend")
		}
	case "nats":
		if len(c.NATS.URLs) == 0 {
			return fmt.Errorf("nats.urls is required for the nats backend")
		}
	default:
		return fmt.Errorf("storage.backend must be \"file\" or \"nats\"")
	}
	if c.Backup.SoftLimit < 0 {
		return fmt.Errorf("backup.soft_limit must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Visibility
	if other.Visibility.GlobalDefault != "" {
		c.Visibility.GlobalDefault = other.Visibility.GlobalDefault
	}
	if other.Visibility.Fallback != "" {
		c.Visibility.Fallback = other.Visibility.Fallback
	}

	// Documents
	if other.Documents.Dir != "" {
		c.Documents.Dir = other.Documents.Dir
	}
	if len(other.Documents.Patterns) > 0 {
		c.Documents.Patterns = other.Documents.Patterns
	}

	// Backup
	if other.Backup.Dir != "" {
		c.Backup.Dir = other.Backup.Dir
	}
	if other.Backup.SoftLimit != 0 {
		c.Backup.SoftLimit = other.Backup.SoftLimit
	}

	// Storage
	if other.Storage.Backend != "" {
		c.Storage.Backend = other.Storage.Backend
	}
	if other.Storage.Path != "" {
		c.Storage.Path = other.Storage.Path
	}

	// NATS
	if len(other.NATS.URLs) > 0 {
		c.NATS.URLs = other.NATS.URLs
		c.Storage.Backend = "nats"
	}

	// Watch
	if other.Watch.Enabled {
		c.Watch.Enabled = true
	}
	if other.Watch.DebounceDelay != 0 {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if len(other.Watch.FileExtensions) > 0 {
		c.Watch.FileExtensions = other.Watch.FileExtensions
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
