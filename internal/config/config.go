// Package config loads decode-time settings from a YAML file: the string
// size ceiling, whether to verify the trailing checksum, and an optional
// read-rate limit. Shaped after the reference pipeline's own config
// package (Load/ApplyDefaults/Validate, a path-carrying struct, a
// structured ValidationError), with the hand-rolled parser there replaced
// by gopkg.in/yaml.v3 since this config is plain YAML, not the
// JSON-via-YAML-subset the reference parsed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a decode pass can be configured with.
type Config struct {
	MaxStringMiB   int  `yaml:"maxStringMiB"`
	VerifyChecksum bool `yaml:"verifyChecksum"`
	RateMiBPerSec  int  `yaml:"rateMiBPerSec"`
	Pretty         bool `yaml:"pretty"`
	Simple         bool `yaml:"simple"`

	path string
}

// ValidationError collects configuration issues found during Validate.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	for _, err := range e.Errors {
		b.WriteString("\n - ")
		b.WriteString(err)
	}
	return b.String()
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", absPath, err)
	}

	cfg.path = absPath
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxStringMiB <= 0 {
		c.MaxStringMiB = 100
	}
}

// Validate ensures the config is internally consistent.
func (c *Config) Validate() error {
	var errs []string

	if c.MaxStringMiB <= 0 {
		errs = append(errs, "maxStringMiB must be > 0")
	}
	if c.RateMiBPerSec < 0 {
		errs = append(errs, "rateMiBPerSec must be >= 0")
	}

	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}

// MaxStringBytes returns the configured string size ceiling in bytes.
func (c *Config) MaxStringBytes() uint64 {
	return uint64(c.MaxStringMiB) * 1024 * 1024
}

// RateBytesPerSec returns the configured read-rate limit in bytes per
// second, or 0 if unthrottled.
func (c *Config) RateBytesPerSec() int {
	return c.RateMiBPerSec * 1024 * 1024
}

// Summary returns a concise one-line overview, useful for startup logging.
func (c *Config) Summary() string {
	return fmt.Sprintf("maxStringMiB=%d verifyChecksum=%t rateMiBPerSec=%d pretty=%t simple=%t",
		c.MaxStringMiB, c.VerifyChecksum, c.RateMiBPerSec, c.Pretty, c.Simple)
}
