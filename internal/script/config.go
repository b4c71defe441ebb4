// Package script runs OEM helper scripts and commands on behalf of the bridge
// HAL, bounding their runtime and captured output.
package script

import (
	"errors"
	"time"
)

// DefaultTimeout is the default maximum duration of a single script run.
const DefaultTimeout = 30 * time.Second

// DefaultMaxOutputBytes is the default cap on captured output per stream (64 KiB).
const DefaultMaxOutputBytes = 64 << 10

// Config holds the configuration for script execution.
// Config is passed as a constructor argument — no file I/O in this package.
type Config struct {
	// Timeout is the maximum duration of a single run.
	// Default: 30s. Minimum: 1s.
	Timeout time.Duration

	// MaxOutputBytes caps captured stdout and stderr, each.
	// Default: 64 KiB. Minimum: 1024.
	MaxOutputBytes int64
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxOutputBytes == 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	if c.Timeout < time.Second {
		return errors.New("script: config: Timeout must be at least 1s")
	}
	if c.MaxOutputBytes < 1024 {
		return errors.New("script: config: MaxOutputBytes must be at least 1024")
	}
	return nil
}
