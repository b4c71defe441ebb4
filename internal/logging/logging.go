// Package logging builds the structured logger shared by every bridgeutil
// component: text records on stderr and, optionally, a rotating log file.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultFile is the platform bridge utility log.
	DefaultFile = "/rdklogs/logs/bridgeUtils.log"

	DefaultLevel      = "info"
	DefaultMaxSizeMB  = 1
	DefaultMaxBackups = 2

	// TimeFormat renders record timestamps in UTC.
	TimeFormat = "2006-01-02 15:04:05"
)

// Config holds the logging configuration.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string

	// File is the log file path. "-" disables file output.
	// Default: DefaultFile
	File string

	// MaxSizeMB is the size at which the log file is rotated.
	// Default: 1
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	// Default: 2
	MaxBackups int

	// NoStderr stops records from being mirrored to standard error, which
	// is where the service manager's journal picks them up.
	NoStderr bool
}

// stderr is where records are mirrored. Tests replace it.
var stderr io.Writer = os.Stderr

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.File == "" {
		c.File = DefaultFile
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = DefaultMaxSizeMB
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = DefaultMaxBackups
	}
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	if c.MaxSizeMB < 0 {
		return errors.New("logging: config: MaxSizeMB must not be negative")
	}
	if c.MaxBackups < 0 {
		return errors.New("logging: config: MaxBackups must not be negative")
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: config: invalid level %q", level)
}

// New builds a logger from cfg. The returned closer releases the log file
// and must be called on shutdown.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	lvl, _ := ParseLevel(cfg.Level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}
	if !cfg.NoStderr {
		writers = append(writers, stderr)
	}
	if cfg.File != "-" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		fw := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		writers = append(writers, fw)
		closer = fw
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	return NewWithWriter(io.MultiWriter(writers...), lvl), closer, nil
}

// NewWithWriter builds a text logger writing to w with UTC timestamps.
func NewWithWriter(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: ReplaceTime,
	}))
}

// ReplaceTime rewrites the record timestamp as UTC in TimeFormat.
func ReplaceTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(TimeFormat))
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

