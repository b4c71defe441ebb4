// Package gre provisions GRE tunnel interfaces for bridge membership by
// delegating to the platform's GRE handler script.
package gre

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plexsphere/bridgeutil/internal/script"
)

// DefaultScriptPath is the platform GRE handler script.
const DefaultScriptPath = "/etc/utopia/service.d/service_multinet/handle_gre.sh"

// ErrScriptMissing is returned when the handler script is not installed.
var ErrScriptMissing = errors.New("gre: handler script missing")

// Config holds the configuration for the GRE handler.
// Config is passed as a constructor argument — no file I/O in this package.
type Config struct {
	// ScriptPath is the handler script invoked as
	// "<script> create|remove <iface> <bridge>".
	// Default: DefaultScriptPath
	ScriptPath string
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.ScriptPath == "" {
		c.ScriptPath = DefaultScriptPath
	}
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	if c.ScriptPath == "" {
		return errors.New("gre: config: ScriptPath is required")
	}
	return nil
}

// Handler provisions and removes GRE interfaces for a bridge.
type Handler interface {
	Create(ctx context.Context, iface, bridge string) error
	Remove(ctx context.Context, iface, bridge string) error
}

// ScriptHandler implements Handler by running the GRE handler script.
type ScriptHandler struct {
	cfg    Config
	runner script.Runner
	logger *slog.Logger
}

// NewScriptHandler creates a ScriptHandler. Config defaults are applied automatically.
func NewScriptHandler(cfg Config, runner script.Runner, logger *slog.Logger) *ScriptHandler {
	cfg.ApplyDefaults()
	return &ScriptHandler{
		cfg:    cfg,
		runner: runner,
		logger: logger.With("component", "gre"),
	}
}

// Create brings up iface as a GRE tunnel attached to bridge.
func (h *ScriptHandler) Create(ctx context.Context, iface, bridge string) error {
	return h.run(ctx, "create", iface, bridge)
}

// Remove tears down the GRE tunnel iface on bridge.
func (h *ScriptHandler) Remove(ctx context.Context, iface, bridge string) error {
	return h.run(ctx, "remove", iface, bridge)
}

func (h *ScriptHandler) run(ctx context.Context, action, iface, bridge string) error {
	res, err := h.runner.Run(ctx, h.cfg.ScriptPath, action, iface, bridge)
	if err != nil {
		if errors.Is(err, script.ErrNotFound) {
			return fmt.Errorf("gre: %s %q: %w: %s", action, iface, ErrScriptMissing, h.cfg.ScriptPath)
		}
		h.logger.Error("GRE handler failed",
			"action", action,
			"interface", iface,
			"bridge", bridge,
			"exit_code", res.ExitCode,
			"stderr", res.Stderr,
		)
		return fmt.Errorf("gre: %s %q: %w", action, iface, err)
	}

	h.logger.Info("GRE handler completed",
		"action", action,
		"interface", iface,
		"bridge", bridge,
	)
	return nil
}
