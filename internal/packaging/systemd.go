package packaging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/plexsphere/bridgeutil/internal/script"
)

// SystemdController abstracts systemd service management for testability.
// Methods that modify state are idempotent.
type SystemdController interface {
	IsAvailable(ctx context.Context) bool
	DaemonReload(ctx context.Context) error
	Enable(ctx context.Context, service string) error
	Disable(ctx context.Context, service string) error
	Stop(ctx context.Context, service string) error
}

// RootChecker abstracts privilege checking for testability.
type RootChecker interface {
	IsRoot() bool
}

// systemctl drives systemd through the systemctl binary.
type systemctl struct {
	runner script.Runner
}

// NewSystemdController returns a SystemdController that runs systemctl
// through runner.
func NewSystemdController(runner script.Runner) SystemdController {
	return &systemctl{runner: runner}
}

func (c *systemctl) IsAvailable(ctx context.Context) bool {
	_, err := c.runner.Run(ctx, "systemctl", "--version")
	return err == nil
}

func (c *systemctl) DaemonReload(ctx context.Context) error {
	return c.run(ctx, "daemon-reload")
}

func (c *systemctl) Enable(ctx context.Context, service string) error {
	return c.run(ctx, "enable", service)
}

func (c *systemctl) Disable(ctx context.Context, service string) error {
	return c.run(ctx, "disable", service)
}

func (c *systemctl) Stop(ctx context.Context, service string) error {
	return c.run(ctx, "stop", service)
}

func (c *systemctl) run(ctx context.Context, args ...string) error {
	res, err := c.runner.Run(ctx, "systemctl", args...)
	if err != nil {
		return fmt.Errorf("packaging: systemctl %s: %s: %w", args[0], strings.TrimSpace(res.Stderr), err)
	}
	return nil
}

type uidRootChecker struct{}

// NewRootChecker returns a RootChecker that checks the real process UID.
func NewRootChecker() RootChecker {
	return uidRootChecker{}
}

func (uidRootChecker) IsRoot() bool {
	return os.Getuid() == 0
}
