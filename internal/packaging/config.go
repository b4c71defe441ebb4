// Package packaging installs bridgeutil as a systemd service on gateways that
// boot with systemd.
package packaging

import (
	"errors"
)

// InstallConfig holds the configuration for installing bridgeutil as a systemd service.
// InstallConfig is passed as a constructor argument — no file I/O in this package.
type InstallConfig struct {
	// BinaryPath is where the bridgeutil binary is installed.
	// Default: /usr/bin/bridgeutil
	BinaryPath string

	// ConfigDir holds config.yaml.
	// Default: /etc/bridgeutil
	ConfigDir string

	// RunDir holds the sync status file.
	// Default: /run/bridgeutil
	RunDir string

	// UnitFilePath is the path of the systemd unit file.
	// Default: /etc/systemd/system/bridgeutil.service
	UnitFilePath string

	// ServiceName is the systemd service name.
	// Default: bridgeutil
	ServiceName string

	// Enable enables the service at boot after installing it.
	Enable bool
}

const (
	DefaultBinaryPath   = "/usr/bin/bridgeutil"
	DefaultConfigDir    = "/etc/bridgeutil"
	DefaultRunDir       = "/run/bridgeutil"
	DefaultServiceName  = "bridgeutil"
	DefaultUnitFilePath = "/etc/systemd/system/bridgeutil.service"
)

// ApplyDefaults sets default values for zero-valued fields.
func (c *InstallConfig) ApplyDefaults() {
	if c.BinaryPath == "" {
		c.BinaryPath = DefaultBinaryPath
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	if c.RunDir == "" {
		c.RunDir = DefaultRunDir
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.UnitFilePath == "" {
		c.UnitFilePath = DefaultUnitFilePath
	}
}

// Validate checks that required fields are set.
func (c *InstallConfig) Validate() error {
	if c.BinaryPath == "" {
		return errors.New("packaging: config: BinaryPath is required")
	}
	if c.ConfigDir == "" {
		return errors.New("packaging: config: ConfigDir is required")
	}
	if c.RunDir == "" {
		return errors.New("packaging: config: RunDir is required")
	}
	if c.ServiceName == "" {
		return errors.New("packaging: config: ServiceName is required")
	}
	if c.UnitFilePath == "" {
		return errors.New("packaging: config: UnitFilePath is required")
	}
	return nil
}
