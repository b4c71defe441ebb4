// Package netdev implements the bridge HAL contract on Linux with netlink for
// link management, nftables for port isolation and the platform GRE handler
// script for tunnel provisioning.
package netdev

import (
	"fmt"

	"github.com/plexsphere/bridgeutil/internal/hal"
)

// Config holds the vendor-specific settings of the Linux HAL.
// Config is passed as a constructor argument — no file I/O in this package.
type Config struct {
	// VendorIfaces are the vendor-specific interfaces offered for bridge
	// composition. Only those present on the system are reported.
	VendorIfaces []string

	// SwitchRefreshCommand is run by the post-configuration hook when the
	// caller requests a switch gateway refresh. Empty disables it.
	SwitchRefreshCommand []string

	// WifiRefreshCommand is run by the post-configuration hook when the
	// caller requests a WiFi gateway refresh. Empty disables it.
	WifiRefreshCommand []string
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	if _, err := hal.NewIfaceList(c.VendorIfaces...); err != nil {
		return fmt.Errorf("netdev: config: VendorIfaces: %w", err)
	}
	return nil
}
