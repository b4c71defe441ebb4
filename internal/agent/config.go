// Package agent holds the top-level bridgeutil configuration and converts it
// into the values the HAL and the reconciler consume.
package agent

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/plexsphere/bridgeutil/internal/gre"
	"github.com/plexsphere/bridgeutil/internal/hal"
	"github.com/plexsphere/bridgeutil/internal/logging"
	"github.com/plexsphere/bridgeutil/internal/netdev"
	"github.com/plexsphere/bridgeutil/internal/reconcile"
	"github.com/plexsphere/bridgeutil/internal/script"
)

// DefaultConfigPath is where the CLI looks for its configuration file.
const DefaultConfigPath = "/etc/bridgeutil/config.yaml"

// AgentConfig is the top-level configuration for bridgeutil.
// It aggregates all subsystem configurations and is populated from
// a YAML configuration file via ParseConfig.
type AgentConfig struct {
	Device    DeviceConfig     `yaml:"device"`
	Log       logging.Config   `yaml:"log"`
	NetDev    netdev.Config    `yaml:"netdev"`
	GRE       gre.Config       `yaml:"gre"`
	Script    script.Config    `yaml:"script"`
	Reconcile reconcile.Config `yaml:"reconcile"`
	Bridges   []BridgeConfig   `yaml:"bridges"`
}

// DeviceConfig describes the gateway-wide settings that seed hal.Env.
type DeviceConfig struct {
	// Mode is "router" or "bridge".
	// Default: "router"
	Mode string `yaml:"mode"`

	MocaIsolation bool   `yaml:"moca_isolation"`
	Port2Enabled  bool   `yaml:"port2_enabled"`
	EthWanEnabled bool   `yaml:"eth_wan_enabled"`
	EthWanIface   string `yaml:"eth_wan_iface"`

	// PrimaryBridge is the primary LAN bridge name until a bridge-mode
	// post-configuration hook replaces it.
	PrimaryBridge string `yaml:"primary_bridge"`
}

// BridgeConfig is the YAML form of one reconcile.BridgeSpec.
type BridgeConfig struct {
	Instance   hal.ConfigInstance `yaml:"instance"`
	Bridge     string             `yaml:"bridge"`
	Vlan       string             `yaml:"vlan"`
	VlanParent string             `yaml:"vlan_parent"`
	VlanID     int                `yaml:"vlan_id"`
	MTU        int                `yaml:"mtu"`
	// Address is "a.b.c.d/len", or a bare address combined with Netmask.
	Address    string             `yaml:"address"`
	Netmask    string             `yaml:"netmask"`
	Eth        []string           `yaml:"eth"`
	Moca       []string           `yaml:"moca"`
	Gre        []string           `yaml:"gre"`
	Wifi       []string           `yaml:"wifi"`
}

// Details converts b into hal.BridgeDetails.
func (b BridgeConfig) Details() (*hal.BridgeDetails, error) {
	d := &hal.BridgeDetails{
		BridgeName:             b.Bridge,
		VlanName:               b.Vlan,
		VirtualParentInterface: b.VlanParent,
		VlanID:                 b.VlanID,
		MTU:                    b.MTU,
	}
	addr, err := parseAddress(b.Address, b.Netmask)
	if err != nil {
		return nil, fmt.Errorf("agent: config: bridge %q: %w", b.Bridge, err)
	}
	d.Address = addr
	lists := []struct {
		name string
		src  []string
		dst  *hal.IfaceList
	}{
		{"eth", b.Eth, &d.EthIfaces},
		{"moca", b.Moca, &d.MocaIfaces},
		{"gre", b.Gre, &d.GreIfaces},
		{"wifi", b.Wifi, &d.WifiIfaces},
	}
	for _, l := range lists {
		list, err := hal.NewIfaceList(l.src...)
		if err != nil {
			return nil, fmt.Errorf("agent: config: bridge %q: %s: %w", b.Bridge, l.name, err)
		}
		*l.dst = list
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("agent: config: bridge %q: %w", b.Bridge, err)
	}
	return d, nil
}

// parseAddress accepts "10.0.0.1/24" or "10.0.0.1" with netmask
// "255.255.255.0". Both empty means no address.
func parseAddress(addr, netmask string) (netip.Prefix, error) {
	if addr == "" {
		if netmask != "" {
			return netip.Prefix{}, fmt.Errorf("netmask %q without address", netmask)
		}
		return netip.Prefix{}, nil
	}
	if strings.Contains(addr, "/") {
		if netmask != "" {
			return netip.Prefix{}, fmt.Errorf("address %q already carries a prefix length", addr)
		}
		p, err := netip.ParsePrefix(addr)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("address: %w", err)
		}
		return p, nil
	}
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("address: %w", err)
	}
	if netmask == "" {
		return netip.Prefix{}, fmt.Errorf("address %q needs a prefix length or netmask", addr)
	}
	m, err := netip.ParseAddr(netmask)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("netmask: %w", err)
	}
	if m.BitLen() != a.BitLen() {
		return netip.Prefix{}, fmt.Errorf("netmask %q does not match address family of %q", netmask, addr)
	}
	ones, bits := net.IPMask(m.AsSlice()).Size()
	if bits == 0 {
		return netip.Prefix{}, fmt.Errorf("netmask %q is not contiguous", netmask)
	}
	return netip.PrefixFrom(a, ones), nil
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *AgentConfig) ApplyDefaults() {
	if c.Device.Mode == "" {
		c.Device.Mode = hal.ModeRouter.String()
	}
	c.Log.ApplyDefaults()
	c.NetDev.ApplyDefaults()
	c.GRE.ApplyDefaults()
	c.Script.ApplyDefaults()
	c.Reconcile.ApplyDefaults()
}

// Validate checks that required fields are set and values are acceptable.
func (c *AgentConfig) Validate() error {
	if _, err := hal.ParseDeviceMode(c.Device.Mode); err != nil {
		return fmt.Errorf("agent: config: device: %w", err)
	}
	if c.Device.EthWanEnabled && c.Device.EthWanIface == "" {
		return errors.New("agent: config: device: eth_wan_iface is required when eth_wan_enabled is set")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.NetDev.Validate(); err != nil {
		return err
	}
	if err := c.GRE.Validate(); err != nil {
		return err
	}
	if err := c.Script.Validate(); err != nil {
		return err
	}
	if err := c.Reconcile.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Bridges))
	for i, b := range c.Bridges {
		if !b.Instance.Valid() {
			return fmt.Errorf("agent: config: bridges[%d]: instance is required", i)
		}
		if seen[b.Bridge] {
			return fmt.Errorf("agent: config: bridges[%d]: duplicate bridge %q", i, b.Bridge)
		}
		seen[b.Bridge] = true
		if _, err := b.Details(); err != nil {
			return err
		}
	}
	return nil
}

// Env builds the hal.Env described by the device section.
// It assumes the configuration has been validated.
func (c *AgentConfig) Env() *hal.Env {
	env := hal.NewEnv()
	if mode, err := hal.ParseDeviceMode(c.Device.Mode); err == nil {
		env.DeviceMode = mode
	}
	env.MocaIsolation = c.Device.MocaIsolation
	env.Port2Enabled = c.Device.Port2Enabled
	env.EthWanEnabled = c.Device.EthWanEnabled
	env.EthWanIface = c.Device.EthWanIface
	env.PrimaryBridgeName = c.Device.PrimaryBridge
	return env
}

// Specs converts the bridges section into reconcile.BridgeSpecs.
func (c *AgentConfig) Specs() ([]reconcile.BridgeSpec, error) {
	specs := make([]reconcile.BridgeSpec, 0, len(c.Bridges))
	for _, b := range c.Bridges {
		d, err := b.Details()
		if err != nil {
			return nil, err
		}
		specs = append(specs, reconcile.BridgeSpec{Instance: b.Instance, Details: d})
	}
	return specs, nil
}

// Spec returns the spec of the bridge named name.
func (c *AgentConfig) Spec(name string) (reconcile.BridgeSpec, error) {
	for _, b := range c.Bridges {
		if b.Bridge != name {
			continue
		}
		d, err := b.Details()
		if err != nil {
			return reconcile.BridgeSpec{}, err
		}
		return reconcile.BridgeSpec{Instance: b.Instance, Details: d}, nil
	}
	return reconcile.BridgeSpec{}, fmt.Errorf("agent: config: no bridge %q configured", name)
}

// ParseConfig reads a YAML configuration file and returns an AgentConfig.
// It applies defaults and validates the configuration.
func ParseConfig(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent: config: read %s: %w", path, err)
	}
	var cfg AgentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("agent: config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
