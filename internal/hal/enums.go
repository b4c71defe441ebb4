package hal

import (
	"fmt"
	"strings"
)

// ConfigInstance identifies the service profile a vendor hook applies to.
type ConfigInstance int

const (
	PrivateLAN         ConfigInstance = 1
	HomeSecurity       ConfigInstance = 2
	Hotspot2G          ConfigInstance = 3
	Hotspot5G          ConfigInstance = 4
	LostNFound         ConfigInstance = 6
	HotspotSecure2G    ConfigInstance = 7
	HotspotSecure5G    ConfigInstance = 8
	MocaIsolation      ConfigInstance = 9
	MeshBackhaul       ConfigInstance = 10
	EthBackhaul        ConfigInstance = 11
	Mesh               ConfigInstance = 12
	MeshWifiBackhaul2G ConfigInstance = 13
	MeshWifiBackhaul5G ConfigInstance = 14
	// ManageWifiBridge is only accepted in builds with the managewifi tag.
	ManageWifiBridge ConfigInstance = 17
)

var configInstanceNames = map[ConfigInstance]string{
	PrivateLAN:         "private_lan",
	HomeSecurity:       "home_security",
	Hotspot2G:          "hotspot_2g",
	Hotspot5G:          "hotspot_5g",
	LostNFound:         "lost_n_found",
	HotspotSecure2G:    "hotspot_secure_2g",
	HotspotSecure5G:    "hotspot_secure_5g",
	MocaIsolation:      "moca_isolation",
	MeshBackhaul:       "mesh_backhaul",
	EthBackhaul:        "eth_backhaul",
	Mesh:               "mesh",
	MeshWifiBackhaul2G: "mesh_wifi_backhaul_2g",
	MeshWifiBackhaul5G: "mesh_wifi_backhaul_5g",
	ManageWifiBridge:   "manage_wifi_bridge",
}

// Valid reports whether c is a profile known to this build.
func (c ConfigInstance) Valid() bool {
	if c == ManageWifiBridge {
		return manageWifiSupported
	}
	_, ok := configInstanceNames[c]
	return ok
}

func (c ConfigInstance) String() string {
	if name, ok := configInstanceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("config_instance(%d)", int(c))
}

// IsHotspot reports whether c is one of the public hotspot profiles.
func (c ConfigInstance) IsHotspot() bool {
	switch c {
	case Hotspot2G, Hotspot5G, HotspotSecure2G, HotspotSecure5G:
		return true
	}
	return false
}

// ConfigInstanceFromCode converts a numeric profile code, rejecting unknown values.
func ConfigInstanceFromCode(code int) (ConfigInstance, error) {
	c := ConfigInstance(code)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: config instance %d", ErrOutOfRange, code)
	}
	return c, nil
}

// ParseConfigInstance converts a profile name such as "private_lan".
func ParseConfigInstance(s string) (ConfigInstance, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for c, name := range configInstanceNames {
		if name == want && c.Valid() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: config instance %q", ErrOutOfRange, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c ConfigInstance) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: config instance %d", ErrOutOfRange, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ConfigInstance) UnmarshalText(b []byte) error {
	v, err := ParseConfigInstance(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// InterfaceType classifies a member interface.
type InterfaceType int

const (
	IfaceBridge   InterfaceType = 1
	IfaceVLAN     InterfaceType = 2
	IfaceGRE      InterfaceType = 3
	IfaceMoCA     InterfaceType = 4
	IfaceWiFi     InterfaceType = 5
	IfaceEthernet InterfaceType = 6
	// IfaceOther is used for unspecified interfaces and for sync deletes.
	IfaceOther InterfaceType = 7
)

var interfaceTypeNames = map[InterfaceType]string{
	IfaceBridge:   "bridge",
	IfaceVLAN:     "vlan",
	IfaceGRE:      "gre",
	IfaceMoCA:     "moca",
	IfaceWiFi:     "wifi",
	IfaceEthernet: "ethernet",
	IfaceOther:    "other",
}

func (t InterfaceType) Valid() bool {
	_, ok := interfaceTypeNames[t]
	return ok
}

func (t InterfaceType) String() string {
	if name, ok := interfaceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("interface_type(%d)", int(t))
}

// InterfaceTypeFromCode converts a numeric type code, rejecting unknown values.
func InterfaceTypeFromCode(code int) (InterfaceType, error) {
	t := InterfaceType(code)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: interface type %d", ErrOutOfRange, code)
	}
	return t, nil
}

// ParseInterfaceType converts a type name such as "moca".
func ParseInterfaceType(s string) (InterfaceType, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for t, name := range interfaceTypeNames {
		if name == want {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: interface type %q", ErrOutOfRange, s)
}

// BridgeOperation is the lifecycle operation requested of UpdateBridgeInfo.
type BridgeOperation int

const (
	DeleteBridge BridgeOperation = 0
	CreateBridge BridgeOperation = 1
)

func (o BridgeOperation) Valid() bool {
	return o == DeleteBridge || o == CreateBridge
}

func (o BridgeOperation) String() string {
	switch o {
	case DeleteBridge:
		return "delete"
	case CreateBridge:
		return "create"
	}
	return fmt.Sprintf("bridge_operation(%d)", int(o))
}

// BridgeOperationFromCode converts a numeric operation code, rejecting unknown values.
func BridgeOperationFromCode(code int) (BridgeOperation, error) {
	o := BridgeOperation(code)
	if !o.Valid() {
		return 0, fmt.Errorf("%w: bridge operation %d", ErrOutOfRange, code)
	}
	return o, nil
}

// DeviceMode is the gateway operating mode.
type DeviceMode int

const (
	ModeRouter DeviceMode = 0
	ModeBridge DeviceMode = 2
)

func (m DeviceMode) String() string {
	switch m {
	case ModeRouter:
		return "router"
	case ModeBridge:
		return "bridge"
	}
	return fmt.Sprintf("device_mode(%d)", int(m))
}

// ParseDeviceMode converts "router" or "bridge".
func ParseDeviceMode(s string) (DeviceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "router", "":
		return ModeRouter, nil
	case "bridge":
		return ModeBridge, nil
	}
	return 0, fmt.Errorf("%w: device mode %q", ErrOutOfRange, s)
}
