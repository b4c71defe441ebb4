package hal

import (
	"fmt"
	"net/netip"
)

const (
	// MinVlanID and MaxVlanID bound a usable 802.1Q tag.
	MinVlanID = 1
	MaxVlanID = 4094

	// MinMTU is the smallest IPv4 MTU; MaxMTU the largest the kernel stores.
	MinMTU = 68
	MaxMTU = 65535
)

// BridgeDetails describes one bridge's desired configuration. It is built by
// the caller per request and never retained by an implementation beyond the
// call.
type BridgeDetails struct {
	BridgeName string
	// VlanName is the VLAN interface enslaved to the bridge. Empty if unused.
	VlanName string
	// VirtualParentInterface is the link the VLAN interface is stacked on.
	VirtualParentInterface string
	// VlanID is the 802.1Q tag of VlanName. Zero means unset.
	VlanID int

	// MTU of the bridge link. Zero leaves the kernel's choice in place.
	MTU int
	// Address is assigned to the bridge link when valid.
	Address netip.Prefix

	EthIfaces  IfaceList
	MocaIfaces IfaceList
	GreIfaces  IfaceList
	WifiIfaces IfaceList
}

// Validate checks names, the VLAN tag and list capacities. It returns the
// first violation found, wrapped around one of the package sentinel errors.
func (d *BridgeDetails) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil bridge details", ErrInvalidArgument)
	}
	if err := ValidateIfaceName(d.BridgeName); err != nil {
		return fmt.Errorf("bridge name: %w", err)
	}
	if d.VlanName != "" {
		if err := ValidateIfaceName(d.VlanName); err != nil {
			return fmt.Errorf("vlan name: %w", err)
		}
	}
	if d.VirtualParentInterface != "" {
		if err := ValidateIfaceName(d.VirtualParentInterface); err != nil {
			return fmt.Errorf("virtual parent interface: %w", err)
		}
	}
	if d.VlanID != 0 && (d.VlanID < MinVlanID || d.VlanID > MaxVlanID) {
		return fmt.Errorf("%w: vlan id %d not in %d..%d", ErrOutOfRange, d.VlanID, MinVlanID, MaxVlanID)
	}
	if d.MTU != 0 && (d.MTU < MinMTU || d.MTU > MaxMTU) {
		return fmt.Errorf("%w: mtu %d not in %d..%d", ErrOutOfRange, d.MTU, MinMTU, MaxMTU)
	}
	if d.Address.IsValid() && d.Address.Addr().IsUnspecified() {
		return fmt.Errorf("%w: unspecified bridge address %s", ErrInvalidArgument, d.Address)
	}
	if d.VlanName != "" && d.VlanID != 0 && d.VirtualParentInterface == "" {
		return fmt.Errorf("%w: vlan %q has no virtual parent interface", ErrInvalidArgument, d.VlanName)
	}
	for _, t := range memberTypes {
		if err := d.Members(t).Validate(MaxIfaceListLen); err != nil {
			return fmt.Errorf("%s members: %w", t, err)
		}
	}
	return nil
}

// memberTypes lists the member kinds in the order they are attached.
var memberTypes = []InterfaceType{IfaceEthernet, IfaceMoCA, IfaceGRE, IfaceWiFi}

// MemberTypes returns the interface types that carry a member list.
func MemberTypes() []InterfaceType {
	out := make([]InterfaceType, len(memberTypes))
	copy(out, memberTypes)
	return out
}

// Members returns the member list for t. Types without a list return an
// empty list.
func (d *BridgeDetails) Members(t InterfaceType) IfaceList {
	switch t {
	case IfaceEthernet:
		return d.EthIfaces
	case IfaceMoCA:
		return d.MocaIfaces
	case IfaceGRE:
		return d.GreIfaces
	case IfaceWiFi:
		return d.WifiIfaces
	}
	return IfaceList{}
}

// MemberType returns the list iface belongs to, or IfaceOther.
func (d *BridgeDetails) MemberType(iface string) InterfaceType {
	for _, t := range memberTypes {
		if d.Members(t).Contains(iface) {
			return t
		}
	}
	if d.VlanName != "" && iface == d.VlanName {
		return IfaceVLAN
	}
	return IfaceOther
}

// AllMembers returns every member across the four lists, in attach order.
func (d *BridgeDetails) AllMembers() []string {
	var out []string
	for _, t := range memberTypes {
		out = append(out, d.Members(t).names...)
	}
	return out
}

// Clone returns a deep copy of d.
func (d *BridgeDetails) Clone() *BridgeDetails {
	c := *d
	c.EthIfaces = IfaceList{names: d.EthIfaces.Names()}
	c.MocaIfaces = IfaceList{names: d.MocaIfaces.Names()}
	c.GreIfaces = IfaceList{names: d.GreIfaces.Names()}
	c.WifiIfaces = IfaceList{names: d.WifiIfaces.Names()}
	return &c
}
