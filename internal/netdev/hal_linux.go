//go:build linux

package netdev

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/plexsphere/bridgeutil/internal/gre"
	"github.com/plexsphere/bridgeutil/internal/hal"
	"github.com/plexsphere/bridgeutil/internal/isolation"
)

// NetlinkHAL implements hal.HAL for Linux bridges.
// Operations against the same bridge are serialised; different bridges may
// be updated concurrently.
type NetlinkHAL struct {
	cfg    Config
	nl     Netlinker
	gre    gre.Handler
	iso    isolation.Controller
	hooks  *VendorHooks
	locks  *bridgeLocks
	logger *slog.Logger
}

var _ hal.HAL = (*NetlinkHAL)(nil)

// NewNetlinkHAL creates a NetlinkHAL. Config defaults are applied automatically.
func NewNetlinkHAL(cfg Config, nl Netlinker, greHandler gre.Handler, iso isolation.Controller, hooks *VendorHooks, logger *slog.Logger) *NetlinkHAL {
	cfg.ApplyDefaults()
	return &NetlinkHAL{
		cfg:    cfg,
		nl:     nl,
		gre:    greHandler,
		iso:    iso,
		hooks:  hooks,
		locks:  newBridgeLocks(),
		logger: logger.With("component", "netdev"),
	}
}

// UpdateBridgeInfo creates, updates or deletes the bridge described by d.
// With ifaceToUpdate set, only that interface is attached or detached.
func (h *NetlinkHAL) UpdateBridgeInfo(ctx context.Context, env *hal.Env, d *hal.BridgeDetails, ifaceToUpdate string, op hal.BridgeOperation, typ hal.InterfaceType) error {
	if err := hal.ValidateRequest(d, ifaceToUpdate, op, typ); err != nil {
		return fmt.Errorf("netdev: update bridge: %w", err)
	}
	env = envOrDefault(env)

	unlock := h.locks.lock(d.BridgeName)
	defer unlock()

	h.logger.Debug("update bridge",
		"bridge", d.BridgeName,
		"operation", op.String(),
		"interface", ifaceToUpdate,
		"type", typ.String(),
	)

	var err error
	switch {
	case op == hal.CreateBridge && (ifaceToUpdate == "" || ifaceToUpdate == d.BridgeName):
		err = h.createBridge(ctx, env, d)
	case op == hal.CreateBridge:
		err = h.syncAdd(ctx, env, d, ifaceToUpdate, typ)
	case ifaceToUpdate == "" || ifaceToUpdate == d.BridgeName:
		err = h.deleteBridge(ctx, d)
	default:
		err = h.syncDelete(ctx, d, ifaceToUpdate, typ)
	}
	if err != nil {
		return fmt.Errorf("netdev: %s bridge %q: %w", op, d.BridgeName, err)
	}
	return nil
}

// CheckIfExists reports whether iface exists.
func (h *NetlinkHAL) CheckIfExists(_ context.Context, iface string) (bool, error) {
	if err := hal.ValidateIfaceName(iface); err != nil {
		return false, fmt.Errorf("netdev: check exists: %w", err)
	}
	_, ok, err := h.lookup(iface)
	if err != nil {
		return false, fmt.Errorf("netdev: check exists %q: %w", iface, err)
	}
	return ok, nil
}

// CheckIfExistsInBridge reports whether iface is enslaved to bridge.
func (h *NetlinkHAL) CheckIfExistsInBridge(_ context.Context, iface, bridge string) (bool, error) {
	for _, name := range []string{iface, bridge} {
		if err := hal.ValidateIfaceName(name); err != nil {
			return false, fmt.Errorf("netdev: check membership: %w", err)
		}
	}
	br, ok, err := h.lookup(bridge)
	if err != nil || !ok {
		return false, wrapErr("netdev: check membership: bridge", bridge, err)
	}
	link, ok, err := h.lookup(iface)
	if err != nil || !ok {
		return false, wrapErr("netdev: check membership: interface", iface, err)
	}
	return isEnslavedTo(link, br), nil
}

// HandlePreConfigVendor runs the vendor preparation for inst.
func (h *NetlinkHAL) HandlePreConfigVendor(ctx context.Context, env *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	return h.hooks.PreConfig(ctx, env, d, inst)
}

// HandlePostConfigVendor runs the vendor follow-up for inst.
func (h *NetlinkHAL) HandlePostConfigVendor(ctx context.Context, env *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	return h.hooks.PostConfig(ctx, env, d, inst)
}

// GetVendorIfaces returns the configured vendor interfaces present on the
// system. The Ethernet WAN port is never offered while Ethernet WAN is on.
func (h *NetlinkHAL) GetVendorIfaces(_ context.Context, env *hal.Env) (hal.IfaceList, error) {
	env = envOrDefault(env)

	var out hal.IfaceList
	for _, name := range h.cfg.VendorIfaces {
		if env.EthWanEnabled && name == env.EthWanIface {
			continue
		}
		_, ok, err := h.lookup(name)
		if err != nil {
			return hal.IfaceList{}, fmt.Errorf("netdev: vendor interfaces: %w", err)
		}
		if !ok {
			continue
		}
		if err := out.Add(name); err != nil {
			return hal.IfaceList{}, fmt.Errorf("netdev: vendor interfaces: %w", err)
		}
	}
	if err := out.Validate(hal.MaxTotalIfaceListLen); err != nil {
		return hal.IfaceList{}, fmt.Errorf("netdev: vendor interfaces: %w", err)
	}
	return out, nil
}

// SetLinkState brings iface administratively up or down.
func (h *NetlinkHAL) SetLinkState(_ context.Context, iface string, up bool) error {
	if err := hal.ValidateIfaceName(iface); err != nil {
		return fmt.Errorf("netdev: set link state: %w", err)
	}
	link, ok, err := h.lookup(iface)
	if err != nil {
		return fmt.Errorf("netdev: set link state %q: %w", iface, err)
	}
	if !ok {
		return fmt.Errorf("netdev: set link state: %w: %q does not exist", hal.ErrInvalidArgument, iface)
	}
	if up {
		err = h.nl.LinkSetUp(link)
	} else {
		err = h.nl.LinkSetDown(link)
	}
	if err != nil {
		return fmt.Errorf("netdev: set link state %q: %w", iface, err)
	}
	h.logger.Info("link state changed", "interface", iface, "up", up)
	return nil
}

// BridgeMembers returns the names of the interfaces currently enslaved to
// bridge. A missing bridge has no members.
func (h *NetlinkHAL) BridgeMembers(_ context.Context, bridge string) ([]string, error) {
	br, ok, err := h.lookup(bridge)
	if err != nil {
		return nil, fmt.Errorf("netdev: bridge members %q: %w", bridge, err)
	}
	if !ok {
		return nil, nil
	}
	links, err := h.nl.LinkList()
	if err != nil {
		return nil, fmt.Errorf("netdev: bridge members %q: list links: %w", bridge, err)
	}
	var members []string
	for _, l := range links {
		if isEnslavedTo(l, br) {
			members = append(members, l.Attrs().Name)
		}
	}
	return members, nil
}

func (h *NetlinkHAL) createBridge(ctx context.Context, env *hal.Env, d *hal.BridgeDetails) error {
	br, err := h.ensureBridge(d.BridgeName)
	if err != nil {
		return err
	}
	if err := h.applyLinkSettings(br, d); err != nil {
		return err
	}

	if d.VlanName != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.attachVlan(ctx, br, d); err != nil {
			return err
		}
	}

	var errs []error
	for _, typ := range hal.MemberTypes() {
		for _, name := range d.Members(typ).Names() {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			if env.EthWanEnabled && name == env.EthWanIface {
				h.logger.Info("skipping Ethernet WAN port",
					"bridge", d.BridgeName,
					"interface", name,
				)
				continue
			}
			if err := h.attachMember(ctx, br, name, typ); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	h.logger.Info("bridge configured",
		"bridge", d.BridgeName,
		"vlan", d.VlanName,
		"vlan_id", d.VlanID,
		"eth", d.EthIfaces.String(),
		"moca", d.MocaIfaces.String(),
		"gre", d.GreIfaces.String(),
		"wifi", d.WifiIfaces.String(),
		"mtu", d.MTU,
	)
	return nil
}

// applyLinkSettings sets the optional MTU and address of the bridge.
func (h *NetlinkHAL) applyLinkSettings(br netlink.Link, d *hal.BridgeDetails) error {
	if d.MTU > 0 && br.Attrs().MTU != d.MTU {
		if err := h.nl.LinkSetMTU(br, d.MTU); err != nil {
			return fmt.Errorf("set bridge mtu %d: %w", d.MTU, err)
		}
	}
	if d.Address.IsValid() {
		a := d.Address.Addr()
		addr := &netlink.Addr{IPNet: &net.IPNet{
			IP:   net.IP(a.AsSlice()),
			Mask: net.CIDRMask(d.Address.Bits(), a.BitLen()),
		}}
		if err := h.nl.AddrReplace(br, addr); err != nil {
			return fmt.Errorf("set bridge address %s: %w", d.Address, err)
		}
	}
	return nil
}

func (h *NetlinkHAL) syncAdd(ctx context.Context, env *hal.Env, d *hal.BridgeDetails, iface string, typ hal.InterfaceType) error {
	if env.EthWanEnabled && iface == env.EthWanIface {
		h.logger.Info("skipping Ethernet WAN port", "bridge", d.BridgeName, "interface", iface)
		return nil
	}
	br, err := h.ensureBridge(d.BridgeName)
	if err != nil {
		return err
	}
	if typ == hal.IfaceOther || typ == hal.IfaceBridge {
		typ = d.MemberType(iface)
	}
	if typ == hal.IfaceVLAN && iface == d.VlanName {
		return h.attachVlan(ctx, br, d)
	}
	return h.attachMember(ctx, br, iface, typ)
}

func (h *NetlinkHAL) syncDelete(ctx context.Context, d *hal.BridgeDetails, iface string, typ hal.InterfaceType) error {
	link, ok, err := h.lookup(iface)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", iface, err)
	}
	if !ok {
		h.logger.Debug("interface already absent", "bridge", d.BridgeName, "interface", iface)
		return nil
	}

	br, brOK, err := h.lookup(d.BridgeName)
	if err != nil {
		return fmt.Errorf("lookup bridge: %w", err)
	}
	if brOK && isEnslavedTo(link, br) {
		if err := h.nl.LinkSetNoMaster(link); err != nil && !isNotFound(err) {
			return fmt.Errorf("detach %q: %w", iface, err)
		}
	}

	switch typ {
	case hal.IfaceGRE:
		if err := h.gre.Remove(ctx, iface, d.BridgeName); err != nil {
			return err
		}
	case hal.IfaceVLAN:
		if link.Type() != "vlan" {
			h.logger.Warn("interface is not a VLAN link, detached only",
				"bridge", d.BridgeName,
				"interface", iface,
				"link_type", link.Type(),
			)
			break
		}
		if err := h.deleteLink(link); err != nil {
			return err
		}
	}

	h.logger.Info("interface removed from bridge",
		"bridge", d.BridgeName,
		"interface", iface,
		"type", typ.String(),
	)
	return nil
}

func (h *NetlinkHAL) deleteBridge(ctx context.Context, d *hal.BridgeDetails) error {
	var errs []error

	br, ok, err := h.lookup(d.BridgeName)
	if err != nil {
		return fmt.Errorf("lookup bridge: %w", err)
	}

	// Members are visited even when the bridge is gone so that GRE tunnels
	// left behind by an earlier delete are still removed.
	for _, typ := range hal.MemberTypes() {
		for _, name := range d.Members(typ).Names() {
			if err := h.detachMember(ctx, br, d.BridgeName, name, typ); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if d.VlanName != "" && d.VlanID > 0 {
		vlan, vok, err := h.lookup(d.VlanName)
		if err != nil {
			errs = append(errs, fmt.Errorf("lookup vlan %q: %w", d.VlanName, err))
		} else if vok && vlan.Type() == "vlan" {
			if err := h.deleteLink(vlan); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if ok {
		if err := h.deleteLink(br); err != nil {
			errs = append(errs, err)
		}
	}

	if h.iso != nil {
		if err := h.iso.Clear(d.BridgeName); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	if ok {
		h.logger.Info("bridge deleted", "bridge", d.BridgeName)
	} else {
		h.logger.Debug("bridge already absent", "bridge", d.BridgeName)
	}
	return nil
}

// ensureBridge returns the named bridge, creating it and bringing it up as needed.
func (h *NetlinkHAL) ensureBridge(name string) (netlink.Link, error) {
	link, ok, err := h.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("lookup bridge: %w", err)
	}
	if ok && link.Type() != "bridge" {
		return nil, fmt.Errorf("%w: %q exists as %s, not a bridge", hal.ErrInvalidArgument, name, link.Type())
	}

	if !ok {
		la := netlink.NewLinkAttrs()
		la.Name = name
		if err := h.nl.LinkAdd(&netlink.Bridge{LinkAttrs: la}); err != nil && !errors.Is(err, unix.EEXIST) {
			return nil, fmt.Errorf("create bridge: %w", err)
		}
		link, err = h.nl.LinkByName(name)
		if err != nil {
			return nil, fmt.Errorf("lookup bridge after create: %w", err)
		}
		h.logger.Info("bridge created", "bridge", name)
	}

	if err := h.nl.LinkSetUp(link); err != nil {
		return nil, fmt.Errorf("set bridge up: %w", err)
	}
	return link, nil
}

// attachVlan ensures the VLAN interface of d exists and is enslaved to br.
// Without a tag, VlanName is attached as an existing interface.
func (h *NetlinkHAL) attachVlan(ctx context.Context, br netlink.Link, d *hal.BridgeDetails) error {
	if d.VlanID == 0 {
		return h.attachMember(ctx, br, d.VlanName, hal.IfaceVLAN)
	}

	vlan, ok, err := h.lookup(d.VlanName)
	if err != nil {
		return fmt.Errorf("lookup vlan %q: %w", d.VlanName, err)
	}
	if !ok {
		parent, pok, err := h.lookup(d.VirtualParentInterface)
		if err != nil {
			return fmt.Errorf("lookup vlan parent %q: %w", d.VirtualParentInterface, err)
		}
		if !pok {
			return fmt.Errorf("vlan parent %q does not exist", d.VirtualParentInterface)
		}
		la := netlink.NewLinkAttrs()
		la.Name = d.VlanName
		la.ParentIndex = parent.Attrs().Index
		if err := h.nl.LinkAdd(&netlink.Vlan{LinkAttrs: la, VlanId: d.VlanID}); err != nil && !errors.Is(err, unix.EEXIST) {
			return fmt.Errorf("create vlan %q: %w", d.VlanName, err)
		}
		h.logger.Info("vlan created",
			"vlan", d.VlanName,
			"parent", d.VirtualParentInterface,
			"vlan_id", d.VlanID,
		)
	} else if v, isVlan := vlan.(*netlink.Vlan); isVlan && v.VlanId != d.VlanID {
		return fmt.Errorf("vlan %q has id %d, want %d", d.VlanName, v.VlanId, d.VlanID)
	}

	return h.attachMember(ctx, br, d.VlanName, hal.IfaceVLAN)
}

// attachMember enslaves name to br and brings it up. GRE members are
// provisioned through the GRE handler first. Missing non-GRE members are
// skipped; radios and MoCA ports may appear after the bridge is built.
func (h *NetlinkHAL) attachMember(ctx context.Context, br netlink.Link, name string, typ hal.InterfaceType) error {
	bridge := br.Attrs().Name

	link, ok, err := h.lookup(name)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", name, err)
	}
	if !ok && typ == hal.IfaceGRE {
		if err := h.gre.Create(ctx, name, bridge); err != nil {
			return err
		}
		link, ok, err = h.lookup(name)
		if err != nil {
			return fmt.Errorf("lookup %q: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("GRE interface %q missing after handler ran", name)
		}
	}
	if !ok {
		h.logger.Warn("member interface not present, skipping",
			"bridge", bridge,
			"interface", name,
			"type", typ.String(),
		)
		return nil
	}

	if !isEnslavedTo(link, br) {
		if err := h.nl.LinkSetMaster(link, br); err != nil {
			return fmt.Errorf("attach %q: %w", name, err)
		}
		h.logger.Debug("interface attached",
			"bridge", bridge,
			"interface", name,
			"type", typ.String(),
		)
	}
	if err := h.nl.LinkSetUp(link); err != nil {
		return fmt.Errorf("set %q up: %w", name, err)
	}
	return nil
}

// detachMember releases name from br. br is nil when the bridge no longer
// exists.
func (h *NetlinkHAL) detachMember(ctx context.Context, br netlink.Link, bridge, name string, typ hal.InterfaceType) error {
	link, ok, err := h.lookup(name)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", name, err)
	}
	if ok && br != nil && isEnslavedTo(link, br) {
		if err := h.nl.LinkSetNoMaster(link); err != nil && !isNotFound(err) {
			return fmt.Errorf("detach %q: %w", name, err)
		}
	}
	if typ == hal.IfaceGRE && ok {
		if err := h.gre.Remove(ctx, name, bridge); err != nil {
			return err
		}
	}
	return nil
}

func (h *NetlinkHAL) deleteLink(link netlink.Link) error {
	if err := h.nl.LinkDel(link); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %q: %w", link.Attrs().Name, err)
	}
	return nil
}

// lookup returns the named link. A missing link is reported through ok, not err.
func (h *NetlinkHAL) lookup(name string) (netlink.Link, bool, error) {
	link, err := h.nl.LinkByName(name)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return link, true, nil
}

func isEnslavedTo(link, br netlink.Link) bool {
	return link.Attrs().MasterIndex != 0 && link.Attrs().MasterIndex == br.Attrs().Index
}

// wrapErr wraps a lookup failure; a nil err stays nil so that "not found"
// reads as a plain negative answer.
func wrapErr(prefix, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %q: %w", prefix, name, err)
}
