//go:build linux

package netdev

import (
	"errors"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Netlinker is the subset of netlink link operations the HAL needs.
// *netlink.Handle satisfies it.
type Netlinker interface {
	LinkByName(name string) (netlink.Link, error)
	LinkByIndex(index int) (netlink.Link, error)
	LinkList() ([]netlink.Link, error)
	LinkAdd(link netlink.Link) error
	LinkDel(link netlink.Link) error
	LinkSetUp(link netlink.Link) error
	LinkSetDown(link netlink.Link) error
	LinkSetMTU(link netlink.Link, mtu int) error
	LinkSetMaster(link netlink.Link, master netlink.Link) error
	LinkSetNoMaster(link netlink.Link) error
	AddrReplace(link netlink.Link, addr *netlink.Addr) error
}

var _ Netlinker = (*netlink.Handle)(nil)

// isNotFound reports whether err means the link does not exist.
func isNotFound(err error) bool {
	var nf netlink.LinkNotFoundError
	if errors.As(err, &nf) {
		return true
	}
	return errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENOENT)
}
