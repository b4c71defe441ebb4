//go:build linux

package netdev

import (
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// fakeNetlink is an in-memory link table implementing Netlinker.
type fakeNetlink struct {
	mu        sync.Mutex
	links     map[string]netlink.Link
	addrs     map[string][]string
	nextIndex int

	calls []string

	linkAddErr       error
	linkSetMasterErr map[string]error
}

func newFakeNetlink(devices ...string) *fakeNetlink {
	f := &fakeNetlink{
		links:     make(map[string]netlink.Link),
		addrs:     make(map[string][]string),
		nextIndex: 1,
	}
	for _, d := range devices {
		f.addDevice(d)
	}
	return f
}

// addDevice registers a plain device such as a physical port.
func (f *fakeNetlink) addDevice(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	la := netlink.NewLinkAttrs()
	la.Name = name
	la.Index = f.nextIndex
	f.nextIndex++
	f.links[name] = &netlink.Device{LinkAttrs: la}
}

// removeDevice drops name from the table, as an out-of-band deletion would.
func (f *fakeNetlink) removeDevice(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.links, name)
	delete(f.addrs, name)
}

func (f *fakeNetlink) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeNetlink) LinkByName(name string) (netlink.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[name]
	if !ok {
		return nil, fmt.Errorf("link %q: %w", name, unix.ENODEV)
	}
	return l, nil
}

func (f *fakeNetlink) LinkByIndex(index int) (netlink.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.Attrs().Index == index {
			return l, nil
		}
	}
	return nil, fmt.Errorf("link index %d: %w", index, unix.ENODEV)
}

func (f *fakeNetlink) LinkList() ([]netlink.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]netlink.Link, 0, len(f.links))
	for _, l := range f.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attrs().Index < out[j].Attrs().Index })
	return out, nil
}

func (f *fakeNetlink) LinkAdd(link netlink.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := link.Attrs().Name
	f.record("LinkAdd %s %s", link.Type(), name)
	if f.linkAddErr != nil {
		return f.linkAddErr
	}
	if _, ok := f.links[name]; ok {
		return unix.EEXIST
	}
	link.Attrs().Index = f.nextIndex
	f.nextIndex++
	f.links[name] = link
	return nil
}

func (f *fakeNetlink) LinkDel(link netlink.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := link.Attrs().Name
	f.record("LinkDel %s", name)
	l, ok := f.links[name]
	if !ok {
		return unix.ENODEV
	}
	idx := l.Attrs().Index
	delete(f.links, name)
	delete(f.addrs, name)
	for _, other := range f.links {
		if other.Attrs().MasterIndex == idx {
			other.Attrs().MasterIndex = 0
		}
	}
	return nil
}

func (f *fakeNetlink) LinkSetUp(link netlink.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[link.Attrs().Name]
	if !ok {
		return unix.ENODEV
	}
	l.Attrs().Flags |= net.FlagUp
	return nil
}

func (f *fakeNetlink) LinkSetDown(link netlink.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[link.Attrs().Name]
	if !ok {
		return unix.ENODEV
	}
	l.Attrs().Flags &^= net.FlagUp
	return nil
}

func (f *fakeNetlink) LinkSetMTU(link netlink.Link, mtu int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := link.Attrs().Name
	f.record("LinkSetMTU %s %d", name, mtu)
	l, ok := f.links[name]
	if !ok {
		return unix.ENODEV
	}
	l.Attrs().MTU = mtu
	return nil
}

func (f *fakeNetlink) AddrReplace(link netlink.Link, addr *netlink.Addr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := link.Attrs().Name
	if _, ok := f.links[name]; !ok {
		return unix.ENODEV
	}
	a := addr.IPNet.String()
	for _, existing := range f.addrs[name] {
		if existing == a {
			return nil
		}
	}
	f.addrs[name] = append(f.addrs[name], a)
	return nil
}

func (f *fakeNetlink) LinkSetMaster(link netlink.Link, master netlink.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := link.Attrs().Name
	f.record("LinkSetMaster %s %s", name, master.Attrs().Name)
	if err, ok := f.linkSetMasterErr[name]; ok {
		return err
	}
	l, ok := f.links[name]
	if !ok {
		return unix.ENODEV
	}
	l.Attrs().MasterIndex = master.Attrs().Index
	return nil
}

func (f *fakeNetlink) LinkSetNoMaster(link netlink.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := link.Attrs().Name
	f.record("LinkSetNoMaster %s", name)
	l, ok := f.links[name]
	if !ok {
		return unix.ENODEV
	}
	l.Attrs().MasterIndex = 0
	return nil
}

func (f *fakeNetlink) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.links[name]
	return ok
}

func (f *fakeNetlink) mtu(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[name]; ok {
		return l.Attrs().MTU
	}
	return 0
}

func (f *fakeNetlink) addresses(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.addrs[name]...)
}

func (f *fakeNetlink) isUp(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[name]
	return ok && l.Attrs().Flags&net.FlagUp != 0
}

func (f *fakeNetlink) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
