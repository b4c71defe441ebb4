package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/plexsphere/bridgeutil/internal/agent"
	"github.com/plexsphere/bridgeutil/internal/hal"
	"github.com/plexsphere/bridgeutil/internal/logging"
)

// fakeBackend is an in-memory backend recording every mutating call.
type fakeBackend struct {
	mu      sync.Mutex
	links   map[string]bool
	down    map[string]bool
	members map[string][]string
	vendor  []string
	calls   []string
	closed  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		links:   make(map[string]bool),
		down:    make(map[string]bool),
		members: make(map[string][]string),
	}
}

func (f *fakeBackend) UpdateBridgeInfo(_ context.Context, _ *hal.Env, d *hal.BridgeDetails, iface string, op hal.BridgeOperation, typ hal.InterfaceType) error {
	if err := hal.ValidateRequest(d, iface, op, typ); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	br := d.BridgeName
	switch {
	case op == hal.CreateBridge && iface == "":
		f.links[br] = true
		for _, m := range d.AllMembers() {
			if f.links[m] && !slices.Contains(f.members[br], m) {
				f.members[br] = append(f.members[br], m)
			}
		}
	case op == hal.CreateBridge:
		f.links[iface] = true
		if !slices.Contains(f.members[br], iface) {
			f.members[br] = append(f.members[br], iface)
		}
	case iface == "":
		delete(f.links, br)
		delete(f.members, br)
	default:
		f.members[br] = slices.DeleteFunc(f.members[br], func(s string) bool { return s == iface })
	}
	f.calls = append(f.calls, op.String()+" "+br+" "+iface)
	return nil
}

func (f *fakeBackend) CheckIfExists(_ context.Context, iface string) (bool, error) {
	if err := hal.ValidateIfaceName(iface); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[iface], nil
}

func (f *fakeBackend) CheckIfExistsInBridge(_ context.Context, iface, bridge string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.members[bridge], iface), nil
}

func (f *fakeBackend) HandlePreConfigVendor(_ context.Context, _ *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "pre "+d.BridgeName+" "+inst.String())
	return nil
}

func (f *fakeBackend) HandlePostConfigVendor(_ context.Context, _ *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "post "+d.BridgeName+" "+inst.String())
	return nil
}

func (f *fakeBackend) GetVendorIfaces(context.Context, *hal.Env) (hal.IfaceList, error) {
	return hal.NewIfaceList(f.vendor...)
}

func (f *fakeBackend) BridgeMembers(_ context.Context, bridge string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.members[bridge]), nil
}

func (f *fakeBackend) SetLinkState(_ context.Context, iface string, up bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.links[iface] {
		return fmt.Errorf("%w: %q does not exist", hal.ErrInvalidArgument, iface)
	}
	f.down[iface] = !up
	f.calls = append(f.calls, fmt.Sprintf("link %s up=%v", iface, up))
	return nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) getCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// useFakeBackend routes loadSession to fb and silences logging for the
// duration of the test.
func useFakeBackend(t *testing.T, fb *fakeBackend) {
	t.Helper()
	origOpen, origLogger := openBackend, newLogger
	openBackend = func(*agent.AgentConfig, *slog.Logger) (backend, io.Closer, error) {
		return fb, fb, nil
	}
	newLogger = func(logging.Config) (*slog.Logger, io.Closer, error) {
		return logging.Discard(), nopCloser{}, nil
	}
	t.Cleanup(func() {
		openBackend, newLogger = origOpen, origLogger
		logLevel = ""
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
