package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/plexsphere/bridgeutil/internal/hal"
)

// halCall records one HAL invocation.
type halCall struct {
	Method   string
	Bridge   string
	Iface    string
	Op       hal.BridgeOperation
	Type     hal.InterfaceType
	Instance hal.ConfigInstance
	InOp     bool
}

func (c halCall) String() string {
	switch c.Method {
	case "UpdateBridgeInfo":
		if c.Iface != "" {
			return fmt.Sprintf("%s(%s,%s,%s,%s)", c.Method, c.Bridge, c.Iface, c.Op, c.Type)
		}
		return fmt.Sprintf("%s(%s,%s)", c.Method, c.Bridge, c.Op)
	default:
		return fmt.Sprintf("%s(%s,%s)", c.Method, c.Bridge, c.Instance)
	}
}

// mockHAL is a recording test double for hal.HAL and MemberLister.
type mockHAL struct {
	mu      sync.Mutex
	calls   []halCall
	members map[string][]string

	preErr    map[string]error
	updateErr map[string]error
	postErr   map[string]error
	detachErr map[string]error
	listErr   error
	panicOn   string
}

func newMockHAL() *mockHAL {
	return &mockHAL{
		members:   make(map[string][]string),
		preErr:    make(map[string]error),
		updateErr: make(map[string]error),
		postErr:   make(map[string]error),
		detachErr: make(map[string]error),
	}
}

func (m *mockHAL) record(c halCall) {
	m.calls = append(m.calls, c)
}

func (m *mockHAL) UpdateBridgeInfo(_ context.Context, env *hal.Env, d *hal.BridgeDetails, iface string, op hal.BridgeOperation, typ hal.InterfaceType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(halCall{Method: "UpdateBridgeInfo", Bridge: d.BridgeName, Iface: iface, Op: op, Type: typ, InOp: env.BridgeOpInProgress})
	if m.panicOn == d.BridgeName {
		panic("update panicked")
	}
	if iface != "" {
		if err := m.detachErr[iface]; err != nil {
			return err
		}
		m.members[d.BridgeName] = slices.DeleteFunc(m.members[d.BridgeName], func(s string) bool { return s == iface })
		return nil
	}
	return m.updateErr[d.BridgeName]
}

func (m *mockHAL) CheckIfExists(context.Context, string) (bool, error) {
	return true, nil
}

func (m *mockHAL) CheckIfExistsInBridge(context.Context, string, string) (bool, error) {
	return true, nil
}

func (m *mockHAL) HandlePreConfigVendor(_ context.Context, env *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(halCall{Method: "Pre", Bridge: d.BridgeName, Instance: inst, InOp: env.BridgeOpInProgress})
	return m.preErr[d.BridgeName]
}

func (m *mockHAL) HandlePostConfigVendor(_ context.Context, env *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(halCall{Method: "Post", Bridge: d.BridgeName, Instance: inst, InOp: env.BridgeOpInProgress})
	return m.postErr[d.BridgeName]
}

func (m *mockHAL) GetVendorIfaces(context.Context, *hal.Env) (hal.IfaceList, error) {
	return hal.IfaceList{}, nil
}

func (m *mockHAL) BridgeMembers(_ context.Context, bridge string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.members[bridge]), nil
}

func (m *mockHAL) setMembers(bridge string, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[bridge] = names
}

func (m *mockHAL) callStrings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.String()
	}
	return out
}

func (m *mockHAL) getCalls() []halCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *mockHAL) countMethod(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func sampleDetails() *hal.BridgeDetails {
	return &hal.BridgeDetails{
		BridgeName:             "br0",
		VlanName:               "br0.100",
		VirtualParentInterface: "eth0",
		VlanID:                 100,
		EthIfaces:              hal.MustIfaceList("eth1"),
		MocaIfaces:             hal.MustIfaceList("moca0"),
		WifiIfaces:             hal.MustIfaceList("wl0"),
	}
}

func privateLAN() BridgeSpec {
	return BridgeSpec{
		Instance: hal.PrivateLAN,
		Details: &hal.BridgeDetails{
			BridgeName: "brlan0",
			EthIfaces:  hal.MustIfaceList("eth1", "eth2"),
			WifiIfaces: hal.MustIfaceList("wl0", "wl1"),
		},
	}
}

func hotspot() BridgeSpec {
	return BridgeSpec{
		Instance: hal.Hotspot2G,
		Details: &hal.BridgeDetails{
			BridgeName: "brlan2",
			GreIfaces:  hal.MustIfaceList("gretap0"),
			WifiIfaces: hal.MustIfaceList("wl0.2"),
		},
	}
}
