package netdev

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/plexsphere/bridgeutil/internal/isolation"
	"github.com/plexsphere/bridgeutil/internal/script"
)

// mockIsolation is a test double for isolation.Controller.
type mockIsolation struct {
	mu       sync.Mutex
	applied  map[string][]isolation.PortRule
	cleared  []string
	applyErr error
	clearErr error
}

func newMockIsolation() *mockIsolation {
	return &mockIsolation{applied: make(map[string][]isolation.PortRule)}
}

func (m *mockIsolation) Apply(bridge string, rules []isolation.PortRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied[bridge] = rules
	return nil
}

func (m *mockIsolation) Clear(bridge string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, bridge)
	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.applied, bridge)
	return nil
}

// mockRunner is a test double for script.Runner.
type mockRunner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *mockRunner) Run(_ context.Context, program string, args ...string) (script.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, strings.TrimSpace(program+" "+strings.Join(args, " ")))
	if m.err != nil {
		return script.Result{ExitCode: 1}, m.err
	}
	return script.Result{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
