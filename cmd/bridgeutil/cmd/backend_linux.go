//go:build linux

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vishvananda/netlink"

	"github.com/plexsphere/bridgeutil/internal/agent"
	"github.com/plexsphere/bridgeutil/internal/gre"
	"github.com/plexsphere/bridgeutil/internal/isolation"
	"github.com/plexsphere/bridgeutil/internal/netdev"
	"github.com/plexsphere/bridgeutil/internal/script"
)

// openPlatformBackend wires the netlink HAL with its collaborators.
func openPlatformBackend(cfg *agent.AgentConfig, logger *slog.Logger) (backend, io.Closer, error) {
	handle, err := netlink.NewHandle()
	if err != nil {
		return nil, nil, fmt.Errorf("open netlink handle: %w", err)
	}

	runner := script.NewExecRunner(cfg.Script, logger)
	greHandler := gre.NewScriptHandler(cfg.GRE, runner, logger)
	iso := isolation.NewNftablesController(logger)
	hooks := netdev.NewVendorHooks(cfg.NetDev, iso, runner, logger)

	h := netdev.NewNetlinkHAL(cfg.NetDev, handle, greHandler, iso, hooks, logger)
	return h, handleCloser{handle}, nil
}

type handleCloser struct{ h *netlink.Handle }

func (c handleCloser) Close() error {
	c.h.Close()
	return nil
}
