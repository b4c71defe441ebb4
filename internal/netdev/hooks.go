package netdev

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plexsphere/bridgeutil/internal/hal"
	"github.com/plexsphere/bridgeutil/internal/isolation"
	"github.com/plexsphere/bridgeutil/internal/script"
)

// VendorHooks implements the OEM pre- and post-configuration steps.
type VendorHooks struct {
	cfg    Config
	iso    isolation.Controller
	runner script.Runner
	logger *slog.Logger
}

// NewVendorHooks creates VendorHooks. Config defaults are applied automatically.
func NewVendorHooks(cfg Config, iso isolation.Controller, runner script.Runner, logger *slog.Logger) *VendorHooks {
	cfg.ApplyDefaults()
	return &VendorHooks{
		cfg:    cfg,
		iso:    iso,
		runner: runner,
		logger: logger.With("component", "netdev"),
	}
}

// PreConfig prepares the data plane for inst before the bridge is mutated.
func (v *VendorHooks) PreConfig(ctx context.Context, env *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	if err := validateHookArgs(d, inst); err != nil {
		return fmt.Errorf("netdev: pre-config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("netdev: pre-config: %w", err)
	}
	env = envOrDefault(env)

	switch {
	case inst == hal.MocaIsolation && env.MocaIsolation:
		moca := d.MocaIfaces.Names()
		var others []string
		for _, m := range d.AllMembers() {
			if !d.MocaIfaces.Contains(m) {
				others = append(others, m)
			}
		}
		if d.VlanName != "" {
			others = append(others, d.VlanName)
		}
		if err := v.iso.Apply(d.BridgeName, isolation.GroupRules(moca, others)); err != nil {
			return fmt.Errorf("netdev: pre-config %s: %w", inst, err)
		}
		v.logger.Info("MoCA isolation applied",
			"bridge", d.BridgeName,
			"moca", d.MocaIfaces.String(),
		)

	case inst.IsHotspot() || inst == hal.LostNFound:
		if err := v.iso.Apply(d.BridgeName, isolation.PairwiseRules(d.WifiIfaces.Names())); err != nil {
			return fmt.Errorf("netdev: pre-config %s: %w", inst, err)
		}
		v.logger.Info("WiFi client isolation applied",
			"bridge", d.BridgeName,
			"instance", inst.String(),
			"wifi", d.WifiIfaces.String(),
		)

	default:
		v.logger.Debug("no pre-config steps",
			"bridge", d.BridgeName,
			"instance", inst.String(),
		)
	}
	return nil
}

// PostConfig runs follow-up steps for inst after a successful bridge
// mutation. Gateway refresh flags in env are cleared once handled.
func (v *VendorHooks) PostConfig(ctx context.Context, env *hal.Env, d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	if err := validateHookArgs(d, inst); err != nil {
		return fmt.Errorf("netdev: post-config: %w", err)
	}
	if env == nil {
		return fmt.Errorf("netdev: post-config: %w: nil env", hal.ErrInvalidArgument)
	}

	if inst == hal.MocaIsolation && !env.MocaIsolation {
		if err := v.iso.Clear(d.BridgeName); err != nil {
			return fmt.Errorf("netdev: post-config %s: %w", inst, err)
		}
		v.logger.Info("MoCA isolation removed", "bridge", d.BridgeName)
	}

	if inst == hal.PrivateLAN && env.DeviceMode == hal.ModeBridge {
		env.PrimaryBridgeName = d.BridgeName
	}

	if env.NeedSwitchGatewayRefresh {
		if err := v.refresh(ctx, "switch", v.cfg.SwitchRefreshCommand); err != nil {
			return fmt.Errorf("netdev: post-config %s: %w", inst, err)
		}
		env.NeedSwitchGatewayRefresh = false
	}
	if env.NeedWifiGatewayRefresh {
		if err := v.refresh(ctx, "wifi", v.cfg.WifiRefreshCommand); err != nil {
			return fmt.Errorf("netdev: post-config %s: %w", inst, err)
		}
		env.NeedWifiGatewayRefresh = false
	}
	return nil
}

func (v *VendorHooks) refresh(ctx context.Context, what string, command []string) error {
	if len(command) == 0 {
		v.logger.Debug("no gateway refresh command configured", "target", what)
		return nil
	}
	if _, err := v.runner.Run(ctx, command[0], command[1:]...); err != nil {
		return fmt.Errorf("%s gateway refresh: %w", what, err)
	}
	v.logger.Info("gateway refreshed", "target", what)
	return nil
}

func validateHookArgs(d *hal.BridgeDetails, inst hal.ConfigInstance) error {
	if !inst.Valid() {
		return fmt.Errorf("%w: config instance %d", hal.ErrOutOfRange, int(inst))
	}
	return d.Validate()
}

func envOrDefault(env *hal.Env) *hal.Env {
	if env == nil {
		return hal.NewEnv()
	}
	return env
}
