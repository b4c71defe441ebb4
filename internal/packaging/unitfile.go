package packaging

import (
	"fmt"
	"path/filepath"
)

// GenerateUnitFile produces the systemd unit for the bridgeutil sync loop.
// Reloading the unit sends SIGHUP, which triggers an immediate sync pass.
func GenerateUnitFile(cfg InstallConfig) string {
	cfg.ApplyDefaults()

	return fmt.Sprintf(`[Unit]
Description=bridgeutil LAN bridge manager
After=network-pre.target
Before=network.target
StartLimitBurst=5
StartLimitIntervalSec=60

[Service]
Type=simple
ExecStart=%s up --config %s
ExecReload=/bin/kill -HUP $MAINPID
Restart=always
RestartSec=5s
AmbientCapabilities=CAP_NET_ADMIN
CapabilityBoundingSet=CAP_NET_ADMIN
ProtectHome=true
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, cfg.BinaryPath, filepath.Join(cfg.ConfigDir, "config.yaml"), cfg.RunDir)
}
