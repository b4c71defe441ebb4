package packaging

import (
	"fmt"
	"path/filepath"
)

// GenerateDefaultConfig produces a starter config.yaml with a single private
// LAN bridge. The status file is placed under runDir.
func GenerateDefaultConfig(runDir string) string {
	return fmt.Sprintf(`# bridgeutil configuration

device:
  mode: router
  moca_isolation: false

log:
  level: info

reconcile:
  interval: 60s
  statuspath: %s

bridges:
  - instance: private_lan
    bridge: brlan0
    eth: [eth0]
    wifi: [wl0, wl1]
`, filepath.Join(runDir, "status.json"))
}
