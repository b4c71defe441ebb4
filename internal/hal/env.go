package hal

// Env carries the gateway-wide settings and flags an implementation consults.
// The caller owns it and passes it explicitly; implementations keep no
// package-level state of their own. Env is not safe for concurrent mutation;
// callers serialise bridge operations.
type Env struct {
	DeviceMode DeviceMode

	// MocaIsolation enables isolation of MoCA members from the rest of the bridge.
	MocaIsolation bool

	// NeedWifiGatewayRefresh and NeedSwitchGatewayRefresh are raised by the
	// caller and cleared by the post-configuration hook once the refresh ran.
	NeedWifiGatewayRefresh   bool
	NeedSwitchGatewayRefresh bool

	// SyncMembers counts interfaces touched by sync passes.
	SyncMembers int

	// BridgeOpInProgress is set by the caller for the duration of a bridge operation.
	BridgeOpInProgress bool

	PrimaryBridgeName string
	Port2Enabled      bool
	EthWanEnabled     bool
	EthWanIface       string
}

// NewEnv returns an Env with the router-mode defaults.
func NewEnv() *Env {
	return &Env{DeviceMode: ModeRouter}
}
