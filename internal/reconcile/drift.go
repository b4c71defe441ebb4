package reconcile

import (
	"time"
)

// BridgeStatus is the outcome of one bridge within a sync pass.
type BridgeStatus struct {
	Bridge   string   `json:"bridge"`
	Instance string   `json:"instance"`
	Detached []string `json:"detached,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Status summarises a sync pass. It is what gets written to Config.StatusPath.
type Status struct {
	Timestamp   time.Time      `json:"timestamp"`
	Duration    string         `json:"duration"`
	SyncMembers int            `json:"sync_members"`
	Bridges     []BridgeStatus `json:"bridges"`
}

// Failed reports whether any bridge in the pass ended with an error.
func (s Status) Failed() bool {
	for _, b := range s.Bridges {
		if b.Error != "" {
			return true
		}
	}
	return false
}

// buildBridgeStatus records the result of syncing spec.
func buildBridgeStatus(spec BridgeSpec, detached []string, diff MemberDiff, err error) BridgeStatus {
	st := BridgeStatus{
		Instance: spec.Instance.String(),
		Detached: detached,
		Missing:  diff.Missing,
	}
	if spec.Details != nil {
		st.Bridge = spec.Details.BridgeName
	}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}
