package reconcile

import (
	"slices"
	"sync"
)

// statusSnapshot holds the status of the most recent sync pass. Readers get
// deep copies so the loop can replace it concurrently.
type statusSnapshot struct {
	mu     sync.RWMutex
	status Status
	valid  bool
}

func newStatusSnapshot() *statusSnapshot {
	return &statusSnapshot{}
}

// Get returns a copy of the last status and whether a pass has completed.
func (s *statusSnapshot) Get() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStatus(s.status), s.valid
}

// Update replaces the stored status with a copy of st.
func (s *statusSnapshot) Update(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = copyStatus(st)
	s.valid = true
}

func copyStatus(src Status) Status {
	dst := src
	if src.Bridges == nil {
		return dst
	}
	dst.Bridges = make([]BridgeStatus, len(src.Bridges))
	for i, b := range src.Bridges {
		b.Detached = slices.Clone(b.Detached)
		b.Missing = slices.Clone(b.Missing)
		dst.Bridges[i] = b
	}
	return dst
}
