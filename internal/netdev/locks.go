package netdev

import "sync"

// bridgeLocks serialises operations per bridge while letting different
// bridges proceed in parallel. An entry lives only while some caller holds
// or waits for it.
type bridgeLocks struct {
	mu    sync.Mutex
	locks map[string]*bridgeLock
}

type bridgeLock struct {
	sync.Mutex
	refs int
}

func newBridgeLocks() *bridgeLocks {
	return &bridgeLocks{locks: make(map[string]*bridgeLock)}
}

// lock acquires the lock for bridge and returns its release function.
func (b *bridgeLocks) lock(bridge string) func() {
	b.mu.Lock()
	l, ok := b.locks[bridge]
	if !ok {
		l = &bridgeLock{}
		b.locks[bridge] = l
	}
	l.refs++
	b.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, bridge)
		}
		b.mu.Unlock()
	}
}

// size returns the number of live entries.
func (b *bridgeLocks) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.locks)
}
