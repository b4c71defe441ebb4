package reconcile

import (
	"sync"
	"testing"
	"time"
)

func sampleStatus() Status {
	return Status{
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:    "12ms",
		SyncMembers: 2,
		Bridges: []BridgeStatus{
			{Bridge: "brlan0", Instance: "private_lan", Detached: []string{"wl1"}},
			{Bridge: "brlan2", Instance: "hotspot_2g", Missing: []string{"gretap0"}, Error: "boom"},
		},
	}
}

func TestStatusSnapshot_InitiallyEmpty(t *testing.T) {
	snap := newStatusSnapshot()
	if _, ok := snap.Get(); ok {
		t.Error("Get() ok = true before any update")
	}
}

func TestStatusSnapshot_UpdateAndGet(t *testing.T) {
	snap := newStatusSnapshot()
	snap.Update(sampleStatus())

	got, ok := snap.Get()
	if !ok {
		t.Fatal("Get() ok = false after Update")
	}
	if len(got.Bridges) != 2 || got.Bridges[0].Bridge != "brlan0" {
		t.Errorf("Bridges = %+v", got.Bridges)
	}
	if !got.Failed() {
		t.Error("Failed() = false, want true")
	}
}

func TestStatusSnapshot_DeepCopy(t *testing.T) {
	snap := newStatusSnapshot()
	src := sampleStatus()
	snap.Update(src)

	src.Bridges[0].Detached[0] = "mutated"
	got, _ := snap.Get()
	if got.Bridges[0].Detached[0] != "wl1" {
		t.Errorf("snapshot affected by source mutation: %v", got.Bridges[0].Detached)
	}

	got.Bridges[1].Missing[0] = "mutated"
	again, _ := snap.Get()
	if again.Bridges[1].Missing[0] != "gretap0" {
		t.Errorf("snapshot affected by reader mutation: %v", again.Bridges[1].Missing)
	}
}

func TestStatusSnapshot_ConcurrentAccess(t *testing.T) {
	snap := newStatusSnapshot()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			snap.Update(sampleStatus())
		}()
		go func() {
			defer wg.Done()
			snap.Get()
		}()
	}
	wg.Wait()
}

func TestStatus_FailedWhenClean(t *testing.T) {
	st := Status{Bridges: []BridgeStatus{{Bridge: "brlan0"}}}
	if st.Failed() {
		t.Error("Failed() = true, want false")
	}
}
