package reconcile

import (
	"slices"

	"github.com/plexsphere/bridgeutil/internal/hal"
)

// MemberDiff describes how the current members of a bridge differ from the
// members its BridgeSpec asks for.
type MemberDiff struct {
	// Stale are enslaved interfaces the spec does not list.
	Stale []string
	// Missing are listed interfaces not currently enslaved.
	Missing []string
}

// IsEmpty reports whether the bridge matches its spec.
func (d MemberDiff) IsEmpty() bool {
	return len(d.Stale) == 0 && len(d.Missing) == 0
}

// ComputeMemberDiff compares the desired members of details against current.
// The VLAN sub-interface counts as a desired member. Both result slices are
// sorted.
func ComputeMemberDiff(details *hal.BridgeDetails, current []string) MemberDiff {
	var diff MemberDiff
	if details == nil {
		return diff
	}

	desired := make(map[string]struct{})
	for _, name := range details.AllMembers() {
		desired[name] = struct{}{}
	}
	if details.VlanName != "" {
		desired[details.VlanName] = struct{}{}
	}

	have := make(map[string]struct{}, len(current))
	for _, name := range current {
		have[name] = struct{}{}
		if _, ok := desired[name]; !ok {
			diff.Stale = append(diff.Stale, name)
		}
	}
	for name := range desired {
		if _, ok := have[name]; !ok {
			diff.Missing = append(diff.Missing, name)
		}
	}

	slices.Sort(diff.Stale)
	diff.Stale = slices.Compact(diff.Stale)
	slices.Sort(diff.Missing)
	return diff
}
