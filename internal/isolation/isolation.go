// Package isolation blocks forwarding between selected ports of a Linux
// bridge. Vendor hooks use it for MoCA isolation and hotspot client isolation.
package isolation

import "sort"

// PortRule drops bridged frames entering on In and leaving on Out.
type PortRule struct {
	In  string
	Out string
}

// Controller abstracts the OS-level rule store for testability.
// All methods must be idempotent.
type Controller interface {
	// Apply replaces the isolation rules of bridge with rules atomically.
	// An empty rule set leaves an empty chain in place.
	Apply(bridge string, rules []PortRule) error

	// Clear removes every isolation rule of bridge. Clearing a bridge with
	// no rules returns nil.
	Clear(bridge string) error
}

// GroupRules isolates every port in group from every port in others, in both
// directions. Ports within group can still reach each other.
func GroupRules(group, others []string) []PortRule {
	var rules []PortRule
	for _, g := range group {
		for _, o := range others {
			if g == o {
				continue
			}
			rules = append(rules, PortRule{In: g, Out: o}, PortRule{In: o, Out: g})
		}
	}
	return dedupe(rules)
}

// PairwiseRules isolates every port in group from every other port in group.
func PairwiseRules(group []string) []PortRule {
	var rules []PortRule
	for _, a := range group {
		for _, b := range group {
			if a != b {
				rules = append(rules, PortRule{In: a, Out: b})
			}
		}
	}
	return dedupe(rules)
}

// dedupe removes repeated rules and orders the result so that batches are
// deterministic.
func dedupe(rules []PortRule) []PortRule {
	seen := make(map[PortRule]struct{}, len(rules))
	out := rules[:0]
	for _, r := range rules {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].In != out[j].In {
			return out[i].In < out[j].In
		}
		return out[i].Out < out[j].Out
	})
	return out
}
