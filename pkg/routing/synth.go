package routing

import (
	"fmt"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/topology"
	"github.com/closgen/closgen/pkg/util"
)

// Strategy selects how switches use their equal-cost uplinks.
type Strategy string

const (
	// SinglePath routes every destination through the first uplink in
	// enumeration order. Tables never contain two entries for the same
	// prefix, so forwarding is fully deterministic.
	SinglePath Strategy = "single-path-static"

	// MultiPathEqualCost emits one entry per equal-cost uplink for
	// each upward destination. Same-prefix entries form an ECMP group.
	MultiPathEqualCost Strategy = "multi-path-equal-cost"
)

// ParseStrategy validates a strategy name from config or flags.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case SinglePath, MultiPathEqualCost:
		return Strategy(s), nil
	case "":
		return SinglePath, nil
	}
	return "", fmt.Errorf("unknown uplink strategy %q (want %q or %q)", s, SinglePath, MultiPathEqualCost)
}

// Synthesize computes every node's routing table in one pass. It is
// all-or-nothing: any plan lookup miss aborts with MissingLinkMapping
// before a single entry is visible to callers.
//
// Per node kind:
//
//	server       one default route via its access switch
//	access       /24 per other in-pod access switch, /16 per other pod,
//	             via its aggregation uplink(s)
//	aggregation  /24 down per in-pod access switch, /16 per other pod
//	             via its core uplink(s)
//	core         /16 down per pod
func Synthesize(topo *topology.Topology, plan *addressing.Plan, strategy Strategy) (*Tables, error) {
	strategy, err := ParseStrategy(string(strategy))
	if err != nil {
		return nil, err
	}

	ts := &Tables{
		Strategy: strategy,
		byNode:   make(map[topology.NodeID]int, topo.NodeCount()),
	}
	for _, node := range topo.Nodes() {
		var entries []Entry
		var err error
		switch node.Kind {
		case topology.NodeServer:
			entries, err = serverEntries(topo, plan, node)
		case topology.NodeAccess:
			entries, err = accessEntries(topo, plan, node, strategy)
		case topology.NodeAggregation:
			entries, err = aggregationEntries(topo, plan, node, strategy)
		case topology.NodeCore:
			entries, err = coreEntries(topo, plan, node)
		}
		if err != nil {
			return nil, fmt.Errorf("synthesizing routes for %s: %w", node, err)
		}
		table := Table{Node: node, Entries: entries}
		if err := checkAmbiguity(&table, strategy); err != nil {
			return nil, err
		}
		ts.byNode[node] = len(ts.Nodes)
		ts.Nodes = append(ts.Nodes, table)
	}
	return ts, nil
}

// serverEntries: a single default route pointing at the access switch's
// address on the server's only link.
func serverEntries(topo *topology.Topology, plan *addressing.Plan, n topology.NodeID) ([]Entry, error) {
	key := topology.ServerAccessKey(n.Pod, n.Index)
	sub, err := plan.Subnet(key)
	if err != nil {
		return nil, err
	}
	return []Entry{{
		Prefix:    "0.0.0.0",
		PrefixLen: 0,
		NextHop:   sub.AddrB,
		Egress:    key,
	}}, nil
}

// accessEntries: the third octet alone distinguishes access switches
// within a pod and the second octet alone distinguishes pods, so the
// minimal aggregates are a /24 per sibling access switch and a /16 per
// remote pod. Directly attached servers get /30 entries, standing in
// for the connected routes a live stack would hold implicitly.
func accessEntries(topo *topology.Topology, plan *addressing.Plan, n topology.NodeID, strategy Strategy) ([]Entry, error) {
	var entries []Entry
	half := topo.K / 2
	for s := n.Index * half; s < (n.Index+1)*half; s++ {
		key := topology.ServerAccessKey(n.Pod, s)
		sub, err := plan.Subnet(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Prefix:    sub.Network,
			PrefixLen: addressing.PrefixLen,
			NextHop:   sub.AddrA,
			Egress:    key,
		})
	}
	for _, up := range uplinks(topo.AggregationPerPod, strategy) {
		key := topology.AccessAggregationKey(n.Pod, n.Index, up)
		sub, err := plan.Subnet(key)
		if err != nil {
			return nil, err
		}
		for other := 0; other < topo.AccessPerPod; other++ {
			if other == n.Index {
				continue
			}
			entries = append(entries, Entry{
				Prefix:    fmt.Sprintf("10.%d.%d.0", n.Pod, other),
				PrefixLen: 24,
				NextHop:   sub.AddrB,
				Egress:    key,
			})
		}
		for pod := 0; pod < topo.PodCount; pod++ {
			if pod == n.Pod {
				continue
			}
			entries = append(entries, Entry{
				Prefix:    fmt.Sprintf("10.%d.0.0", pod),
				PrefixLen: 16,
				NextHop:   sub.AddrB,
				Egress:    key,
			})
		}
	}
	return entries, nil
}

// aggregationEntries: downward /24 per in-pod access switch, upward
// /16 per remote pod through the switch's core group.
func aggregationEntries(topo *topology.Topology, plan *addressing.Plan, n topology.NodeID, strategy Strategy) ([]Entry, error) {
	var entries []Entry
	for access := 0; access < topo.AccessPerPod; access++ {
		key := topology.AccessAggregationKey(n.Pod, access, n.Index)
		sub, err := plan.Subnet(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Prefix:    fmt.Sprintf("10.%d.%d.0", n.Pod, access),
			PrefixLen: 24,
			NextHop:   sub.AddrA,
			Egress:    key,
		})
	}
	half := topo.K / 2
	for _, member := range uplinks(half, strategy) {
		key := topology.AggregationCoreKey(topo.CoreLinkCounter(n.Index, member, n.Pod))
		sub, err := plan.Subnet(key)
		if err != nil {
			return nil, err
		}
		for pod := 0; pod < topo.PodCount; pod++ {
			if pod == n.Pod {
				continue
			}
			entries = append(entries, Entry{
				Prefix:    fmt.Sprintf("10.%d.0.0", pod),
				PrefixLen: 16,
				NextHop:   sub.AddrB,
				Egress:    key,
			})
		}
	}
	return entries, nil
}

// coreEntries: one /16 per pod via the pod's aggregation switch on the
// directly attached link.
func coreEntries(topo *topology.Topology, plan *addressing.Plan, n topology.NodeID) ([]Entry, error) {
	group, member := topo.CoreGroupOf(n.Index)
	var entries []Entry
	for pod := 0; pod < topo.PodCount; pod++ {
		key := topology.AggregationCoreKey(topo.CoreLinkCounter(group, member, pod))
		sub, err := plan.Subnet(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Prefix:    fmt.Sprintf("10.%d.0.0", pod),
			PrefixLen: 16,
			NextHop:   sub.AddrA,
			Egress:    key,
		})
	}
	return entries, nil
}

// uplinks returns the uplink indices a strategy uses out of n equal-cost
// choices: just the first for single-path, all of them for ECMP.
func uplinks(n int, strategy Strategy) []int {
	if strategy == SinglePath {
		return []int{0}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// checkAmbiguity enforces the table invariant: no two entries with the
// same prefix and length may name different next hops, except under
// the equal-cost strategy where such entries form an ECMP group.
func checkAmbiguity(t *Table, strategy Strategy) error {
	if strategy == MultiPathEqualCost {
		return nil
	}
	seen := make(map[string]string, len(t.Entries))
	for _, e := range t.Entries {
		cidr := e.CIDR()
		if prev, ok := seen[cidr]; ok && prev != e.NextHop {
			return fmt.Errorf("%s: ambiguous entries for %s (%s vs %s): %w",
				t.Node, cidr, prev, e.NextHop, util.ErrValidationFailed)
		}
		seen[cidr] = e.NextHop
	}
	return nil
}
