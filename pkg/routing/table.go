// Package routing synthesizes per-node aggregated static routing
// tables implementing two-phase (upward then downward) forwarding
// over a fat-tree fabric.
package routing

import (
	"fmt"

	"github.com/closgen/closgen/pkg/topology"
	"github.com/closgen/closgen/pkg/util"
)

// Entry is one installed route: traffic to Prefix/PrefixLen leaves via
// the Egress link toward NextHop. NextHop is always the address of the
// far end of a link directly attached to the owning node.
type Entry struct {
	Prefix    string
	PrefixLen int
	NextHop   string
	Egress    topology.LinkKey
}

// CIDR returns the destination in prefix notation.
func (e Entry) CIDR() string {
	return fmt.Sprintf("%s/%d", e.Prefix, e.PrefixLen)
}

// Table is one node's ordered route list. Longest-prefix match applies
// at lookup; insertion order only breaks ties between equal prefixes,
// which single-path synthesis never produces.
type Table struct {
	Node    topology.NodeID
	Entries []Entry
}

// Lookup returns the longest-prefix-match entry for a destination
// address. Among equal-length matches the earliest entry wins.
func (t *Table) Lookup(addr string) (Entry, bool) {
	dst, err := util.IPv4ToUint32(addr)
	if err != nil {
		return Entry{}, false
	}
	best := -1
	var hit Entry
	for _, e := range t.Entries {
		pfx, err := util.IPv4ToUint32(e.Prefix)
		if err != nil {
			continue
		}
		mask := util.PrefixMask(e.PrefixLen)
		if dst&mask == pfx&mask && e.PrefixLen > best {
			best = e.PrefixLen
			hit = e
		}
	}
	return hit, best >= 0
}

// LookupAll returns every entry tied at the best match length, in
// insertion order. Under the equal-cost strategy these form the ECMP
// group for the destination.
func (t *Table) LookupAll(addr string) []Entry {
	hit, ok := t.Lookup(addr)
	if !ok {
		return nil
	}
	var group []Entry
	dst, _ := util.IPv4ToUint32(addr)
	for _, e := range t.Entries {
		if e.PrefixLen != hit.PrefixLen {
			continue
		}
		pfx, err := util.IPv4ToUint32(e.Prefix)
		if err != nil {
			continue
		}
		mask := util.PrefixMask(e.PrefixLen)
		if dst&mask == pfx&mask {
			group = append(group, e)
		}
	}
	return group
}

// Tables holds every node's routing table for one synthesis pass.
type Tables struct {
	Strategy Strategy
	Nodes    []Table // canonical node order

	byNode map[topology.NodeID]int
}

// Table returns the routing table for a node.
func (ts *Tables) Table(n topology.NodeID) (*Table, bool) {
	i, ok := ts.byNode[n]
	if !ok {
		return nil, false
	}
	return &ts.Nodes[i], true
}

// EntryCount returns the total number of entries across all tables.
func (ts *Tables) EntryCount() int {
	n := 0
	for i := range ts.Nodes {
		n += len(ts.Nodes[i].Entries)
	}
	return n
}
