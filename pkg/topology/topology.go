// Package topology describes a k-ary fat-tree fabric: node identities,
// derived tier counts, and the canonical link enumeration every
// downstream stage numbers from.
package topology

import (
	"github.com/closgen/closgen/pkg/util"
)

// Topology is the immutable descriptor of a fat-tree fabric of degree K.
// It is built once by New and never mutated; the Links slice order is
// the single source of truth for link numbering.
type Topology struct {
	K int

	PodCount          int // k
	AccessPerPod      int // k/2
	AggregationPerPod int // k/2
	ServersPerPod     int // (k/2)^2
	CoreCount         int // (k/2)^2
	CoreGroups        int // k/2 groups of k/2 core switches

	Links []Link

	linkIndex map[LinkKey]int
}

// New validates k and enumerates the fabric. The only error is an
// invalid degree: k must be even and at least 2.
func New(k int) (*Topology, error) {
	if k < 2 {
		return nil, util.NewTopologyParameterError(k, "must be at least 2")
	}
	if k%2 != 0 {
		return nil, util.NewTopologyParameterError(k, "must be even")
	}

	half := k / 2
	t := &Topology{
		K:                 k,
		PodCount:          k,
		AccessPerPod:      half,
		AggregationPerPod: half,
		ServersPerPod:     half * half,
		CoreCount:         half * half,
		CoreGroups:        half,
	}
	t.enumerate()
	return t, nil
}

// enumerate builds the canonical link list:
//
//  1. per-pod server-access links, by pod then server index
//  2. per-pod access-aggregation links, by pod, access, aggregation
//     (full bipartite mesh within the pod)
//  3. aggregation-core links, by core group, core within group, pod;
//     a single global counter spans this tier
func (t *Topology) enumerate() {
	half := t.K / 2
	t.linkIndex = make(map[LinkKey]int)

	add := func(key LinkKey, a, b NodeID) {
		t.linkIndex[key] = len(t.Links)
		t.Links = append(t.Links, Link{Ordinal: len(t.Links), Key: key, A: a, B: b})
	}

	for pod := 0; pod < t.PodCount; pod++ {
		for server := 0; server < t.ServersPerPod; server++ {
			access := server / half
			add(ServerAccessKey(pod, server),
				NodeID{Kind: NodeServer, Pod: pod, Index: server},
				NodeID{Kind: NodeAccess, Pod: pod, Index: access})
		}
		for lo := 0; lo < t.AccessPerPod; lo++ {
			for up := 0; up < t.AggregationPerPod; up++ {
				add(AccessAggregationKey(pod, lo, up),
					NodeID{Kind: NodeAccess, Pod: pod, Index: lo},
					NodeID{Kind: NodeAggregation, Pod: pod, Index: up})
			}
		}
	}

	coreLink := 0
	for group := 0; group < t.CoreGroups; group++ {
		for member := 0; member < half; member++ {
			core := group*half + member
			for pod := 0; pod < t.PodCount; pod++ {
				add(AggregationCoreKey(coreLink),
					NodeID{Kind: NodeAggregation, Pod: pod, Index: group},
					NodeID{Kind: NodeCore, Pod: -1, Index: core})
				coreLink++
			}
		}
	}
}

// Link returns the enumerated link for a structured key.
func (t *Topology) Link(key LinkKey) (Link, bool) {
	i, ok := t.linkIndex[key]
	if !ok {
		return Link{}, false
	}
	return t.Links[i], true
}

// AccessOfServer returns the access switch index a server uplinks to.
func (t *Topology) AccessOfServer(server int) int {
	return server / (t.K / 2)
}

// CoreLinkCounter returns the global core-link counter value for the
// link between pod's aggregation switch `group` and core switch
// `group*(k/2)+member`. Centralizing this keeps the counter arithmetic
// identical at allocation and lookup sites.
func (t *Topology) CoreLinkCounter(group, member, pod int) int {
	half := t.K / 2
	return (group*half+member)*t.PodCount + pod
}

// AggregationCoreLink returns the link between pod's aggregation switch
// `group` and the member'th core switch of that group.
func (t *Topology) AggregationCoreLink(group, member, pod int) (Link, bool) {
	return t.Link(AggregationCoreKey(t.CoreLinkCounter(group, member, pod)))
}

// CoreGroupOf returns the group index and member index of a core switch.
func (t *Topology) CoreGroupOf(core int) (group, member int) {
	half := t.K / 2
	return core / half, core % half
}

// podStride is the node count per pod: servers + access + aggregation.
func (t *Topology) podStride() int {
	return t.ServersPerPod + t.AccessPerPod + t.AggregationPerPod
}

// NodeCount returns the total number of nodes in the fabric.
func (t *Topology) NodeCount() int {
	return t.PodCount*t.podStride() + t.CoreCount
}

// NodeOrdinal maps a node identity to its stable global ordinal:
// pods in order (servers, then access, then aggregation), cores last.
func (t *Topology) NodeOrdinal(n NodeID) int {
	switch n.Kind {
	case NodeServer:
		return n.Pod*t.podStride() + n.Index
	case NodeAccess:
		return n.Pod*t.podStride() + t.ServersPerPod + n.Index
	case NodeAggregation:
		return n.Pod*t.podStride() + t.ServersPerPod + t.AccessPerPod + n.Index
	default:
		return t.PodCount*t.podStride() + n.Index
	}
}

// Nodes returns every node identity in ordinal order.
func (t *Topology) Nodes() []NodeID {
	nodes := make([]NodeID, 0, t.NodeCount())
	for pod := 0; pod < t.PodCount; pod++ {
		for i := 0; i < t.ServersPerPod; i++ {
			nodes = append(nodes, NodeID{Kind: NodeServer, Pod: pod, Index: i})
		}
		for i := 0; i < t.AccessPerPod; i++ {
			nodes = append(nodes, NodeID{Kind: NodeAccess, Pod: pod, Index: i})
		}
		for i := 0; i < t.AggregationPerPod; i++ {
			nodes = append(nodes, NodeID{Kind: NodeAggregation, Pod: pod, Index: i})
		}
	}
	for i := 0; i < t.CoreCount; i++ {
		nodes = append(nodes, NodeID{Kind: NodeCore, Pod: -1, Index: i})
	}
	return nodes
}
