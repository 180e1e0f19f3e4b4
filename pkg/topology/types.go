package topology

import "fmt"

// NodeKind distinguishes the four node roles in the fabric.
type NodeKind uint8

const (
	NodeServer NodeKind = iota
	NodeAccess
	NodeAggregation
	NodeCore
)

func (k NodeKind) String() string {
	switch k {
	case NodeServer:
		return "server"
	case NodeAccess:
		return "access"
	case NodeAggregation:
		return "aggregation"
	case NodeCore:
		return "core"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// NodeID identifies a node. Pod is -1 for core switches; for the other
// kinds Index is the node's position within its pod and tier.
type NodeID struct {
	Kind  NodeKind
	Pod   int
	Index int
}

func (n NodeID) String() string {
	if n.Kind == NodeCore {
		return fmt.Sprintf("core%d", n.Index)
	}
	return fmt.Sprintf("pod%d/%s%d", n.Pod, n.Kind, n.Index)
}

// LinkKind distinguishes the three link tiers.
type LinkKind uint8

const (
	LinkServerAccess LinkKind = iota
	LinkAccessAggregation
	LinkAggregationCore
)

func (k LinkKind) String() string {
	switch k {
	case LinkServerAccess:
		return "server-access"
	case LinkAccessAggregation:
		return "access-aggregation"
	case LinkAggregationCore:
		return "aggregation-core"
	}
	return fmt.Sprintf("LinkKind(%d)", uint8(k))
}

// LinkKey is the structured composite identity of a link. It is a
// comparable value used directly as a map key, so identity construction
// cannot drift between the allocation and lookup sites. Field meaning
// depends on Kind:
//
//	LinkServerAccess:      Pod, A=server index         (B unused)
//	LinkAccessAggregation: Pod, A=access, B=aggregation
//	LinkAggregationCore:   A=global core-link counter  (Pod, B unused)
type LinkKey struct {
	Kind LinkKind
	Pod  int
	A, B int
}

// ServerAccessKey identifies the link between a server and its access switch.
func ServerAccessKey(pod, server int) LinkKey {
	return LinkKey{Kind: LinkServerAccess, Pod: pod, A: server}
}

// AccessAggregationKey identifies an intra-pod access-aggregation link.
func AccessAggregationKey(pod, access, aggregation int) LinkKey {
	return LinkKey{Kind: LinkAccessAggregation, Pod: pod, A: access, B: aggregation}
}

// AggregationCoreKey identifies an aggregation-core link by the global
// core-link counter.
func AggregationCoreKey(counter int) LinkKey {
	return LinkKey{Kind: LinkAggregationCore, Pod: -1, A: counter}
}

func (k LinkKey) String() string {
	switch k.Kind {
	case LinkServerAccess:
		return fmt.Sprintf("pod%d/server%d-access", k.Pod, k.A)
	case LinkAccessAggregation:
		return fmt.Sprintf("pod%d/access%d-aggregation%d", k.Pod, k.A, k.B)
	default:
		return fmt.Sprintf("corelink%d", k.A)
	}
}

// Link is one enumerated link. A is always the lower-tier endpoint
// (server, access, or aggregation) and receives the first usable
// address of the link's /30 block.
type Link struct {
	Ordinal int
	Key     LinkKey
	A, B    NodeID
}

// Kind returns the link's tier.
func (l Link) Kind() LinkKind {
	return l.Key.Kind
}

func (l Link) String() string {
	return fmt.Sprintf("%s<->%s", l.A, l.B)
}
