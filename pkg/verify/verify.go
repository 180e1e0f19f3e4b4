// Package verify independently checks a computed fabric plan: it walks
// the installed routing tables for every server pair and confirms
// loop-freedom, bounded hop counts, and agreement with shortest paths
// over the topology graph.
package verify

import (
	"fmt"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
)

// Hop is one forwarding step: the node that performed the lookup and
// the entry it matched.
type Hop struct {
	Node  topology.NodeID
	Entry routing.Entry
}

// Walk follows the installed tables from src toward dst's server
// address using longest-prefix match, one lookup per node. It returns
// the hops taken (excluding the destination) and fails on a lookup
// miss, a next hop that is not directly attached, or a revisited node.
func Walk(topo *topology.Topology, plan *addressing.Plan, tables *routing.Tables, src, dst topology.NodeID) ([]Hop, error) {
	dstSub, err := plan.Subnet(topology.ServerAccessKey(dst.Pod, dst.Index))
	if err != nil {
		return nil, err
	}
	dstAddr := dstSub.AddrA

	var hops []Hop
	visited := map[topology.NodeID]bool{}
	current := src
	for current != dst {
		if visited[current] {
			return nil, fmt.Errorf("forwarding loop: %s revisited en route %s -> %s", current, src, dst)
		}
		visited[current] = true

		table, ok := tables.Table(current)
		if !ok {
			return nil, fmt.Errorf("no routing table for %s", current)
		}
		entry, ok := table.Lookup(dstAddr)
		if !ok {
			return nil, fmt.Errorf("%s has no route toward %s", current, dstAddr)
		}
		next, ok := plan.Owner(entry.NextHop)
		if !ok {
			return nil, fmt.Errorf("%s routes %s via unassigned address %s", current, dstAddr, entry.NextHop)
		}
		if link, ok := topo.Link(entry.Egress); !ok {
			return nil, fmt.Errorf("%s routes via unknown link %s", current, entry.Egress)
		} else if link.A != current && link.B != current {
			return nil, fmt.Errorf("%s routes via unattached link %s", current, entry.Egress)
		}

		hops = append(hops, Hop{Node: current, Entry: entry})
		current = next
	}
	return hops, nil
}

// CheckPlan verifies the full set of reachability properties for every
// ordered server pair:
//
//   - the walk terminates without revisiting a node
//   - intermediate switch counts stay within the two-phase bounds
//     (3 for same-pod cross-access pairs, 5 for cross-pod pairs)
//   - walk length equals the graph shortest-path distance, so the
//     static tables never take a detour
func CheckPlan(topo *topology.Topology, plan *addressing.Plan, tables *routing.Tables) error {
	g := buildGraph(topo)

	for srcPod := 0; srcPod < topo.PodCount; srcPod++ {
		for srcIdx := 0; srcIdx < topo.ServersPerPod; srcIdx++ {
			src := topology.NodeID{Kind: topology.NodeServer, Pod: srcPod, Index: srcIdx}
			shortest := path.DijkstraFrom(g.Node(int64(topo.NodeOrdinal(src))), g)

			for dstPod := 0; dstPod < topo.PodCount; dstPod++ {
				for dstIdx := 0; dstIdx < topo.ServersPerPod; dstIdx++ {
					dst := topology.NodeID{Kind: topology.NodeServer, Pod: dstPod, Index: dstIdx}
					if src == dst {
						continue
					}
					hops, err := Walk(topo, plan, tables, src, dst)
					if err != nil {
						return err
					}
					if err := checkHopBound(topo, src, dst, hops); err != nil {
						return err
					}
					_, want := shortest.To(int64(topo.NodeOrdinal(dst)))
					if got := float64(len(hops)); got != want {
						return fmt.Errorf("%s -> %s: walked %v links, shortest path is %v", src, dst, got, want)
					}
				}
			}
		}
	}
	return nil
}

// checkHopBound enforces the two-phase switch-count bounds. Hops
// exclude the destination, so intermediate switches = len(hops)-1.
func checkHopBound(topo *topology.Topology, src, dst topology.NodeID, hops []Hop) error {
	switches := len(hops) - 1
	var bound int
	switch {
	case src.Pod == dst.Pod && topo.AccessOfServer(src.Index) == topo.AccessOfServer(dst.Index):
		bound = 1 // shared access switch
	case src.Pod == dst.Pod:
		bound = 3 // access, aggregation, access
	default:
		bound = 5 // access, aggregation, core, aggregation, access
	}
	if switches > bound {
		return fmt.Errorf("%s -> %s: %d intermediate switches, bound is %d", src, dst, switches, bound)
	}
	return nil
}

// buildGraph renders the topology as an undirected gonum graph keyed
// by node ordinal.
func buildGraph(topo *topology.Topology) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for _, n := range topo.Nodes() {
		g.AddNode(simple.Node(topo.NodeOrdinal(n)))
	}
	for _, link := range topo.Links {
		u := g.Node(int64(topo.NodeOrdinal(link.A)))
		v := g.Node(int64(topo.NodeOrdinal(link.B)))
		g.SetEdge(g.NewEdge(u, v))
	}
	return g
}
