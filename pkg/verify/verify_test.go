package verify

import (
	"strings"
	"testing"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
)

func mustPipeline(t *testing.T, k int, strategy routing.Strategy) (*topology.Topology, *addressing.Plan, *routing.Tables) {
	t.Helper()
	topo, err := topology.New(k)
	if err != nil {
		t.Fatalf("New(%d): %v", k, err)
	}
	plan, err := addressing.Allocate(topo)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	tables, err := routing.Synthesize(topo, plan, strategy)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return topo, plan, tables
}

func server(pod, idx int) topology.NodeID {
	return topology.NodeID{Kind: topology.NodeServer, Pod: pod, Index: idx}
}

func TestCheckPlan(t *testing.T) {
	for _, k := range []int{2, 4, 6} {
		for _, strategy := range []routing.Strategy{routing.SinglePath, routing.MultiPathEqualCost} {
			topo, plan, tables := mustPipeline(t, k, strategy)
			if err := CheckPlan(topo, plan, tables); err != nil {
				t.Errorf("k=%d %s: %v", k, strategy, err)
			}
		}
	}
}

func TestCrossPodWalk(t *testing.T) {
	// 10.1.0.1 -> 10.0.0.1 must traverse access, aggregation, core,
	// aggregation, access, matching /16 aggregates on the upward and
	// core stages and narrower entries only inside the destination pod.
	topo, plan, tables := mustPipeline(t, 4, routing.SinglePath)

	hops, err := Walk(topo, plan, tables, server(1, 0), server(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	wantKinds := []topology.NodeKind{
		topology.NodeServer,
		topology.NodeAccess,
		topology.NodeAggregation,
		topology.NodeCore,
		topology.NodeAggregation,
		topology.NodeAccess,
	}
	if len(hops) != len(wantKinds) {
		t.Fatalf("walk took %d hops, want %d", len(hops), len(wantKinds))
	}
	wantPrefixLens := []int{0, 16, 16, 16, 24, 30}
	for i, hop := range hops {
		if hop.Node.Kind != wantKinds[i] {
			t.Errorf("hop %d at %v, want kind %v", i, hop.Node, wantKinds[i])
		}
		if hop.Entry.PrefixLen != wantPrefixLens[i] {
			t.Errorf("hop %d (%v) matched /%d, want /%d", i, hop.Node, hop.Entry.PrefixLen, wantPrefixLens[i])
		}
	}
}

func TestSamePodWalk(t *testing.T) {
	topo, plan, tables := mustPipeline(t, 4, routing.SinglePath)

	// Different access switches in one pod: three intermediate switches.
	hops, err := Walk(topo, plan, tables, server(0, 0), server(0, 2))
	if err != nil {
		t.Fatal(err)
	}
	if switches := len(hops) - 1; switches != 3 {
		t.Errorf("same-pod cross-access walk used %d switches, want 3", switches)
	}

	// Shared access switch: a single switch hop.
	hops, err = Walk(topo, plan, tables, server(0, 0), server(0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if switches := len(hops) - 1; switches != 1 {
		t.Errorf("same-access walk used %d switches, want 1", switches)
	}
}

func TestWalkRejectsMismatchedTables(t *testing.T) {
	// Tables from one strategy run paired with a plan missing those
	// links cannot silently forward; build the mismatch by crossing
	// two degrees.
	topo4, plan4, _ := mustPipeline(t, 4, routing.SinglePath)
	_, _, tables2 := mustPipeline(t, 2, routing.SinglePath)

	_, err := Walk(topo4, plan4, tables2, server(1, 0), server(0, 0))
	if err == nil {
		t.Fatal("walk across mismatched tables succeeded")
	}
	if !strings.Contains(err.Error(), "unassigned address") {
		t.Errorf("unexpected error: %v", err)
	}
}
