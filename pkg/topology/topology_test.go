package topology

import (
	"errors"
	"testing"

	"github.com/closgen/closgen/pkg/util"
)

func TestNewInvalidDegree(t *testing.T) {
	for _, k := range []int{-4, 0, 1, 3, 7} {
		_, err := New(k)
		if err == nil {
			t.Errorf("New(%d) succeeded, want error", k)
			continue
		}
		if !errors.Is(err, util.ErrInvalidTopology) {
			t.Errorf("New(%d) error = %v, want ErrInvalidTopology", k, err)
		}
	}
}

func TestDerivedCounts(t *testing.T) {
	tests := []struct {
		k          int
		serversPod int
		cores      int
		links      int
	}{
		{2, 1, 1, 6},
		{4, 4, 4, 48},
		{8, 16, 16, 384},
	}
	for _, tt := range tests {
		topo, err := New(tt.k)
		if err != nil {
			t.Fatalf("New(%d): %v", tt.k, err)
		}
		if topo.ServersPerPod != tt.serversPod {
			t.Errorf("k=%d: ServersPerPod = %d, want %d", tt.k, topo.ServersPerPod, tt.serversPod)
		}
		if topo.CoreCount != tt.cores {
			t.Errorf("k=%d: CoreCount = %d, want %d", tt.k, topo.CoreCount, tt.cores)
		}
		if len(topo.Links) != tt.links {
			t.Errorf("k=%d: %d links, want %d", tt.k, len(topo.Links), tt.links)
		}
		if got := topo.NodeCount(); got != tt.k*(tt.serversPod+tt.k) + tt.cores {
			t.Errorf("k=%d: NodeCount = %d", tt.k, got)
		}
	}
}

func TestEnumerationOrder(t *testing.T) {
	topo, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	// Tier boundaries: per pod 4 server-access then 4 access-aggregation
	// links, core links last.
	if got := topo.Links[0].Key; got != ServerAccessKey(0, 0) {
		t.Errorf("link 0 = %v, want pod0 server0", got)
	}
	if got := topo.Links[4].Key; got != AccessAggregationKey(0, 0, 0) {
		t.Errorf("link 4 = %v, want pod0 access0-aggregation0", got)
	}
	if got := topo.Links[8].Key; got != ServerAccessKey(1, 0) {
		t.Errorf("link 8 = %v, want pod1 server0", got)
	}
	if got := topo.Links[32].Key; got != AggregationCoreKey(0) {
		t.Errorf("link 32 = %v, want corelink0", got)
	}

	// Core tier iterates pod fastest, then member, then group.
	if got := topo.Links[33].Key; got != AggregationCoreKey(1) {
		t.Errorf("link 33 = %v, want corelink1", got)
	}
	link, ok := topo.Link(AggregationCoreKey(4))
	if !ok {
		t.Fatal("corelink4 not enumerated")
	}
	// counter 4 = group 0, member 1, pod 0: aggregation0 of pod0 to core1
	wantA := NodeID{Kind: NodeAggregation, Pod: 0, Index: 0}
	wantB := NodeID{Kind: NodeCore, Pod: -1, Index: 1}
	if link.A != wantA || link.B != wantB {
		t.Errorf("corelink4 = %v<->%v, want %v<->%v", link.A, link.B, wantA, wantB)
	}
}

func TestServerAccessAttachment(t *testing.T) {
	topo, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	// accessIndex = server / (k/2)
	for server, access := range map[int]int{0: 0, 1: 0, 2: 1, 3: 1} {
		if got := topo.AccessOfServer(server); got != access {
			t.Errorf("AccessOfServer(%d) = %d, want %d", server, got, access)
		}
		link, ok := topo.Link(ServerAccessKey(0, server))
		if !ok {
			t.Fatalf("no link for pod0 server%d", server)
		}
		if link.B.Index != access {
			t.Errorf("server%d uplinks to access%d, want access%d", server, link.B.Index, access)
		}
	}
}

func TestNodeOrdinals(t *testing.T) {
	topo, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	nodes := topo.Nodes()
	if len(nodes) != topo.NodeCount() {
		t.Fatalf("Nodes() returned %d nodes, want %d", len(nodes), topo.NodeCount())
	}
	seen := make(map[int]bool, len(nodes))
	for i, n := range nodes {
		ord := topo.NodeOrdinal(n)
		if ord != i {
			t.Errorf("node %v at position %d has ordinal %d", n, i, ord)
		}
		if seen[ord] {
			t.Errorf("duplicate ordinal %d", ord)
		}
		seen[ord] = true
	}
}

func TestCoreLinkCounter(t *testing.T) {
	topo, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	// Counter increments per (group, member, pod) in enumeration order.
	want := 0
	for group := 0; group < topo.CoreGroups; group++ {
		for member := 0; member < topo.K/2; member++ {
			for pod := 0; pod < topo.PodCount; pod++ {
				if got := topo.CoreLinkCounter(group, member, pod); got != want {
					t.Fatalf("CoreLinkCounter(%d,%d,%d) = %d, want %d", group, member, pod, got, want)
				}
				link, ok := topo.AggregationCoreLink(group, member, pod)
				if !ok {
					t.Fatalf("no link for counter %d", want)
				}
				if link.A.Pod != pod || link.A.Index != group {
					t.Errorf("counter %d attaches %v, want pod%d aggregation%d", want, link.A, pod, group)
				}
				want++
			}
		}
	}
}
