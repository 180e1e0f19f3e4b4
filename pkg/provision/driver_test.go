package provision

import (
	"errors"
	"strings"
	"testing"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
)

func mustPipeline(t *testing.T, k int) (*topology.Topology, *addressing.Plan, *routing.Tables) {
	t.Helper()
	topo, err := topology.New(k)
	if err != nil {
		t.Fatalf("New(%d): %v", k, err)
	}
	plan, err := addressing.Allocate(topo)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	tables, err := routing.Synthesize(topo, plan, routing.SinglePath)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return topo, plan, tables
}

func TestProvisionRecorder(t *testing.T) {
	topo, plan, tables := mustPipeline(t, 4)

	rec := &Recorder{}
	if err := NewDriver(rec).Provision(topo, plan, tables); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if len(rec.Links) != len(topo.Links) {
		t.Errorf("created %d links, want %d", len(rec.Links), len(topo.Links))
	}
	if len(rec.Addrs) != 2*len(topo.Links) {
		t.Errorf("assigned %d addresses, want %d", len(rec.Addrs), 2*len(topo.Links))
	}
	if len(rec.Routes) != tables.EntryCount() {
		t.Errorf("installed %d routes, want %d", len(rec.Routes), tables.EntryCount())
	}

	// Links arrive in enumeration order with endpoints in tier order.
	for i, link := range topo.Links {
		if rec.Links[i].A != link.A || rec.Links[i].B != link.B {
			t.Fatalf("link %d = %v<->%v, want %v<->%v", i, rec.Links[i].A, rec.Links[i].B, link.A, link.B)
		}
	}

	// Both endpoint addresses for each link, A first.
	first, second := rec.Addrs[0], rec.Addrs[1]
	if first.Addr != "10.0.0.1" || first.Endpoint != 0 || first.PrefixLen != addressing.PrefixLen {
		t.Errorf("first assignment = %+v, want 10.0.0.1/30 on endpoint 0", first)
	}
	if second.Addr != "10.0.0.2" || second.Endpoint != 1 {
		t.Errorf("second assignment = %+v, want 10.0.0.2 on endpoint 1", second)
	}

	// Routes arrive grouped by node in canonical order.
	if rec.Routes[0].Node != (topology.NodeID{Kind: topology.NodeServer, Pod: 0, Index: 0}) {
		t.Errorf("first route installed on %v, want pod0/server0", rec.Routes[0].Node)
	}
}

// failingRuntime errors on the nth CreateLink call.
type failingRuntime struct {
	Recorder
	failAt int
	calls  int
}

func (f *failingRuntime) CreateLink(a, b topology.NodeID) (int, error) {
	f.calls++
	if f.calls == f.failAt {
		return 0, errors.New("backend unavailable")
	}
	return f.Recorder.CreateLink(a, b)
}

func TestProvisionAbortsOnError(t *testing.T) {
	topo, plan, tables := mustPipeline(t, 4)

	rt := &failingRuntime{failAt: 3}
	err := NewDriver(rt).Provision(topo, plan, tables)
	if err == nil {
		t.Fatal("Provision succeeded despite runtime failure")
	}
	if !strings.Contains(err.Error(), "backend unavailable") {
		t.Errorf("error = %v, want wrapped backend error", err)
	}
	if len(rt.Routes) != 0 {
		t.Errorf("%d routes installed after link failure, want 0", len(rt.Routes))
	}
}

func TestBuildDocument(t *testing.T) {
	topo, plan, tables := mustPipeline(t, 2)

	doc, err := BuildDocument(topo, plan, tables)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.K != 2 || doc.Strategy != string(routing.SinglePath) {
		t.Errorf("doc header = k%d/%s", doc.K, doc.Strategy)
	}
	if len(doc.Links) != len(topo.Links) {
		t.Errorf("%d link documents, want %d", len(doc.Links), len(topo.Links))
	}
	if len(doc.Nodes) != topo.NodeCount() {
		t.Errorf("%d node documents, want %d", len(doc.Nodes), topo.NodeCount())
	}
	if doc.Links[0].Subnet != "10.0.0.0/30" {
		t.Errorf("first link subnet = %s, want 10.0.0.0/30", doc.Links[0].Subnet)
	}

	var buf strings.Builder
	if err := doc.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "10.0.0.0/30") {
		t.Error("YAML output missing link subnet")
	}
}
