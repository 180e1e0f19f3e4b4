package provision

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
)

// PlanDocument is the YAML export of a complete fabric plan: every
// link with its /30 assignment and every node's route entries, in
// canonical order.
type PlanDocument struct {
	Version  string         `yaml:"version"`
	K        int            `yaml:"k"`
	Strategy string         `yaml:"strategy"`
	Links    []LinkDocument `yaml:"links"`
	Nodes    []NodeDocument `yaml:"nodes"`
}

// LinkDocument is one link's export record.
type LinkDocument struct {
	ID     int    `yaml:"id"`
	Tier   string `yaml:"tier"`
	A      string `yaml:"a"`
	B      string `yaml:"b"`
	Subnet string `yaml:"subnet"`
	AAddr  string `yaml:"a_addr"`
	BAddr  string `yaml:"b_addr"`
}

// NodeDocument is one node's route export record.
type NodeDocument struct {
	Node   string          `yaml:"node"`
	Routes []RouteDocument `yaml:"routes,omitempty"`
}

// RouteDocument is one route entry's export record.
type RouteDocument struct {
	Prefix  string `yaml:"prefix"`
	NextHop string `yaml:"nexthop"`
	Egress  string `yaml:"egress"`
}

// BuildDocument assembles the export document from a computed plan.
func BuildDocument(topo *topology.Topology, plan *addressing.Plan, tables *routing.Tables) (*PlanDocument, error) {
	doc := &PlanDocument{
		Version:  "1.0",
		K:        topo.K,
		Strategy: string(tables.Strategy),
	}

	for _, link := range topo.Links {
		sub, err := plan.Subnet(link.Key)
		if err != nil {
			return nil, err
		}
		doc.Links = append(doc.Links, LinkDocument{
			ID:     link.Ordinal,
			Tier:   link.Kind().String(),
			A:      link.A.String(),
			B:      link.B.String(),
			Subnet: sub.CIDR(),
			AAddr:  sub.AddrA,
			BAddr:  sub.AddrB,
		})
	}

	for _, node := range topo.Nodes() {
		table, ok := tables.Table(node)
		if !ok {
			return nil, fmt.Errorf("no routing table for %s", node)
		}
		nd := NodeDocument{Node: node.String()}
		for _, e := range table.Entries {
			nd.Routes = append(nd.Routes, RouteDocument{
				Prefix:  e.CIDR(),
				NextHop: e.NextHop,
				Egress:  e.Egress.String(),
			})
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc, nil
}

// WriteYAML encodes the document to w.
func (d *PlanDocument) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding plan document: %w", err)
	}
	return enc.Close()
}
