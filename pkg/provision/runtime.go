// Package provision drives a network runtime with a computed fabric
// plan: it creates links, assigns the planned /30 endpoint addresses,
// and installs the synthesized routes, in enumeration order.
package provision

import (
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
)

// Runtime is the collaborator interface the planner drives. The three
// primitives are the full extent of what the core needs from a
// simulation or device runtime; it implements none of them itself.
//
// Endpoint indices passed to AssignAddress follow CreateLink argument
// order: 0 for a, 1 for b.
type Runtime interface {
	CreateLink(a, b topology.NodeID) (linkID int, err error)
	AssignAddress(linkID int, endpoint int, addr string, prefixLen int) error
	InstallRoute(node topology.NodeID, entry routing.Entry) error
}

// LinkRecord is one captured CreateLink call.
type LinkRecord struct {
	ID   int
	A, B topology.NodeID
}

// AddrRecord is one captured AssignAddress call.
type AddrRecord struct {
	LinkID    int
	Endpoint  int
	Addr      string
	PrefixLen int
}

// RouteRecord is one captured InstallRoute call.
type RouteRecord struct {
	Node  topology.NodeID
	Entry routing.Entry
}

// Recorder is an in-memory Runtime capturing every call in order.
// It backs dry runs and tests.
type Recorder struct {
	Links  []LinkRecord
	Addrs  []AddrRecord
	Routes []RouteRecord
}

func (r *Recorder) CreateLink(a, b topology.NodeID) (int, error) {
	id := len(r.Links)
	r.Links = append(r.Links, LinkRecord{ID: id, A: a, B: b})
	return id, nil
}

func (r *Recorder) AssignAddress(linkID, endpoint int, addr string, prefixLen int) error {
	r.Addrs = append(r.Addrs, AddrRecord{LinkID: linkID, Endpoint: endpoint, Addr: addr, PrefixLen: prefixLen})
	return nil
}

func (r *Recorder) InstallRoute(node topology.NodeID, entry routing.Entry) error {
	r.Routes = append(r.Routes, RouteRecord{Node: node, Entry: entry})
	return nil
}
