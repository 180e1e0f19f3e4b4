// Package addressing assigns a disjoint /30 block to every fabric link
// using a closed-form function of the link's tier-specific indices.
// Allocation is a pure function of the topology's link enumeration:
// the same degree always yields bit-identical assignments.
package addressing

import (
	"fmt"

	"github.com/closgen/closgen/pkg/topology"
	"github.com/closgen/closgen/pkg/util"
)

// PrefixLen is the fixed point-to-point prefix length for every link.
const PrefixLen = 30

// coreSecondOctet marks the aggregation-core tier; pod-numbered tiers
// must stay below it, which bounds the scheme to k <= 10.
const coreSecondOctet = 10

// LinkSubnet is one link's /30 assignment. AddrA and AddrB are the two
// usable addresses, in the link's endpoint enumeration order: the
// lower-tier endpoint gets AddrA (.1), the upper-tier endpoint AddrB (.2).
type LinkSubnet struct {
	Key     topology.LinkKey
	Network string
	AddrA   string
	AddrB   string
}

// CIDR returns the block in prefix notation, e.g. "10.0.1.8/30".
func (s LinkSubnet) CIDR() string {
	return fmt.Sprintf("%s/%d", s.Network, PrefixLen)
}

// Plan holds the complete address assignment for a fabric.
type Plan struct {
	Subnets []LinkSubnet // enumeration order

	byKey  map[topology.LinkKey]int
	byAddr map[string]addrOwner
}

type addrOwner struct {
	key  topology.LinkKey
	node topology.NodeID
}

// Allocate computes the /30 plan for every enumerated link. It fails
// with AddressSpaceExhausted when a tier's numbering overflows an
// octet and with DuplicateSubnetAssignment if two links ever map to
// the same block (an allocator defect, checked anyway).
func Allocate(topo *topology.Topology) (*Plan, error) {
	p := &Plan{
		Subnets: make([]LinkSubnet, 0, len(topo.Links)),
		byKey:   make(map[topology.LinkKey]int, len(topo.Links)),
		byAddr:  make(map[string]addrOwner, 2*len(topo.Links)),
	}
	seen := make(map[string]topology.LinkKey, len(topo.Links))

	for _, link := range topo.Links {
		network, err := subnetFor(topo, link.Key)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[network]; dup {
			return nil, util.NewDuplicateSubnetError(network, first.String(), link.Key.String())
		}
		seen[network] = link.Key

		// Usable addresses are network+1 and its /30 neighbor.
		base, err := util.IPv4ToUint32(network)
		if err != nil {
			return nil, fmt.Errorf("allocating %s: %w", link.Key, err)
		}
		addrA := util.Uint32ToIPv4(base + 1)
		sub := LinkSubnet{
			Key:     link.Key,
			Network: network,
			AddrA:   addrA,
			AddrB:   util.ComputeNeighborIP(addrA, PrefixLen),
		}

		p.byKey[link.Key] = len(p.Subnets)
		p.Subnets = append(p.Subnets, sub)
		p.byAddr[sub.AddrA] = addrOwner{key: link.Key, node: link.A}
		p.byAddr[sub.AddrB] = addrOwner{key: link.Key, node: link.B}
	}
	return p, nil
}

// subnetFor is the closed-form numbering scheme:
//
//	server-access:       10.pod.access.(server*4)
//	access-aggregation:  10.pod.(k/2+up).(reserved + (lo*(k/2)+up)*4)
//	aggregation-core:    10.10.(counter/64).((counter%64)*4)
//
// where reserved = (k/2)^2*4 sits above the largest server-access
// fourth octet, keeping the two in-pod tiers disjoint.
func subnetFor(topo *topology.Topology, key topology.LinkKey) (string, error) {
	half := topo.K / 2

	switch key.Kind {
	case topology.LinkServerAccess:
		if key.Pod >= coreSecondOctet {
			return "", util.NewAddressSpaceError("pod", key.Pod)
		}
		offset := key.A * 4
		if offset > 255 {
			return "", util.NewAddressSpaceError("server-access", key.A)
		}
		return fmt.Sprintf("10.%d.%d.%d", key.Pod, topo.AccessOfServer(key.A), offset), nil

	case topology.LinkAccessAggregation:
		if key.Pod >= coreSecondOctet {
			return "", util.NewAddressSpaceError("pod", key.Pod)
		}
		reserved := half * half * 4
		linkIdx := key.A*half + key.B
		offset := reserved + linkIdx*4
		if offset > 255 {
			return "", util.NewAddressSpaceError("access-aggregation", linkIdx)
		}
		return fmt.Sprintf("10.%d.%d.%d", key.Pod, half+key.B, offset), nil

	case topology.LinkAggregationCore:
		counter := key.A
		// 64 blocks of 4 addresses per third-octet bucket; the bucket
		// index itself overflowing an octet is fatal, not wrapped.
		if counter/64 > 255 {
			return "", util.NewAddressSpaceError("aggregation-core", counter)
		}
		return fmt.Sprintf("10.%d.%d.%d", coreSecondOctet, counter/64, (counter%64)*4), nil
	}
	return "", util.NewMissingLinkError(key.String())
}

// Subnet returns a link's assignment, failing with MissingLinkMapping
// when the key was never allocated. Callers rely on this to surface
// identity mismatches instead of forwarding through garbage next hops.
func (p *Plan) Subnet(key topology.LinkKey) (LinkSubnet, error) {
	i, ok := p.byKey[key]
	if !ok {
		return LinkSubnet{}, util.NewMissingLinkError(key.String())
	}
	return p.Subnets[i], nil
}

// Owner returns the node holding an assigned usable address.
func (p *Plan) Owner(addr string) (topology.NodeID, bool) {
	o, ok := p.byAddr[addr]
	return o.node, ok
}

// OwningLink returns the link an assigned usable address belongs to.
func (p *Plan) OwningLink(addr string) (topology.LinkKey, bool) {
	o, ok := p.byAddr[addr]
	return o.key, ok
}
