package addressing

import (
	"fmt"
	"net"

	"github.com/closgen/closgen/pkg/topology"
)

// Decode recovers a link's structured identity from any address inside
// its assigned /30 block, inverting the closed-form numbering scheme.
// It is the round-trip counterpart of Allocate and shares no state
// with it.
func Decode(topo *topology.Topology, addr string) (topology.LinkKey, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return topology.LinkKey{}, fmt.Errorf("invalid IPv4 address: %s", addr)
	}
	ip = ip.To4()
	if ip == nil {
		return topology.LinkKey{}, fmt.Errorf("not an IPv4 address: %s", addr)
	}
	if ip[0] != 10 {
		return topology.LinkKey{}, fmt.Errorf("address %s outside the 10.0.0.0/8 fabric space", addr)
	}

	half := topo.K / 2
	o2, o3, o4 := int(ip[1]), int(ip[2]), int(ip[3])
	block := o4 &^ 3 // strip host bits of the /30

	if o2 == coreSecondOctet {
		counter := o3*64 + block/4
		if counter >= topo.CoreGroups*half*topo.PodCount {
			return topology.LinkKey{}, fmt.Errorf("address %s beyond core-link range", addr)
		}
		return topology.AggregationCoreKey(counter), nil
	}

	pod := o2
	if pod >= topo.PodCount {
		return topology.LinkKey{}, fmt.Errorf("address %s names pod %d of %d", addr, pod, topo.PodCount)
	}

	if o3 < half {
		// Server-access tier: third octet is the access index, fourth
		// octet encodes the per-pod server index.
		server := block / 4
		if server >= topo.ServersPerPod || topo.AccessOfServer(server) != o3 {
			return topology.LinkKey{}, fmt.Errorf("address %s does not match a server-access block", addr)
		}
		return topology.ServerAccessKey(pod, server), nil
	}

	up := o3 - half
	if up >= half {
		return topology.LinkKey{}, fmt.Errorf("address %s names no switch tier", addr)
	}
	reserved := half * half * 4
	if block < reserved {
		return topology.LinkKey{}, fmt.Errorf("address %s below the access-aggregation offset", addr)
	}
	linkIdx := (block - reserved) / 4
	lo := linkIdx / half
	if lo >= half || linkIdx%half != up {
		return topology.LinkKey{}, fmt.Errorf("address %s does not match an access-aggregation block", addr)
	}
	return topology.AccessAggregationKey(pod, lo, up), nil
}
