// Package l2switch implements a MAC-learning forwarding bridge: learn
// the source port, flood unknown or group destinations, unicast known
// ones. It is the runtime-independent alternative to the routed
// forwarding mode and carries no dependency on the fabric planner.
package l2switch

import (
	"fmt"
	"net"
	"time"
)

// DefaultAgingTime is how long a learned entry stays valid without
// being refreshed by new traffic from the same source.
const DefaultAgingTime = 5 * time.Minute

type learnedEntry struct {
	port int
	seen time.Time
}

// Bridge is one switch's forwarding state. It is not safe for
// concurrent use; the simulated switch owns it from a single loop.
type Bridge struct {
	name  string
	ports int
	aging time.Duration
	now   func() time.Time

	table map[string]learnedEntry
}

// NewBridge creates a bridge with numPorts ports, numbered 0..n-1.
func NewBridge(name string, numPorts int) *Bridge {
	return &Bridge{
		name:  name,
		ports: numPorts,
		aging: DefaultAgingTime,
		now:   time.Now,
		table: make(map[string]learnedEntry),
	}
}

// SetAgingTime overrides the learned-entry lifetime. Zero disables aging.
func (b *Bridge) SetAgingTime(d time.Duration) {
	b.aging = d
}

// Forward learns src on inPort and returns the egress ports for a
// frame to dst: the single learned port for a known unicast
// destination, or every port except inPort for group addresses and
// unknown destinations. A known destination on the ingress port
// returns no egress (the frame is filtered).
func (b *Bridge) Forward(src, dst net.HardwareAddr, inPort int) ([]int, error) {
	if inPort < 0 || inPort >= b.ports {
		return nil, fmt.Errorf("%s: ingress port %d out of range (0-%d)", b.name, inPort, b.ports-1)
	}
	b.learn(src, inPort)

	if !isGroup(dst) {
		if entry, ok := b.lookup(dst); ok {
			if entry.port == inPort {
				return nil, nil
			}
			return []int{entry.port}, nil
		}
	}

	out := make([]int, 0, b.ports-1)
	for p := 0; p < b.ports; p++ {
		if p != inPort {
			out = append(out, p)
		}
	}
	return out, nil
}

// Lookup returns the learned port for a MAC, expiring stale entries.
func (b *Bridge) Lookup(mac net.HardwareAddr) (int, bool) {
	entry, ok := b.lookup(mac)
	if !ok {
		return 0, false
	}
	return entry.port, true
}

// Len returns the number of live learned entries.
func (b *Bridge) Len() int {
	n := 0
	for _, entry := range b.table {
		if !b.expired(entry) {
			n++
		}
	}
	return n
}

// Flush drops all learned entries.
func (b *Bridge) Flush() {
	b.table = make(map[string]learnedEntry)
}

func (b *Bridge) learn(mac net.HardwareAddr, port int) {
	if isGroup(mac) {
		return // group addresses are never valid sources
	}
	b.table[mac.String()] = learnedEntry{port: port, seen: b.now()}
}

func (b *Bridge) lookup(mac net.HardwareAddr) (learnedEntry, bool) {
	entry, ok := b.table[mac.String()]
	if !ok {
		return learnedEntry{}, false
	}
	if b.expired(entry) {
		delete(b.table, mac.String())
		return learnedEntry{}, false
	}
	return entry, true
}

func (b *Bridge) expired(entry learnedEntry) bool {
	return b.aging > 0 && b.now().Sub(entry.seen) > b.aging
}

// isGroup reports whether the I/G bit is set (broadcast or multicast).
func isGroup(mac net.HardwareAddr) bool {
	return len(mac) > 0 && mac[0]&1 == 1
}
