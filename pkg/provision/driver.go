package provision

import (
	"fmt"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
	"github.com/closgen/closgen/pkg/util"
)

// Driver pushes a computed plan at a Runtime. Provisioning is
// all-or-nothing from the caller's perspective: the first runtime
// error aborts the pass.
type Driver struct {
	rt Runtime
}

// NewDriver creates a driver for the given runtime.
func NewDriver(rt Runtime) *Driver {
	return &Driver{rt: rt}
}

// Provision creates every link, assigns both endpoint addresses, and
// installs every routing table, all in canonical enumeration order.
// The plan and tables must come from the same topology.
func (d *Driver) Provision(topo *topology.Topology, plan *addressing.Plan, tables *routing.Tables) error {
	log := util.WithField("k", topo.K)
	log.Infof("provisioning %d links and %d nodes", len(topo.Links), topo.NodeCount())

	for _, link := range topo.Links {
		sub, err := plan.Subnet(link.Key)
		if err != nil {
			return err
		}
		id, err := d.rt.CreateLink(link.A, link.B)
		if err != nil {
			return fmt.Errorf("creating link %s: %w", link.Key, err)
		}
		if err := d.rt.AssignAddress(id, 0, sub.AddrA, addressing.PrefixLen); err != nil {
			return fmt.Errorf("addressing %s side of %s: %w", link.A, link.Key, err)
		}
		if err := d.rt.AssignAddress(id, 1, sub.AddrB, addressing.PrefixLen); err != nil {
			return fmt.Errorf("addressing %s side of %s: %w", link.B, link.Key, err)
		}
	}

	for _, node := range topo.Nodes() {
		table, ok := tables.Table(node)
		if !ok {
			return fmt.Errorf("no routing table for %s: %w", node, util.ErrMissingLinkMapping)
		}
		for _, entry := range table.Entries {
			if err := d.rt.InstallRoute(node, entry); err != nil {
				return fmt.Errorf("installing %s on %s: %w", entry.CIDR(), node, err)
			}
		}
		util.WithNode(node.String()).Debugf("installed %d routes", len(table.Entries))
	}

	log.Infof("provisioned %d route entries", tables.EntryCount())
	return nil
}
