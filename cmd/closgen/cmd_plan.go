package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/closgen/closgen/pkg/cli"
	"github.com/closgen/closgen/pkg/provision"
)

func newPlanCmd() *cobra.Command {
	var flags planFlags
	var output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the address plan and routing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			topo, plan, tables, err := computePlan(cfg)
			if err != nil {
				return err
			}

			if output != "" {
				doc, err := provision.BuildDocument(topo, plan, tables)
				if err != nil {
					return err
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := doc.WriteYAML(f); err != nil {
					return err
				}
				fmt.Printf("wrote %s (%d links, %d route entries)\n",
					output, len(plan.Subnets), tables.EntryCount())
				return nil
			}

			lt := cli.NewTable("LINK", "SUBNET", "A-ADDR", "B-ADDR")
			for _, sub := range plan.Subnets {
				lt.Row(sub.Key.String(), sub.CIDR(), sub.AddrA, sub.AddrB)
			}
			lt.Flush()
			fmt.Println()

			rt := cli.NewTable("NODE", "PREFIX", "NEXTHOP", "EGRESS")
			for _, table := range tables.Nodes {
				for _, e := range table.Entries {
					rt.Row(table.Node.String(), e.CIDR(), e.NextHop, e.Egress.String())
				}
			}
			rt.Flush()
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write plan as YAML to file instead of printing")
	return cmd
}
