package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/closgen/closgen/pkg/cli"
)

func newTopologyCmd() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Show derived counts and the canonical link enumeration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			topo, _, _, err := computePlan(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("fat-tree degree:        %d\n", topo.K)
			fmt.Printf("pods:                   %d\n", topo.PodCount)
			fmt.Printf("access per pod:         %d\n", topo.AccessPerPod)
			fmt.Printf("aggregation per pod:    %d\n", topo.AggregationPerPod)
			fmt.Printf("servers per pod:        %d\n", topo.ServersPerPod)
			fmt.Printf("core switches:          %d\n", topo.CoreCount)
			fmt.Printf("links:                  %d\n", len(topo.Links))
			fmt.Println()

			t := cli.NewTable("ID", "TIER", "A", "B")
			for _, link := range topo.Links {
				t.Row(fmt.Sprint(link.Ordinal), link.Kind().String(), link.A.String(), link.B.String())
			}
			t.Flush()
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
