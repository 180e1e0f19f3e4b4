package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/closgen/closgen/pkg/verify"
)

func newVerifyCmd() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Walk every server pair and check the routing tables",
		Long: `Verify recomputes the plan and independently checks it: every
server-to-server path is walked via longest-prefix match and must be
loop-free, within the two-phase hop bounds, and as short as the
topology allows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			topo, plan, tables, err := computePlan(cfg)
			if err != nil {
				return err
			}
			if err := verify.CheckPlan(topo, plan, tables); err != nil {
				return err
			}
			servers := topo.PodCount * topo.ServersPerPod
			fmt.Printf("ok: %d server pairs loop-free under %s\n",
				servers*(servers-1), tables.Strategy)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
