package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/closgen/closgen/pkg/provision"
)

func newProvisionCmd() *cobra.Command {
	var flags planFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Push the computed plan to the Redis backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			topo, plan, tables, err := computePlan(cfg)
			if err != nil {
				return err
			}

			if dryRun {
				rec := &provision.Recorder{}
				if err := provision.NewDriver(rec).Provision(topo, plan, tables); err != nil {
					return err
				}
				fmt.Printf("dry run: %d links, %d addresses, %d routes\n",
					len(rec.Links), len(rec.Addrs), len(rec.Routes))
				return nil
			}

			rt, err := provision.NewRedisRuntime(context.Background(), cfg.Redis.Addr, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := provision.NewDriver(rt).Provision(topo, plan, tables); err != nil {
				return err
			}
			fmt.Printf("provisioned %d links and %d route entries to %s\n",
				len(topo.Links), tables.EntryCount(), cfg.Redis.Addr)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "record the provisioning calls without a backend")
	return cmd
}
