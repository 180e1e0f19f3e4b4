package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/closgen/closgen/pkg/addressing"
	"github.com/closgen/closgen/pkg/config"
	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
	"github.com/closgen/closgen/pkg/util"
)

// planFlags are the input flags shared by commands that compute a plan.
// A config file provides defaults; -k and --strategy override it.
type planFlags struct {
	configFile string
	k          int
	strategy   string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "f", "", "config file (YAML)")
	cmd.Flags().IntVarP(&f.k, "degree", "k", 0, "fat-tree degree (even, >= 2)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "uplink strategy: single-path-static or multi-path-equal-cost")
}

// resolve merges flags over the config file and validates the result.
func (f *planFlags) resolve() (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.k != 0 {
		cfg.K = f.k
	}
	if f.strategy != "" {
		cfg.Strategy = f.strategy
	}
	if cfg.K == 0 {
		return nil, fmt.Errorf("fat-tree degree required: pass -k or set k in a config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LogLevel != "" && !verbose {
		if err := util.SetLogLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// computePlan runs the full pipeline for the resolved config.
func computePlan(cfg *config.Config) (*topology.Topology, *addressing.Plan, *routing.Tables, error) {
	topo, err := topology.New(cfg.K)
	if err != nil {
		return nil, nil, nil, err
	}
	plan, err := addressing.Allocate(topo)
	if err != nil {
		return nil, nil, nil, err
	}
	tables, err := routing.Synthesize(topo, plan, cfg.ParsedStrategy())
	if err != nil {
		return nil, nil, nil, err
	}
	return topo, plan, tables, nil
}
