// closgen — static address and route planning for fat-tree fabrics
//
// closgen computes, for a k-ary folded-Clos topology, a disjoint /30
// address plan for every link and minimal aggregated static routes for
// every node, then pushes the result at a provisioning backend.
//
// Usage:
//
//	closgen topology -k 4            Show derived counts and link enumeration
//	closgen plan -k 4                Compute and print the plan
//	closgen plan -k 4 -o plan.yml    Export the plan as YAML
//	closgen verify -k 4              Walk every server pair and check the tables
//	closgen provision -f closgen.yml Write the plan to a Redis backend
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/closgen/closgen/pkg/util"
	"github.com/closgen/closgen/pkg/version"
)

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "closgen",
	Short:             "Fat-tree fabric address and route planner",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `closgen plans a k-ary fat-tree fabric: every link gets a unique /30
block from a closed-form numbering scheme and every node gets a small
aggregated routing table implementing two-phase routing.

  closgen plan -k 4`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return util.SetLogLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newTopologyCmd(),
		newPlanCmd(),
		newVerifyCmd(),
		newProvisionCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("closgen %s\n", version.Info())
		},
	}
}
