package main

import (
	"github.com/aretw0/ruleflow/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph FILE",
	Short: "Export the workflow graph visualization",
	Long: `Reads a workflow definition and outputs a Mermaid diagram (graph TD).
Nodes with validation issues and nodes unreachable from the start are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunGraph(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
