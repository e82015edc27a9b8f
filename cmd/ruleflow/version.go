package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ruleflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ruleflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ruleflow version %s\n", strings.TrimSpace(ruleflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
