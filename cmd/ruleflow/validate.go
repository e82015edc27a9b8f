package main

import (
	"errors"
	"os"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE|DIR...",
	Short: "Check workflow graphs for structural soundness",
	Long: `Validates each workflow definition (.json or .yaml) and prints its report.
Directories are expanded to the workflow files they contain.
Exits with status 1 if any workflow is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}

		paths, err := cli.ExpandPaths(args)
		if err != nil {
			return err
		}

		svc, err := ruleflow.New(ruleflow.WithLogger(logger))
		if err != nil {
			return err
		}

		err = cli.RunValidate(cmd.Context(), svc, paths, jsonMode, cmd.OutOrStdout())
		if errors.Is(err, cli.ErrInvalid) {
			// The reports already say why.
			os.Exit(1)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the reports as JSON")
}
