package main

import (
	"time"

	"github.com/aretw0/ruleflow/internal/cli"
	"github.com/spf13/cobra"
)

var synthCmd = &cobra.Command{
	Use:   "synth [FILE]",
	Short: "Build a sample payload from a rule's conditions",
	Long: `Synthesizes the nested test payload implied by a rule's conditions.
The rule comes from a definition FILE or from a Loam repository (--rules DIR --rule ID).
With --evaluate URL the payload is sent to the rule evaluator and its verdict is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}

		opts := cli.SynthOptions{Evaluator: cfg.Evaluator}
		if len(args) > 0 {
			opts.File = args[0]
		}
		opts.RulesDir, _ = cmd.Flags().GetString("rules")
		opts.RuleID, _ = cmd.Flags().GetString("rule")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		if cmd.Flags().Changed("evaluate") {
			opts.Evaluator.URL, _ = cmd.Flags().GetString("evaluate")
		}
		if cmd.Flags().Changed("timeout") {
			opts.Evaluator.Timeout, _ = cmd.Flags().GetDuration("timeout")
		}

		return cli.RunSynth(cmd.Context(), opts, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().String("rules", "", "Loam repository containing rule documents")
	synthCmd.Flags().String("rule", "", "Rule ID to use with --rules")
	synthCmd.Flags().String("evaluate", "", "Base URL of the rule evaluator")
	synthCmd.Flags().Duration("timeout", 10*time.Second, "Evaluator request timeout")
	synthCmd.Flags().Bool("json", false, "Print the trial result as JSON")
}
