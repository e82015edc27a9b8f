package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/ruleflow/internal/config"
	"github.com/aretw0/ruleflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ruleflow",
	Short: "ruleflow validates workflow graphs and builds test payloads for rules",
	Long: `ruleflow checks workflow graphs for structural soundness (start and end nodes,
isolated nodes, reachability, decision branches) and synthesizes nested sample payloads
from rule conditions so rules can be trial-evaluated before activation.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the ruleflow config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// loadConfig reads --config, applies RULEFLOW_* overrides and then --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}
