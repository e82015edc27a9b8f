package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/ruleflow/internal/cli"
	"github.com/aretw0/ruleflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes workflow validation, payload synthesis and rule trials as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}

		app, err := cli.BuildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Service, logger)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting ruleflow MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
