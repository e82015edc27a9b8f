package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/ruleflow/internal/cli"
	"github.com/aretw0/ruleflow/internal/presentation/tui"
	httpAdapter "github.com/aretw0/ruleflow/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Serves the workflow and rule API described by /openapi.yaml, plus /health and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
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

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRequestValidation(cfg.Server.ValidateRequests),
		}
		if app.Registry != nil {
			opts = append(opts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))
		}
		handler, err := httpAdapter.NewHandler(app.Service, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting ruleflow server", "addr", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("ruleflow server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on; overrides server.addr")
}
