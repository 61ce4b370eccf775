package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/taxcalc/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health
  POST /api/v1/tax/calculate
  POST /api/v1/tax/estimate
  POST /api/v1/deductions/validate
  GET  /api/v1/rates
  POST /api/v1/rates/refresh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.API.Host = host
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx)
	},
}

// runServer serves the API and runs the scheduled rate refresh until ctx ends
func runServer(ctx context.Context) error {
	log := logger()
	go application.RefreshLoop(ctx, cfg.Rates.RefreshInterval)
	if cfg.Rates.RefreshInterval > 0 {
		log.Info("scheduled rate refresh enabled", zap.Duration("interval", cfg.Rates.RefreshInterval))
	}

	srv := api.NewServer(cfg.API, application.Engine, log, version)
	return srv.ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().Int("port", 0, "port override (default from config)")
	serveCmd.Flags().String("host", "", "host override (default from config)")

	rootCmd.AddCommand(serveCmd)
}
