package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for generating invoices.

The API provides endpoints for:
  - POST /api/v1/invoices          - Generate; summary, record and base64 artifacts
  - POST /api/v1/invoices/:format  - Generate one format; raw bytes
  - POST /api/v1/validate          - Validate input
  - POST /api/v1/calculate         - Calculate totals only
  - GET  /api/v1/currencies        - Supported currencies
  - GET  /health                   - Health check

Examples:
  # Start server on default port
  invoice-generator serve

  # Store artifacts in S3
  INVOICE_STORE_KIND=s3 INVOICE_STORE_S3_BUCKET=invoices invoice-generator serve

  # Start in debug mode
  invoice-generator serve --debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", ":8080", "Server listen address (env: INVOICE_SERVER_ADDRESS)")
	serveCmd.Flags().Bool("debug", false, "Enable debug mode (env: INVOICE_SERVER_DEBUG)")
	serveCmd.Flags().Duration("read-timeout", 0, "HTTP read timeout")
	serveCmd.Flags().Duration("write-timeout", 0, "HTTP write timeout")

	_ = v.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
	_ = v.BindPFlag("server.debug", serveCmd.Flags().Lookup("debug"))
	_ = v.BindPFlag("server.read_timeout", serveCmd.Flags().Lookup("read-timeout"))
	_ = v.BindPFlag("server.write_timeout", serveCmd.Flags().Lookup("write-timeout"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	config := &server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Server.Debug,
	}
	srv := server.NewServer(config, a.generator, log.Named("server"))

	log.Info("starting server",
		zap.String("address", config.Address),
		zap.String("store", cfg.Store.Kind),
		zap.String("version", version))

	return srv.Run(ctx)
}
