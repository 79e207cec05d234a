package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/config"
	"github.com/rezonia/invoice-generator/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string

	v   = config.NewViper()
	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "invoice-generator",
	Short: "Generate invoices as PDF, HTML and JSON",
	Long: `Invoice Generator turns structured order data into finished invoices.

Each input file is validated, totals are derived with per-step rounding,
and the canonical invoice is rendered to one or more output formats:
  - JSON: full dump of the invoice record
  - HTML: styled document from a named template
  - PDF:  the HTML printed to A4 through headless Chrome

Examples:
  # Generate the default PDF and JSON into ./out
  invoice-generator generate order.json -o out

  # Check inputs without generating anything
  invoice-generator validate orders/*.json

  # Show the totals only
  invoice-generator calculate order.json -f table

  # Serve the HTTP API
  invoice-generator serve --address :8080`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() error {
	defer func() { _ = log.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./invoice-generator.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error) (env: INVOICE_LOG_LEVEL)")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Log.Level = "debug"
	}

	l, err := logger.New(loaded.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	cfg = loaded
	log = l
	return nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
