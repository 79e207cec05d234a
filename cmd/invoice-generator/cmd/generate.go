package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/config"
	"github.com/rezonia/invoice-generator/internal/currency"
	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/model"
)

var (
	outputDir  string
	formats    []string
	template   string
	timeout    time.Duration
	lenientRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Generate invoices from JSON input files",
	Long: `Generate one invoice per JSON input file.

Each input is validated, totals are calculated and the invoice is rendered
to the requested formats (default: PDF and JSON). Artifacts are written to
the configured store; --output forces the filesystem store.

Use "-" to read a single input from stdin.

Examples:
  invoice-generator generate order.json -o out
  invoice-generator generate orders/ --formats HTML,JSON
  invoice-generator generate order.json --template classic --store s3
  cat order.json | invoice-generator generate - -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Write artifacts to this directory")
	generateCmd.Flags().StringSliceVar(&formats, "formats", nil, "Output formats, overriding the input (PDF, HTML, JSON)")
	generateCmd.Flags().StringVar(&template, "template", "", "Template name, overriding the input")
	generateCmd.Flags().String("store", "", "Artifact store (none, fs, s3) (env: INVOICE_STORE_KIND)")
	generateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Generation timeout per file")
	generateCmd.Flags().BoolVar(&lenientRun, "skip-unknown-formats", false, "Skip unknown output formats instead of rejecting the input")

	_ = v.BindPFlag("store.kind", generateCmd.Flags().Lookup("store"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found")
	}

	if outputDir != "" {
		cfg.Store.Kind = config.StoreFS
		cfg.Store.Dir = outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, lenientRun)
	if err != nil {
		return err
	}
	defer a.Close()

	printVerbose("Found %d input files\n", len(files))

	results := make([]*GenerateResult, 0, len(files))
	failed := 0
	for _, file := range files {
		printVerbose("Generating: %s\n", file)

		result := generateFile(ctx, a.generator, file)
		results = append(results, result)

		if result.Error != "" {
			failed++
			printVerbose("  Error: %s\n", result.Error)
		} else {
			printVerbose("  %s\n", generator.Describe(*result.Summary))
		}
	}

	if err := outputResults(os.Stdout, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("generation failed for %d of %d inputs", failed, len(files))
	}
	return nil
}

func generateFile(ctx context.Context, gen *generator.Generator, file string) *GenerateResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := &GenerateResult{File: file}

	in, err := readInput(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(formats) > 0 {
		in.OutputFormats = formats
	}
	if template != "" {
		in.Template = template
	}

	generated, err := gen.Generate(ctx, in)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Summary = &generated.Summary
	return result
}

func outputResults(w io.Writer, results []*GenerateResult) error {
	switch outputFormat {
	case "json":
		return writeJSON(w, results)
	case "table":
		return outputTable(w, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputTable(w io.Writer, results []*GenerateResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNUMBER\tCLIENT\tDATE\tDUE\tTOTAL\tOUTPUTS")
	fmt.Fprintln(tw, "----\t------\t------\t----\t---\t-----\t-------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\n", r.File, r.Error)
			continue
		}

		s := r.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.File,
			s.InvoiceNumber,
			s.ClientName,
			s.InvoiceDate,
			s.DueDate,
			currency.Format(s.TotalAmount, s.Currency),
			describeOutputs(s.Outputs),
		)
	}

	return tw.Flush()
}

func describeOutputs(outputs []model.OutputInfo) string {
	out := ""
	for i, o := range outputs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%d bytes)", o.Format, o.Size)
		if o.Location != "" {
			out += " " + o.Location
		}
	}
	return out
}

// GenerateResult holds the result of generating a single input file
type GenerateResult struct {
	File    string         `json:"file"`
	Summary *model.Summary `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}
