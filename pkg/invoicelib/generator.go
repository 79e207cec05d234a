package invoicelib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/invoice-generator/internal/assembler"
	"github.com/rezonia/invoice-generator/internal/calculator"
	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/numbering"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/store"
)

// Options configures a Generator
type Options struct {
	// NumberPrefix is used for synthesized invoice numbers
	NumberPrefix string
	// DefaultTemplate is used when the input names none, and as the
	// fallback when the named template is missing
	DefaultTemplate string
	// TemplateDir replaces the built-in templates when set
	TemplateDir string
	// OutputDir writes every artifact to this directory when set
	OutputDir string
	// Printer prints HTML to PDF. Nil uses headless Chrome.
	Printer Printer
	// SkipUnknownFormats drops unknown output formats with a warning
	// instead of rejecting the input
	SkipUnknownFormats bool
	// BatchConcurrency caps the generations GenerateBatch runs at once.
	// Zero or less uses DefaultBatchConcurrency.
	BatchConcurrency int
	Logger           *zap.Logger
}

// DefaultBatchConcurrency is the GenerateBatch limit when none is set
const DefaultBatchConcurrency = 4

// DefaultOptions returns default generator options
func DefaultOptions() Options {
	return Options{
		NumberPrefix:     numbering.DefaultPrefix,
		DefaultTemplate:  model.DefaultTemplate,
		BatchConcurrency: DefaultBatchConcurrency,
	}
}

// Result holds the outcome of one generation call
type Result struct {
	Summary   Summary        `json:"summary"`
	Invoice   *InvoiceRecord `json:"invoice"`
	Artifacts []Artifact     `json:"artifacts"`
}

// Generator implements invoice generation using the internal pipeline
type Generator struct {
	gen     *generator.Generator
	chrome  *render.ChromePrinter
	options Options
}

// NewGenerator creates a new invoice generator with the given options
func NewGenerator(opts Options) (*Generator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = model.DefaultTemplate
	}

	g := &Generator{options: opts}

	printer := opts.Printer
	if printer == nil {
		g.chrome = render.NewChromePrinter(render.ChromeConfig{NoSandbox: true, Logger: logger.Named("chrome")})
		printer = render.NewInspectingPrinter(g.chrome, logger.Named("pdf"))
	}

	htmlOpts := []render.HTMLOption{
		render.WithFallbackTemplate(opts.DefaultTemplate),
		render.WithHTMLLogger(logger.Named("html")),
	}
	if opts.TemplateDir != "" {
		htmlOpts = append(htmlOpts, render.WithTemplateDir(opts.TemplateDir))
	}

	genOpts := []generator.Option{
		generator.WithAssembler(assembler.New(
			assembler.WithNumberer(numbering.NewGenerator(opts.NumberPrefix)),
			assembler.WithDefaultTemplate(opts.DefaultTemplate),
		)),
		generator.WithPrinter(printer),
		generator.WithHTMLRenderer(render.NewHTMLRenderer(htmlOpts...)),
		generator.WithLogger(logger),
	}
	if opts.OutputDir != "" {
		fsStore, err := store.NewFSStore(store.FSStoreConfig{Dir: opts.OutputDir, Logger: logger.Named("store")})
		if err != nil {
			return nil, err
		}
		genOpts = append(genOpts, generator.WithStore(fsStore))
	}
	if opts.SkipUnknownFormats {
		genOpts = append(genOpts, generator.WithLenientFormats())
	}

	g.gen = generator.New(genOpts...)
	return g, nil
}

// NewDefaultGenerator creates a generator with default options
func NewDefaultGenerator() *Generator {
	g, err := NewGenerator(DefaultOptions())
	if err != nil {
		// Only an output directory can fail, and the defaults have none
		panic(err)
	}
	return g
}

// Close releases the headless browser, if one was started
func (g *Generator) Close() error {
	if g.chrome != nil {
		return g.chrome.Close()
	}
	return nil
}

// Generate reads one JSON input record and generates the invoice
func (g *Generator) Generate(ctx context.Context, r io.Reader) (*Result, error) {
	in, err := decodeInput(r)
	if err != nil {
		return nil, err
	}
	return g.GenerateInput(ctx, in)
}

// GenerateInput generates the invoice for an already decoded input
func (g *Generator) GenerateInput(ctx context.Context, in *Input) (*Result, error) {
	result, err := g.gen.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	return &Result{
		Summary:   result.Summary,
		Invoice:   result.Record,
		Artifacts: result.Artifacts,
	}, nil
}

// Validate checks input and its dates without issuing an invoice number
func (g *Generator) Validate(in *Input) error {
	return g.gen.Check(in)
}

// Calculate validates input and returns its totals without rendering
func (g *Generator) Calculate(in *Input) (InvoiceAmounts, error) {
	if err := g.gen.Check(in); err != nil {
		return InvoiceAmounts{}, err
	}
	details := in.Details()
	return calculator.Calculate(assembler.NormalizeItems(in.Items), details.TaxRate, details.DiscountRate), nil
}

// GenerateBatch generates inputs concurrently, at most BatchConcurrency at
// a time. Results keep the input order. A failed input leaves a nil entry
// and does not stop the others; the first error is returned.
func (g *Generator) GenerateBatch(ctx context.Context, inputs []*Input) ([]*Result, error) {
	results := make([]*Result, len(inputs))

	limit := g.options.BatchConcurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}
	var group errgroup.Group
	group.SetLimit(limit)

	for i, in := range inputs {
		group.Go(func() error {
			result, err := g.GenerateInput(ctx, in)
			if err != nil {
				return fmt.Errorf("batch input %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	return results, group.Wait()
}

// Describe renders a summary on one line, e.g. "INV-1 for Globex: $97.20 (2 outputs)"
func Describe(s Summary) string {
	return generator.Describe(s)
}

func decodeInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.NewValidationError("", "input is empty")
	}

	var in model.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}
	return &in, nil
}
