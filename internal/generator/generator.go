// Package generator runs one invoice generation call end to end:
// validate, calculate, assemble, render, persist and summarise.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/assembler"
	"github.com/rezonia/invoice-generator/internal/calculator"
	"github.com/rezonia/invoice-generator/internal/currency"
	"github.com/rezonia/invoice-generator/internal/logger"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/store"
	"github.com/rezonia/invoice-generator/internal/validation"
)

// Result is everything produced by one Generate call
type Result struct {
	Summary   model.Summary        `json:"summary"`
	Record    *model.InvoiceRecord `json:"record"`
	Artifacts []model.Artifact     `json:"artifacts"`
}

// Artifact returns the artifact for f, if it was produced
func (r *Result) Artifact(f model.Format) (model.Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Format == f {
			return a, true
		}
	}
	return model.Artifact{}, false
}

// Generator orchestrates generation calls. It is safe for concurrent use
// as long as its collaborators are.
type Generator struct {
	assembler  *assembler.Assembler
	dispatcher *render.Dispatcher
	printer    render.Printer
	html       *render.HTMLRenderer
	store      store.Store
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string

	lenientFormats bool
}

// Option configures the generator
type Option func(*Generator)

// WithAssembler sets the invoice assembler
func WithAssembler(a *assembler.Assembler) Option {
	return func(g *Generator) {
		g.assembler = a
	}
}

// WithPrinter sets the PDF printer used by the default dispatcher
func WithPrinter(p render.Printer) Option {
	return func(g *Generator) {
		g.printer = p
	}
}

// WithHTMLRenderer sets the HTML renderer used by the default dispatcher
func WithHTMLRenderer(r *render.HTMLRenderer) Option {
	return func(g *Generator) {
		g.html = r
	}
}

// WithDispatcher replaces the default dispatcher entirely
func WithDispatcher(d *render.Dispatcher) Option {
	return func(g *Generator) {
		g.dispatcher = d
	}
}

// WithStore sets where artifacts are persisted
func WithStore(s store.Store) Option {
	return func(g *Generator) {
		g.store = s
	}
}

// WithLogger sets the logger. A logger carried by the Generate context
// takes precedence.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock sets the time source for summaries
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithIDGenerator sets the generation id source
func WithIDGenerator(newID func() string) Option {
	return func(g *Generator) {
		g.newID = newID
	}
}

// WithLenientFormats skips output format validation. Unknown names are then
// dropped by the dispatcher with a warning instead of rejecting the input.
func WithLenientFormats() Option {
	return func(g *Generator) {
		g.lenientFormats = true
	}
}

// New creates a generator. Without a printer, PDF requests fail with a
// RenderError.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.assembler == nil {
		g.assembler = assembler.New()
	}
	if g.store == nil {
		g.store = store.NopStore{}
	}
	if g.dispatcher == nil {
		if g.html == nil {
			g.html = render.NewHTMLRenderer(render.WithHTMLLogger(g.logger.Named("html")))
		}
		g.dispatcher = render.NewDispatcher(g.logger.Named("render"),
			render.NewJSONRenderer(),
			g.html,
			render.NewPDFRenderer(g.printer, g.html),
		)
	}
	return g
}

// Validate checks input without producing anything
func (g *Generator) Validate(in *model.Input) error {
	if g.lenientFormats && in != nil {
		relaxed := *in
		relaxed.OutputFormats = nil
		return validation.Validate(&relaxed)
	}
	return validation.Validate(in)
}

// Check validates input and any supplied dates without issuing an
// invoice number
func (g *Generator) Check(in *model.Input) error {
	if err := g.Validate(in); err != nil {
		return err
	}
	details := in.Details()
	if details.InvoiceDate != "" {
		if _, err := assembler.ParseDate("invoice date", details.InvoiceDate); err != nil {
			return err
		}
	}
	if details.DueDate != "" {
		if _, err := assembler.ParseDate("due date", details.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// Prepare calculates amounts and assembles the canonical record for
// validated input
func (g *Generator) Prepare(in *model.Input) (*model.InvoiceRecord, error) {
	details := in.Details()
	items := assembler.NormalizeItems(in.Items)
	amounts := calculator.Calculate(items, details.TaxRate, details.DiscountRate)
	return g.assembler.Assemble(in, amounts)
}

// Generate runs a full generation call. On any failure no summary is
// returned.
func (g *Generator) Generate(ctx context.Context, in *model.Input) (*Result, error) {
	id := g.newID()
	log := g.logger
	if reqLog := logger.FromContextOr(ctx, nil); reqLog != nil {
		// carries the request id of the HTTP call
		log = reqLog.Named("generator")
	}
	log = log.With(zap.String("generation_id", id))
	log.Info("invoice generation started")
	log.Debug("generation input", zap.Any("input", in))

	if err := g.Validate(in); err != nil {
		log.Warn("invoice input rejected", zap.Error(err))
		return nil, err
	}

	record, err := g.Prepare(in)
	if err != nil {
		log.Warn("invoice assembly failed", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("invoice_number", record.InvoiceNumber))
	log.Info("invoice prepared", zap.String("total", record.Total.StringFixed(2)))

	formats := in.OutputFormats
	if len(formats) == 0 {
		formats = model.DefaultFormats
	}

	artifacts, err := g.dispatcher.Render(ctx, record, formats)
	if err != nil {
		log.Error("invoice rendering failed", zap.Error(err))
		return nil, err
	}

	for i := range artifacts {
		a := &artifacts[i]
		location, err := g.store.Put(ctx, store.Key(record.InvoiceNumber, a.Format), *a)
		if err != nil {
			log.Error("artifact persistence failed", zap.String("format", string(a.Format)), zap.Error(err))
			return nil, model.NewRenderError(a.Format, "failed to store artifact", err)
		}
		a.Location = location
	}

	summary := g.summarize(id, record, artifacts)
	log.Info("invoice generated",
		zap.String("total", currency.Format(record.Total, record.Currency)),
		zap.Int("outputs", len(artifacts)))

	return &Result{
		Summary:   summary,
		Record:    record,
		Artifacts: artifacts,
	}, nil
}

func (g *Generator) summarize(id string, record *model.InvoiceRecord, artifacts []model.Artifact) model.Summary {
	outputs := make([]model.OutputInfo, len(artifacts))
	for i, a := range artifacts {
		outputs[i] = model.OutputInfo{Format: a.Format, Size: a.Size, Location: a.Location}
	}
	return model.Summary{
		GenerationID:  id,
		InvoiceNumber: record.InvoiceNumber,
		InvoiceDate:   record.InvoiceDate,
		DueDate:       record.DueDate,
		ClientName:    record.ClientInfo.Name,
		TotalAmount:   record.Total,
		Currency:      record.Currency,
		Status:        model.StatusGenerated,
		Outputs:       outputs,
		Timestamp:     g.now().UTC(),
	}
}

// Describe renders a summary on one line
func Describe(s model.Summary) string {
	return fmt.Sprintf("%s for %s: %s (%d outputs)",
		s.InvoiceNumber, s.ClientName, currency.Format(s.TotalAmount, s.Currency), len(s.Outputs))
}
