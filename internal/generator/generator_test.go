package generator_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rezonia/invoice-generator/internal/assembler"
	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/logger"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
)

func p(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

type countingNumberer struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNumberer) Next(date time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return "INV-" + date.Format("200601") + "-0001", nil
}

func (n *countingNumberer) Reserve(string) bool { return true }

type fakeStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *fakeStore) Put(_ context.Context, key string, _ model.Artifact) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "mem://" + key, nil
}

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func pdfPrinter() render.Printer {
	return render.PrinterFunc(func(context.Context, []byte) ([]byte, error) {
		return []byte("%PDF-1.7 test"), nil
	})
}

func sampleInput() *model.Input {
	return &model.Input{
		CompanyInfo: &model.Party{Name: "Acme Corp"},
		ClientInfo:  &model.Party{Name: "Globex"},
		Items: []model.Item{
			{Description: "Widget", Quantity: p("4"), UnitPrice: p("25")},
		},
		InvoiceDetails: &model.InvoiceDetails{
			InvoiceDate:  "2024-03-01",
			TaxRate:      p("8"),
			DiscountRate: p("10"),
		},
	}
}

func newGenerator(numbers *countingNumberer, st *fakeStore, opts ...generator.Option) *generator.Generator {
	base := []generator.Option{
		generator.WithAssembler(assembler.New(assembler.WithNumberer(numbers))),
		generator.WithPrinter(pdfPrinter()),
		generator.WithStore(st),
		generator.WithClock(func() time.Time { return fixedNow }),
		generator.WithIDGenerator(func() string { return "gen-1" }),
	}
	return generator.New(append(base, opts...)...)
}

func TestGenerate_DefaultFormats(t *testing.T) {
	numbers := &countingNumberer{}
	st := &fakeStore{}

	result, err := newGenerator(numbers, st).Generate(context.Background(), sampleInput())
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, "gen-1", s.GenerationID)
	assert.Equal(t, "INV-202403-0001", s.InvoiceNumber)
	assert.Equal(t, "March 01, 2024", s.InvoiceDate)
	assert.Equal(t, "March 31, 2024", s.DueDate)
	assert.Equal(t, "Globex", s.ClientName)
	assert.Equal(t, "97.20", s.TotalAmount.StringFixed(2))
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, model.StatusGenerated, s.Status)
	assert.Equal(t, fixedNow, s.Timestamp)

	require.Len(t, s.Outputs, 2)
	assert.Equal(t, model.FormatPDF, s.Outputs[0].Format)
	assert.Equal(t, model.FormatJSON, s.Outputs[1].Format)
	assert.Equal(t, "mem://invoice_INV-202403-0001_pdf", s.Outputs[0].Location)
	assert.Equal(t, []string{"invoice_INV-202403-0001_pdf", "invoice_INV-202403-0001_json"}, st.keys)

	jsonOut, ok := result.Artifact(model.FormatJSON)
	require.True(t, ok)
	assert.Equal(t, jsonOut.Size, s.Outputs[1].Size)

	var record map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Content, &record))
	assert.Equal(t, "modern", record["template"])
}

func TestGenerate_SummaryJSON(t *testing.T) {
	result, err := newGenerator(&countingNumberer{}, &fakeStore{}).Generate(context.Background(), sampleInput())
	require.NoError(t, err)

	data, err := json.Marshal(result.Summary)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"invoiceNumber", "invoiceDate", "dueDate", "clientName", "totalAmount", "currency", "status", "outputs", "timestamp", "generationId"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "2024-03-15T12:00:00Z", decoded["timestamp"])
}

func TestGenerate_ValidationStopsBeforeCalculation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Input)
		message string
	}{
		{"missing company name", func(in *model.Input) { in.CompanyInfo.Name = "" }, "Company name is required"},
		{"no items", func(in *model.Input) { in.Items = nil }, "At least one invoice item is required"},
		{"bad format", func(in *model.Input) { in.OutputFormats = []string{"PDF", "XML"} }, "Invalid output format: XML. Valid formats are: PDF, HTML, JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			numbers := &countingNumberer{}
			st := &fakeStore{}
			in := sampleInput()
			tt.mutate(in)

			result, err := newGenerator(numbers, st).Generate(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, result)

			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.message, err.Error())
			assert.Zero(t, numbers.calls)
			assert.Empty(t, st.keys)
		})
	}
}

func TestGenerate_InvalidDate(t *testing.T) {
	st := &fakeStore{}
	in := sampleInput()
	in.InvoiceDetails.InvoiceDate = "2024-13-01"

	_, err := newGenerator(&countingNumberer{}, st).Generate(context.Background(), in)
	var dateErr *model.DateFormatError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, "Invalid invoice date format. Use YYYY-MM-DD", err.Error())
	assert.Empty(t, st.keys)
}

func TestGenerate_LenientFormats(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	in := sampleInput()
	in.OutputFormats = []string{"html", "XML", "json"}

	result, err := newGenerator(&countingNumberer{}, &fakeStore{},
		generator.WithLenientFormats(),
		generator.WithLogger(zap.New(core)),
	).Generate(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, result.Summary.Outputs, 2)
	assert.Equal(t, model.FormatHTML, result.Summary.Outputs[0].Format)
	assert.Equal(t, model.FormatJSON, result.Summary.Outputs[1].Format)
	assert.Equal(t, 1, logs.FilterMessage("unsupported output format skipped").Len())
}

func TestGenerate_RenderFailureAborts(t *testing.T) {
	st := &fakeStore{}
	failing := render.PrinterFunc(func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("browser crashed")
	})
	in := sampleInput()
	in.OutputFormats = []string{"JSON", "PDF", "HTML"}

	result, err := newGenerator(&countingNumberer{}, st, generator.WithPrinter(failing)).Generate(context.Background(), in)
	require.Error(t, err)
	assert.Nil(t, result)

	var renderErr *model.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, model.FormatPDF, renderErr.Format)
	assert.Empty(t, st.keys)
}

func TestGenerate_StoreFailure(t *testing.T) {
	st := &fakeStore{err: errors.New("disk full")}
	in := sampleInput()
	in.OutputFormats = []string{"JSON"}

	_, err := newGenerator(&countingNumberer{}, st).Generate(context.Background(), in)
	var renderErr *model.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, err.Error(), "disk full")
}

func TestGenerate_NoPrinter(t *testing.T) {
	g := generator.New(generator.WithStore(&fakeStore{}))

	in := sampleInput()
	in.OutputFormats = []string{"PDF"}
	_, err := g.Generate(context.Background(), in)
	var renderErr *model.RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestPrepare(t *testing.T) {
	in := sampleInput()
	in.Items = append(in.Items, model.Item{Description: "Support", Quantity: p("2"), UnitPrice: p("10.005"), Unit: "hours"})

	record, err := newGenerator(&countingNumberer{}, &fakeStore{}).Prepare(in)
	require.NoError(t, err)

	require.Len(t, record.Items, 2)
	assert.Equal(t, "units", record.Items[0].Unit)
	assert.Equal(t, "hours", record.Items[1].Unit)
	assert.Equal(t, "20.01", record.Items[1].LineTotal.StringFixed(2))
	assert.Equal(t, "120.01", record.Subtotal.StringFixed(2))
}

func TestGenerate_Concurrent(t *testing.T) {
	g := generator.New(generator.WithPrinter(pdfPrinter()))

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := g.Generate(context.Background(), sampleInput())
			if err == nil {
				numbers <- result.Summary.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestDescribe(t *testing.T) {
	s := model.Summary{
		InvoiceNumber: "INV-1",
		ClientName:    "Globex",
		TotalAmount:   decimal.RequireFromString("1234.5"),
		Currency:      "EUR",
		Outputs:       []model.OutputInfo{{Format: model.FormatPDF}},
	}
	assert.Equal(t, "INV-1 for Globex: €1,234.50 (1 outputs)", generator.Describe(s))
}

func TestCheck(t *testing.T) {
	numbers := &countingNumberer{}
	g := newGenerator(numbers, &fakeStore{})

	require.NoError(t, g.Check(sampleInput()))

	in := sampleInput()
	in.InvoiceDetails.DueDate = "2024-02-30"
	err := g.Check(in)
	var dateErr *model.DateFormatError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, "due date", dateErr.Field)

	in = sampleInput()
	in.ClientInfo = nil
	assert.EqualError(t, g.Check(in), "Client information is required")

	assert.Zero(t, numbers.calls)
}

func TestGenerate_PrefersContextLogger(t *testing.T) {
	baseCore, baseLogs := observer.New(zap.InfoLevel)
	reqCore, reqLogs := observer.New(zap.InfoLevel)
	gen := newGenerator(&countingNumberer{}, &fakeStore{}, generator.WithLogger(zap.New(baseCore)))

	ctx := logger.WithContext(context.Background(), zap.New(reqCore).With(zap.String("request_id", "req-7")))
	_, err := gen.Generate(ctx, sampleInput())
	require.NoError(t, err)

	assert.Zero(t, baseLogs.FilterMessage("invoice generated").Len())
	entries := reqLogs.FilterMessage("invoice generated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "gen-1", entries[0].ContextMap()["generation_id"])

	_, err = gen.Generate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, 1, baseLogs.FilterMessage("invoice generated").Len())
}
