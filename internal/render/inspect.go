package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// pdfcpu writes a config directory on first use unless disabled
var disablePDFConfigDir sync.Once

// InspectingPrinter checks that the wrapped printer produced a readable PDF
// and logs its page count
type InspectingPrinter struct {
	next   Printer
	logger *zap.Logger
}

// NewInspectingPrinter wraps next
func NewInspectingPrinter(next Printer, logger *zap.Logger) *InspectingPrinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InspectingPrinter{next: next, logger: logger}
}

// Print delegates to the wrapped printer and rejects output pdfcpu cannot read
func (p *InspectingPrinter) Print(ctx context.Context, html []byte) ([]byte, error) {
	data, err := p.next.Print(ctx, html)
	if err != nil {
		return nil, err
	}

	pages, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("pdf inspected", zap.Int("pages", pages), zap.Int("bytes", len(data)))
	return data, nil
}

// PageCount returns the number of pages in a PDF document
func PageCount(data []byte) (int, error) {
	disablePDFConfigDir.Do(func() {
		pdfmodel.ConfigPath = "disable"
	})
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("invalid pdf output: %w", err)
	}
	if pages == 0 {
		return 0, errors.New("invalid pdf output: no pages")
	}
	return pages, nil
}
