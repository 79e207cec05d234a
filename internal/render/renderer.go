// Package render turns an assembled invoice record into output artifacts.
//
// Three renderers are provided: JSON (structured data), HTML (styled
// document from a named template) and PDF (the HTML document printed to A4
// by a Printer). A Dispatcher drives them for a list of requested format
// names.
package render

import (
	"context"

	"github.com/rezonia/invoice-generator/internal/model"
)

// Renderer produces one artifact for a record
type Renderer interface {
	Format() model.Format
	Render(ctx context.Context, record *model.InvoiceRecord) (model.Artifact, error)
}

// Printer converts a complete HTML document into PDF bytes
type Printer interface {
	Print(ctx context.Context, html []byte) ([]byte, error)
}

// PrinterFunc adapts a function to the Printer interface
type PrinterFunc func(ctx context.Context, html []byte) ([]byte, error)

// Print calls f
func (f PrinterFunc) Print(ctx context.Context, html []byte) ([]byte, error) {
	return f(ctx, html)
}
