// Package invoicelib provides a public API for generating invoices.
//
// This package exposes the input and output types together with a Generator
// that validates input, derives totals and renders JSON, HTML and PDF
// artifacts.
//
// Example usage:
//
//	gen, err := invoicelib.NewGenerator(invoicelib.Options{OutputDir: "out"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	result, err := gen.Generate(ctx, reader)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary.TotalAmount)
package invoicelib

import (
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
)

// Re-export core types for public API
type (
	Input          = model.Input
	Party          = model.Party
	Item           = model.Item
	InvoiceDetails = model.InvoiceDetails
	CustomField    = model.CustomField
	LineItem       = model.LineItem
	InvoiceAmounts = model.InvoiceAmounts
	InvoiceRecord  = model.InvoiceRecord
	Artifact       = model.Artifact
	Summary        = model.Summary
	OutputInfo     = model.OutputInfo
	Format         = model.Format
)

// Re-export output formats
const (
	FormatJSON = model.FormatJSON
	FormatHTML = model.FormatHTML
	FormatPDF  = model.FormatPDF
)

// Re-export printing hooks so callers can supply their own PDF backend
type (
	Printer     = render.Printer
	PrinterFunc = render.PrinterFunc
)

// Re-export error types
type (
	ValidationError = model.ValidationError
	DateFormatError = model.DateFormatError
	RenderError     = model.RenderError
)
