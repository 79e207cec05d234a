package render

import (
	"context"

	"github.com/rezonia/invoice-generator/internal/model"
)

// PDFRenderer renders the HTML document and hands it to a Printer
type PDFRenderer struct {
	printer Printer
	html    *HTMLRenderer
}

// NewPDFRenderer creates a PDF renderer. A nil html renderer uses the
// built-in templates.
func NewPDFRenderer(printer Printer, html *HTMLRenderer) *PDFRenderer {
	if html == nil {
		html = NewHTMLRenderer()
	}
	return &PDFRenderer{printer: printer, html: html}
}

// Format returns model.FormatPDF
func (r *PDFRenderer) Format() model.Format {
	return model.FormatPDF
}

// Render produces the paginated document artifact
func (r *PDFRenderer) Render(ctx context.Context, record *model.InvoiceRecord) (model.Artifact, error) {
	if r.printer == nil {
		return model.Artifact{}, model.NewRenderError(model.FormatPDF, "no printer configured", nil)
	}

	html, err := r.html.RenderHTML(ctx, record)
	if err != nil {
		return model.Artifact{}, err
	}

	data, err := r.printer.Print(ctx, html)
	if err != nil {
		return model.Artifact{}, model.NewRenderError(model.FormatPDF, "failed to print document", err)
	}
	if len(data) == 0 {
		return model.Artifact{}, model.NewRenderError(model.FormatPDF, "printer returned an empty document", nil)
	}
	return model.NewArtifact(model.FormatPDF, data), nil
}
