package render

import (
	"context"
	"encoding/json"

	"github.com/rezonia/invoice-generator/internal/model"
)

// JSONRenderer dumps the canonical record as indented JSON
type JSONRenderer struct{}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Format returns model.FormatJSON
func (r *JSONRenderer) Format() model.Format {
	return model.FormatJSON
}

// Render marshals the record with two-space indentation
func (r *JSONRenderer) Render(_ context.Context, record *model.InvoiceRecord) (model.Artifact, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return model.Artifact{}, model.NewRenderError(model.FormatJSON, "failed to encode record", err)
	}
	return model.NewArtifact(model.FormatJSON, data), nil
}
