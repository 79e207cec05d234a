package server

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/rezonia/invoice-generator/internal/model"
)

// Response headers set on raw artifact downloads
const (
	HeaderInvoiceNumber = "X-Invoice-Number"
	HeaderGenerationID  = "X-Generation-ID"
)

// GenerateResponse is the response for the generate endpoint. Artifact
// content is base64 encoded.
type GenerateResponse struct {
	Summary   model.Summary        `json:"summary"`
	Invoice   *model.InvoiceRecord `json:"invoice"`
	Artifacts []model.Artifact     `json:"artifacts"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
	Field  string   `json:"field,omitempty"`
}

// CalculateResponse is the response for calculate endpoint
type CalculateResponse struct {
	Currency       string `json:"currency"`
	FormattedTotal string `json:"formattedTotal"`
	model.InvoiceAmounts
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// decodeJSON decodes exactly one JSON value from body
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
