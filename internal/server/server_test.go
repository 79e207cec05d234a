package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/server"
)

const validInput = `{
	"companyInfo": {"name": "Acme Corp"},
	"clientInfo": {"name": "Globex"},
	"items": [{"description": "Widget", "quantity": 4, "unitPrice": 25}],
	"invoiceDetails": {"invoiceNumber": "INV-TEST-1", "invoiceDate": "2024-03-01", "taxRate": 8, "discountRate": 10}
}`

func newTestServer(printer render.Printer) *server.Server {
	gen := generator.New(generator.WithPrinter(printer))
	config := &server.Config{
		Address: ":8080",
		Debug:   true,
	}
	return server.NewServer(config, gen, nil)
}

func okPrinter() render.Printer {
	return render.PrinterFunc(func(context.Context, []byte) ([]byte, error) {
		return []byte("%PDF-1.7 test"), nil
	})
}

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestGenerateEndpoint(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodPost, "/api/v1/invoices", validInput)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response server.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "INV-TEST-1", response.Summary.InvoiceNumber)
	assert.Equal(t, "generated", response.Summary.Status)
	assert.Equal(t, "97.20", response.Summary.TotalAmount.StringFixed(2))
	require.Len(t, response.Artifacts, 2)
	assert.Equal(t, []byte("%PDF-1.7 test"), response.Artifacts[0].Content)
	require.NotNil(t, response.Invoice)
	assert.Equal(t, "March 31, 2024", response.Invoice.DueDate)
}

func TestGenerateFormatEndpoint(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodPost, "/api/v1/invoices/html", validInput)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
	assert.Equal(t, "INV-TEST-1", w.Header().Get(server.HeaderInvoiceNumber))
	assert.Equal(t, `attachment; filename="invoice_INV-TEST-1_html.html"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "$97.20")
}

func TestGenerateFormatEndpoint_UnknownFormat(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodPost, "/api/v1/invoices/docx", validInput)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid output format: docx")
}

func TestGenerateEndpoint_Errors(t *testing.T) {
	failing := render.PrinterFunc(func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("browser crashed")
	})

	tests := []struct {
		name    string
		printer render.Printer
		body    string
		code    int
		message string
	}{
		{
			name:    "empty body",
			printer: okPrinter(),
			body:    "",
			code:    http.StatusBadRequest,
			message: "empty request body",
		},
		{
			name:    "malformed json",
			printer: okPrinter(),
			body:    `{"companyInfo":`,
			code:    http.StatusBadRequest,
			message: "invalid JSON body",
		},
		{
			name:    "validation error",
			printer: okPrinter(),
			body:    `{"companyInfo": {"name": "Acme"}, "clientInfo": {"name": "Globex"}, "items": []}`,
			code:    http.StatusBadRequest,
			message: "At least one invoice item is required",
		},
		{
			name:    "date error",
			printer: okPrinter(),
			body:    `{"companyInfo": {"name": "Acme"}, "clientInfo": {"name": "Globex"}, "items": [{"description": "x", "quantity": 1, "unitPrice": 1}], "invoiceDetails": {"invoiceDate": "2024-13-01"}}`,
			code:    http.StatusBadRequest,
			message: "Invalid invoice date format. Use YYYY-MM-DD",
		},
		{
			name:    "render error",
			printer: failing,
			body:    validInput,
			code:    http.StatusBadGateway,
			message: "rendering failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(tt.printer), http.MethodPost, "/api/v1/invoices", tt.body)

			assert.Equal(t, tt.code, w.Code)
			var response server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.message, response.Error)
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(okPrinter())

	w := do(t, srv, http.MethodPost, "/api/v1/validate", validInput)
	require.Equal(t, http.StatusOK, w.Code)
	var ok server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)

	w = do(t, srv, http.MethodPost, "/api/v1/validate",
		`{"companyInfo": {"name": "Acme"}, "clientInfo": {"name": "Globex"}, "items": [{"description": "x", "quantity": 0, "unitPrice": 1}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var bad server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	assert.Equal(t, []string{"Item 1: Quantity must be a positive number"}, bad.Errors)
	assert.Equal(t, "items[0].quantity", bad.Field)
}

func TestCalculateEndpoint(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodPost, "/api/v1/calculate", validInput)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "USD", response["currency"])
	assert.Equal(t, "$97.20", response["formattedTotal"])
	assert.Equal(t, "100", response["subtotal"])
	assert.Equal(t, "10", response["discount"])
	assert.Equal(t, "7.2", response["tax"])
	assert.Equal(t, "97.2", response["total"])
}

func TestCurrenciesEndpoint(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodGet, "/api/v1/currencies", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Currencies []map[string]any `json:"currencies"`
		Default    string           `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Currencies, 9)
	assert.Equal(t, "USD", response.Default)
}

func TestRequestIDHeader(t *testing.T) {
	w := do(t, newTestServer(okPrinter()), http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGenerateEndpoint_LogsCarryRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gen := generator.New(generator.WithPrinter(okPrinter()))
	srv := server.NewServer(&server.Config{Address: ":8080"}, gen, zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader([]byte(validInput)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	generated := logs.FilterMessage("invoice generated").All()
	require.Len(t, generated, 1)
	fields := generated[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.NotEmpty(t, fields["generation_id"])
	assert.Contains(t, generated[0].LoggerName, "generator")
}
