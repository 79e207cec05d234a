package validation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/validation"
)

func num(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validInput() *model.Input {
	return &model.Input{
		CompanyInfo: &model.Party{Name: "Acme LLC"},
		ClientInfo:  &model.Party{Name: "Globex"},
		Items: []model.Item{
			{Description: "Consulting", Quantity: num("2"), UnitPrice: num("150")},
			{Description: "Hosting", Quantity: num("1"), UnitPrice: num("0")},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, validation.Validate(validInput()))

	in := validInput()
	in.OutputFormats = []string{"PDF", "HTML", "JSON"}
	require.NoError(t, validation.Validate(in))
}

func TestValidate_FirstFailure(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *model.Input)
		field   string
		message string
	}{
		{
			name:    "missing company",
			mutate:  func(in *model.Input) { in.CompanyInfo = nil },
			field:   "companyInfo",
			message: "Company information is required",
		},
		{
			name:    "empty company name",
			mutate:  func(in *model.Input) { in.CompanyInfo.Name = "" },
			field:   "companyInfo.name",
			message: "Company name is required",
		},
		{
			name: "company checked before client",
			mutate: func(in *model.Input) {
				in.CompanyInfo.Name = ""
				in.ClientInfo = nil
			},
			field:   "companyInfo.name",
			message: "Company name is required",
		},
		{
			name:    "missing client",
			mutate:  func(in *model.Input) { in.ClientInfo = nil },
			field:   "clientInfo",
			message: "Client information is required",
		},
		{
			name:    "empty client name",
			mutate:  func(in *model.Input) { in.ClientInfo.Name = "  " },
			field:   "clientInfo.name",
			message: "Client name is required",
		},
		{
			name:    "no items",
			mutate:  func(in *model.Input) { in.Items = nil },
			field:   "items",
			message: "At least one invoice item is required",
		},
		{
			name:    "empty items",
			mutate:  func(in *model.Input) { in.Items = []model.Item{} },
			field:   "items",
			message: "At least one invoice item is required",
		},
		{
			name:    "missing description",
			mutate:  func(in *model.Input) { in.Items[1].Description = "" },
			field:   "items[1].description",
			message: "Item 2: Description is required",
		},
		{
			name:    "missing quantity",
			mutate:  func(in *model.Input) { in.Items[0].Quantity = nil },
			field:   "items[0].quantity",
			message: "Item 1: Quantity must be a positive number",
		},
		{
			name:    "zero quantity",
			mutate:  func(in *model.Input) { in.Items[0].Quantity = num("0") },
			field:   "items[0].quantity",
			message: "Item 1: Quantity must be a positive number",
		},
		{
			name:    "negative unit price",
			mutate:  func(in *model.Input) { in.Items[1].UnitPrice = num("-0.01") },
			field:   "items[1].unitPrice",
			message: "Item 2: Unit price must be a non-negative number",
		},
		{
			name:    "missing unit price",
			mutate:  func(in *model.Input) { in.Items[0].UnitPrice = nil },
			field:   "items[0].unitPrice",
			message: "Item 1: Unit price must be a non-negative number",
		},
		{
			name: "earlier item reported first",
			mutate: func(in *model.Input) {
				in.Items[0].UnitPrice = nil
				in.Items[1].Description = ""
			},
			field:   "items[0].unitPrice",
			message: "Item 1: Unit price must be a non-negative number",
		},
		{
			name:    "empty format list",
			mutate:  func(in *model.Input) { in.OutputFormats = []string{} },
			field:   "outputFormats",
			message: "At least one output format is required",
		},
		{
			name:    "unknown format",
			mutate:  func(in *model.Input) { in.OutputFormats = []string{"PDF", "DOCX"} },
			field:   "outputFormats",
			message: "Invalid output format: DOCX. Valid formats are: PDF, HTML, JSON",
		},
		{
			name:    "lower-case format rejected",
			mutate:  func(in *model.Input) { in.OutputFormats = []string{"pdf"} },
			field:   "outputFormats",
			message: "Invalid output format: pdf. Valid formats are: PDF, HTML, JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)

			err := validation.Validate(in)
			require.Error(t, err)

			var vErr *model.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_NilInput(t *testing.T) {
	err := validation.Validate(nil)
	require.Error(t, err)
	assert.Equal(t, "Input is required", err.Error())
}

func TestValidate_DoesNotMutate(t *testing.T) {
	in := validInput()
	in.Items[0].Unit = ""
	require.NoError(t, validation.Validate(in))
	assert.Empty(t, in.Items[0].Unit)
	assert.Nil(t, in.InvoiceDetails)
}

func TestValidate_NegativeRatesPassThrough(t *testing.T) {
	in := validInput()
	in.InvoiceDetails = &model.InvoiceDetails{TaxRate: num("-5"), DiscountRate: num("-10")}
	require.NoError(t, validation.Validate(in))
}

func TestValidate_RejectsQuotedNumbers(t *testing.T) {
	tests := []struct {
		name    string
		item    string
		message string
		field   string
	}{
		{
			name:    "quoted quantity",
			item:    `{"description":"Widget","quantity":"3","unitPrice":1.5}`,
			message: "Item 1: Quantity must be a positive number",
			field:   "items[0].quantity",
		},
		{
			name:    "quoted unit price",
			item:    `{"description":"Widget","quantity":3,"unitPrice":"1.5"}`,
			message: "Item 1: Unit price must be a non-negative number",
			field:   "items[0].unitPrice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"companyInfo":{"name":"Acme"},"clientInfo":{"name":"Globex"},"items":[` + tt.item + `]}`
			var in model.Input
			require.NoError(t, json.Unmarshal([]byte(raw), &in))

			err := validation.Validate(&in)
			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
