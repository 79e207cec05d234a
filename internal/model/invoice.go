package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Default values applied when the input omits a field
const (
	DefaultUnit     = "units"
	DefaultCurrency = "USD"
	DefaultTemplate = "modern"
	DefaultDueDays  = 30
)

// Input is a single invoice generation request
type Input struct {
	CompanyInfo    *Party          `json:"companyInfo"`
	ClientInfo     *Party          `json:"clientInfo"`
	Items          []Item          `json:"items"`
	InvoiceDetails *InvoiceDetails `json:"invoiceDetails,omitempty"`
	PaymentTerms   string          `json:"paymentTerms,omitempty"`
	CustomFields   []CustomField   `json:"customFields,omitempty"`
	OutputFormats  []string        `json:"outputFormats,omitempty"`
	Template       string          `json:"template,omitempty"`
}

// Details returns the invoice details, never nil
func (in *Input) Details() InvoiceDetails {
	if in == nil || in.InvoiceDetails == nil {
		return InvoiceDetails{}
	}
	return *in.InvoiceDetails
}

// Party holds company or client display information
type Party struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Website    string `json:"website,omitempty"`
	TaxID      string `json:"taxId,omitempty"`
	Logo       string `json:"logo,omitempty"`
}

// Item is a raw billable row as supplied by the caller.
// Quantity and UnitPrice are pointers so a missing value can be told apart from zero.
type Item struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Unit        string           `json:"unit,omitempty"`
}

// UnmarshalJSON accepts quantity and unitPrice only as JSON numbers. Any
// other value, including a quoted number, leaves the field nil so the
// validator rejects the item.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		Quantity  json.RawMessage `json:"quantity"`
		UnitPrice json.RawMessage `json:"unitPrice"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*it = Item(raw.plain)
	var err error
	if it.Quantity, err = jsonNumber(raw.Quantity); err != nil {
		return err
	}
	if it.UnitPrice, err = jsonNumber(raw.UnitPrice); err != nil {
		return err
	}
	return nil
}

// jsonNumber returns the decimal for a JSON number literal, or nil for
// anything else
func jsonNumber(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InvoiceDetails carries optional numbering, dating and rate settings
type InvoiceDetails struct {
	InvoiceNumber string           `json:"invoiceNumber,omitempty"`
	InvoiceDate   string           `json:"invoiceDate,omitempty"`
	DueDate       string           `json:"dueDate,omitempty"`
	DueDays       *int             `json:"dueDays,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	TaxRate       *decimal.Decimal `json:"taxRate,omitempty"`
	DiscountRate  *decimal.Decimal `json:"discountRate,omitempty"`
	PurchaseOrder string           `json:"purchaseOrder,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// CustomField is a free-form label/value pair printed on the invoice
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LineItem is a validated row with its derived line total
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Unit        string          `json:"unit"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// InvoiceAmounts is the derived monetary summary of an invoice.
//
// Invariants:
//
//	Subtotal == sum(round2(Quantity*UnitPrice))
//	Discount == round2(Subtotal*DiscountRate/100)
//	Tax      == round2((Subtotal-Discount)*TaxRate/100)
//	Total    == round2(Subtotal-Discount+Tax)
type InvoiceAmounts struct {
	Items        []LineItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	Tax          decimal.Decimal `json:"tax"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	Total        decimal.Decimal `json:"total"`
}

// InvoiceRecord is the canonical, fully assembled invoice used by every renderer
type InvoiceRecord struct {
	CompanyInfo   Party         `json:"companyInfo"`
	ClientInfo    Party         `json:"clientInfo"`
	InvoiceNumber string        `json:"invoiceNumber"`
	InvoiceDate   string        `json:"invoiceDate"`
	DueDate       string        `json:"dueDate"`
	Currency      string        `json:"currency"`
	PurchaseOrder string        `json:"purchaseOrder,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	PaymentTerms  string        `json:"paymentTerms,omitempty"`
	CustomFields  []CustomField `json:"customFields,omitempty"`
	Template      string        `json:"template"`

	InvoiceAmounts
}

// Artifact is one rendered output of a generation call
type Artifact struct {
	Format      Format `json:"format"`
	Content     []byte `json:"content"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Location    string `json:"location,omitempty"`
}

// NewArtifact builds an artifact and derives its size from the content
func NewArtifact(format Format, content []byte) Artifact {
	return Artifact{
		Format:      format,
		Content:     content,
		ContentType: format.ContentType(),
		Size:        len(content),
	}
}

// OutputInfo is the per-format entry of a summary
type OutputInfo struct {
	Format   Format `json:"format"`
	Size     int    `json:"size"`
	Location string `json:"location,omitempty"`
}

// StatusGenerated marks a summary for a completed generation
const StatusGenerated = "generated"

// Summary is the externally observable result of one generation call
type Summary struct {
	GenerationID  string          `json:"generationId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate"`
	ClientName    string          `json:"clientName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	Outputs       []OutputInfo    `json:"outputs"`
	Timestamp     time.Time       `json:"timestamp"`
}
