// Package assembler merges company, client, dating and numbering metadata
// with calculated amounts into the canonical invoice record.
package assembler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/numbering"
)

// Numberer hands out invoice numbers for a given invoice date
type Numberer interface {
	Next(date time.Time) (string, error)
	Reserve(number string) bool
}

// Assembler builds InvoiceRecords. It holds no per-call state.
type Assembler struct {
	numbers         Numberer
	now             func() time.Time
	defaultCurrency string
	defaultTemplate string
}

// Option configures the assembler
type Option func(*Assembler)

// WithNumberer sets the invoice number source
func WithNumberer(n Numberer) Option {
	return func(a *Assembler) {
		a.numbers = n
	}
}

// WithClock sets the function used for "today" when no invoice date is given
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithDefaultTemplate sets the template name used when the input names none
func WithDefaultTemplate(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.defaultTemplate = name
		}
	}
}

// New creates an assembler
func New(opts ...Option) *Assembler {
	a := &Assembler{
		now:             time.Now,
		defaultCurrency: model.DefaultCurrency,
		defaultTemplate: model.DefaultTemplate,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.numbers == nil {
		a.numbers = numbering.NewGenerator(numbering.DefaultPrefix)
	}
	return a
}

// NormalizeItems returns a copy of items with the default unit applied
func NormalizeItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Unit) == "" {
			item.Unit = model.DefaultUnit
		}
		out[i] = item
	}
	return out
}

// Assemble produces the canonical record from validated input and its
// calculated amounts. Any date failure aborts with a DateFormatError and no
// record.
func (a *Assembler) Assemble(in *model.Input, amounts model.InvoiceAmounts) (*model.InvoiceRecord, error) {
	details := in.Details()

	invoiceDateRaw := details.InvoiceDate
	if invoiceDateRaw == "" {
		invoiceDateRaw = a.now().UTC().Format(DateLayout)
	}
	invoiceDate, err := ParseDate("invoice date", invoiceDateRaw)
	if err != nil {
		return nil, err
	}

	var dueDate time.Time
	if details.DueDate != "" {
		dueDate, err = ParseDate("due date", details.DueDate)
		if err != nil {
			return nil, err
		}
	} else {
		days := model.DefaultDueDays
		if details.DueDays != nil {
			days = *details.DueDays
		}
		dueDate = DueDate(invoiceDate, days)
		// the computed date must itself be a valid YYYY-MM-DD date
		if _, err := ParseDate("due date", dueDate.Format(DateLayout)); err != nil {
			return nil, err
		}
	}

	number := details.InvoiceNumber
	if number == "" {
		number, err = a.numbers.Next(invoiceDate)
		if err != nil {
			return nil, fmt.Errorf("generate invoice number: %w", err)
		}
	} else {
		a.numbers.Reserve(number)
	}

	currencyCode := details.Currency
	if currencyCode == "" {
		currencyCode = a.defaultCurrency
	}

	tmpl := in.Template
	if tmpl == "" {
		tmpl = a.defaultTemplate
	}

	record := &model.InvoiceRecord{
		CompanyInfo:    derefParty(in.CompanyInfo),
		ClientInfo:     derefParty(in.ClientInfo),
		InvoiceNumber:  number,
		InvoiceDate:    FormatLongDate(invoiceDate),
		DueDate:        FormatLongDate(dueDate),
		Currency:       currencyCode,
		PurchaseOrder:  details.PurchaseOrder,
		Notes:          details.Notes,
		PaymentTerms:   in.PaymentTerms,
		CustomFields:   append([]model.CustomField(nil), in.CustomFields...),
		Template:       tmpl,
		InvoiceAmounts: amounts,
	}
	return record, nil
}

func derefParty(p *model.Party) model.Party {
	if p == nil {
		return model.Party{}
	}
	return *p
}
