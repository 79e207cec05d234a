// Package calculator derives line totals, subtotal, discount, tax and grand
// total from validated items. Every monetary value is rounded to 2 places at
// the step that produces it.
package calculator

import (
	"github.com/shopspring/decimal"

	money "github.com/rezonia/invoice-generator/internal/decimal"
	"github.com/rezonia/invoice-generator/internal/model"
)

// LineTotal computes round2(quantity * unitPrice)
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return money.LineTotal(quantity, unitPrice)
}

// Subtotal sums the individually rounded line totals of the raw items
func Subtotal(items []model.Item) decimal.Decimal {
	lines := make([]decimal.Decimal, len(items))
	for i, item := range items {
		lines[i] = LineTotal(money.OrZero(item.Quantity), money.OrZero(item.UnitPrice))
	}
	return money.Sum(lines)
}

// Discount computes round2(subtotal * discountRate/100)
func Discount(subtotal, discountRate decimal.Decimal) decimal.Decimal {
	return money.Percentage(subtotal, discountRate)
}

// Tax computes round2((subtotal - discount) * taxRate/100)
func Tax(subtotal, discount, taxRate decimal.Decimal) decimal.Decimal {
	return money.Percentage(subtotal.Sub(discount), taxRate)
}

// Total computes round2(subtotal - discount + tax)
func Total(subtotal, discount, tax decimal.Decimal) decimal.Decimal {
	return money.Round2(subtotal.Sub(discount).Add(tax))
}

// Calculate derives all invoice amounts. Nil rates count as zero; negative
// rates are applied as signed adjustments.
func Calculate(items []model.Item, taxRate, discountRate *decimal.Decimal) model.InvoiceAmounts {
	tr := money.OrZero(taxRate)
	dr := money.OrZero(discountRate)

	lines := make([]model.LineItem, len(items))
	for i, item := range items {
		qty := money.OrZero(item.Quantity)
		price := money.OrZero(item.UnitPrice)
		lines[i] = model.LineItem{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   price,
			Unit:        item.Unit,
			LineTotal:   LineTotal(qty, price),
		}
	}

	subtotal := Subtotal(items)
	discount := Discount(subtotal, dr)
	tax := Tax(subtotal, discount, tr)

	return model.InvoiceAmounts{
		Items:        lines,
		Subtotal:     subtotal,
		Discount:     discount,
		DiscountRate: dr,
		Tax:          tax,
		TaxRate:      tr,
		Total:        Total(subtotal, discount, tax),
	}
}
