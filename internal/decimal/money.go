package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal computes round2(quantity * unitPrice)
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(unitPrice))
}

// Percentage computes round2(amount * rate/100)
func Percentage(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(ratePercent).Div(hundred))
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// OrZero dereferences an optional decimal, treating nil as zero.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return Zero
	}
	return *d
}
