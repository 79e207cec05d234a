// Package currency formats amounts for display using a fixed table of
// currency symbols and decimal places. Unknown codes fall back to USD.
package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Position is where the symbol is printed relative to the amount
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// Info describes how a currency is displayed
type Info struct {
	Code     string   `json:"code"`
	Symbol   string   `json:"symbol"`
	Position Position `json:"position"`
	Decimals int32    `json:"decimals"`
	Name     string   `json:"name"`
}

// Fallback is the code used for unknown currencies
const Fallback = "USD"

var table = map[string]Info{
	"USD": {Code: "USD", Symbol: "$", Position: PositionBefore, Decimals: 2, Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Position: PositionBefore, Decimals: 2, Name: "Euro"},
	"GBP": {Code: "GBP", Symbol: "£", Position: PositionBefore, Decimals: 2, Name: "British Pound"},
	"JPY": {Code: "JPY", Symbol: "¥", Position: PositionBefore, Decimals: 0, Name: "Japanese Yen"},
	"CAD": {Code: "CAD", Symbol: "CA$", Position: PositionBefore, Decimals: 2, Name: "Canadian Dollar"},
	"AUD": {Code: "AUD", Symbol: "A$", Position: PositionBefore, Decimals: 2, Name: "Australian Dollar"},
	"CHF": {Code: "CHF", Symbol: "CHF", Position: PositionBefore, Decimals: 2, Name: "Swiss Franc"},
	"CNY": {Code: "CNY", Symbol: "¥", Position: PositionBefore, Decimals: 2, Name: "Chinese Yuan"},
	"INR": {Code: "INR", Symbol: "₹", Position: PositionBefore, Decimals: 2, Name: "Indian Rupee"},
}

// Lookup returns the display info for code and whether it is known.
// Unknown codes return the fallback entry.
func Lookup(code string) (Info, bool) {
	if info, ok := table[code]; ok {
		return info, true
	}
	return table[Fallback], false
}

// Symbol returns the currency symbol for code
func Symbol(code string) string {
	info, _ := Lookup(code)
	return info.Symbol
}

// Name returns the currency name for code
func Name(code string) string {
	info, _ := Lookup(code)
	return info.Name
}

// All returns every known currency sorted by code
func All() []Info {
	out := make([]Info, 0, len(table))
	for _, info := range table {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Format renders amount with the symbol, the currency's decimal places and
// comma thousands separators, e.g. 1234.5 USD -> "$1,234.50"
func Format(amount decimal.Decimal, code string) string {
	info, _ := Lookup(code)
	formatted := group(amount.StringFixed(info.Decimals))

	if info.Position == PositionAfter {
		return formatted + " " + info.Symbol
	}
	return info.Symbol + formatted
}

// group inserts thousands separators into the integer part of a fixed-point string
func group(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
