// Package money formats currency amounts for display under the Indian
// numbering convention (thousand, lakh, crore).
//
// Formatting is lossy and display-only: callers aggregate raw float64
// values and format at the very end.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the currency prefix used when none is configured.
const DefaultSymbol = "₹"

const (
	thousand = 1e3
	lakh     = 1e5
	crore    = 1e7
)

// Formatter renders amounts with a fixed currency symbol.
type Formatter struct {
	Symbol string
}

// Default is the rupee formatter.
var Default = Formatter{Symbol: DefaultSymbol}

// Format renders v rounded to whole units with Indian digit grouping,
// e.g. 1234567.8 -> "₹12,34,568".
func (f Formatter) Format(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + f.Symbol + GroupDigits(d.Abs().StringFixed(0))
}

// Compact renders v with a one-decimal suffix: K for thousands, L for lakhs,
// Cr for crores. Amounts under a thousand fall back to Format.
func (f Formatter) Compact(v float64) string {
	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	abs, _ := d.Float64()
	switch {
	case abs >= crore:
		return sign + f.Symbol + d.Shift(-7).StringFixed(1) + "Cr"
	case abs >= lakh:
		return sign + f.Symbol + d.Shift(-5).StringFixed(1) + "L"
	case abs >= thousand:
		return sign + f.Symbol + d.Shift(-3).StringFixed(1) + "K"
	}
	return sign + f.Format(abs)
}

// Format formats v with the default symbol.
func Format(v float64) string { return Default.Format(v) }

// Compact compacts v with the default symbol.
func Compact(v float64) string { return Default.Compact(v) }

// Percent renders a rate already expressed in percent, e.g. 12.345 -> "12.3%".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// GroupDigits inserts Indian grouping commas into a plain digit string:
// the last three digits, then pairs ("12345678" -> "1,23,45,678").
func GroupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
