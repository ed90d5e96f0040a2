// Package currency formats amounts for display. The engine and storage work
// on numeric decimals only; formatting happens at the presentation boundary
// (API responses and SMS messages).
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Code is the fixed display currency.
const Code = "KES"

// Format renders an amount as "KES 12,345.50" with grouped thousands and
// two decimal places.
func Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	grouped := group(parts[0])

	var b strings.Builder
	b.WriteString(Code)
	b.WriteByte(' ')
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(grouped)
	b.WriteByte('.')
	b.WriteString(parts[1])
	return b.String()
}

// group inserts thousands separators into a digit string
func group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
