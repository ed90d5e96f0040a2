// Package credit holds the pure input-credit arithmetic: cost splits,
// down-payment validation, repayment scheduling and overdue classification.
// Every function is a deterministic computation over its inputs; persistence
// and transactions live in the calling layers.
package credit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDueDays is the default number of calendar days between order
// approval and the remaining-balance due date.
const DefaultDueDays = 30

// half is the fixed 50:50 credit split.
var half = decimal.NewFromFloat(0.5)

// epsilon tolerates floating-point rounding from currency parsing on the
// client side. It is not a business tolerance: the policy is exactly 50%,
// not "at least 50%".
var epsilon = decimal.NewFromFloat(0.01)

// TotalCost returns quantity × unitPrice. Both operands must be strictly
// positive; validating that is the caller's job.
func TotalCost(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// DownPayment returns the required upfront payment: 50% of total cost.
func DownPayment(totalCost decimal.Decimal) decimal.Decimal {
	return totalCost.Mul(half)
}

// RemainingBalance returns the balance due after the down payment.
// Algebraically identical to DownPayment under the fixed split; kept as a
// separate name so call sites read correctly.
func RemainingBalance(totalCost decimal.Decimal) decimal.Decimal {
	return totalCost.Mul(half)
}

// ValidDownPayment reports whether a recorded down payment matches the
// required 50% of total cost within epsilon.
func ValidDownPayment(totalCost, recorded decimal.Decimal) bool {
	required := DownPayment(totalCost)
	return recorded.Sub(required).Abs().LessThan(epsilon)
}

// ScheduleDueDate returns the repayment due date: approvedAt plus
// daysUntilDue calendar days. AddDate handles month and year rollover.
func ScheduleDueDate(approvedAt time.Time, daysUntilDue int) time.Time {
	if daysUntilDue <= 0 {
		daysUntilDue = DefaultDueDays
	}
	return approvedAt.AddDate(0, 0, daysUntilDue)
}

// IsOverdue reports whether a payment due at dueDate is overdue as of now.
// A payment due exactly at now is not overdue.
func IsOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// Badge variants for status presentation.
const (
	VariantDefault     = "default"
	VariantSecondary   = "secondary"
	VariantDestructive = "destructive"
	VariantOutline     = "outline"
)

// StatusVariant maps an order or payment status to its badge variant.
// Case-insensitive and total: unknown statuses map to outline.
func StatusVariant(status string) string {
	switch strings.ToLower(status) {
	case "approved", "paid":
		return VariantDefault
	case "pending":
		return VariantSecondary
	case "rejected", "overdue":
		return VariantDestructive
	default:
		return VariantOutline
	}
}
