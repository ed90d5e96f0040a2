package credit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestTotalCost(t *testing.T) {
	cases := []struct {
		quantity, unitPrice, expected string
	}{
		{"10", "1000", "10000"},
		{"2.5", "400", "1000"},
		{"1", "0.01", "0.01"},
		{"3", "333.33", "999.99"},
	}
	for _, tc := range cases {
		got := TotalCost(d(tc.quantity), d(tc.unitPrice))
		assert.True(t, got.Equal(d(tc.expected)),
			"TotalCost(%s, %s) = %s, want %s", tc.quantity, tc.unitPrice, got, tc.expected)
	}
}

func TestSplitSumsToTotal(t *testing.T) {
	// down payment + remaining balance must reconstruct the total exactly,
	// with no drift at currency-minor-unit precision
	totals := []string{"10000", "999.99", "0.01", "123456.78", "77.77"}
	for _, s := range totals {
		total := d(s)
		sum := DownPayment(total).Add(RemainingBalance(total))
		assert.True(t, sum.Equal(total), "split of %s sums to %s", total, sum)
	}
}

func TestValidDownPayment(t *testing.T) {
	assert.True(t, ValidDownPayment(d("10000"), d("5000")))
	assert.True(t, ValidDownPayment(d("0"), d("0")))
	assert.True(t, ValidDownPayment(d("999.99"), d("499.995")))

	// off by a whole unit
	assert.False(t, ValidDownPayment(d("10000"), d("4999")))
	// off by more than epsilon
	assert.False(t, ValidDownPayment(d("10000"), d("5000.02")))
	// exactly epsilon is rejected (strict less-than)
	assert.False(t, ValidDownPayment(d("10000"), d("5000.01")))
	// partial payments are never valid, the policy is exact 50%
	assert.False(t, ValidDownPayment(d("10000"), d("6000")))
}

func TestScheduleDueDate(t *testing.T) {
	day := func(y int, m time.Month, dd int) time.Time {
		return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, day(2024, time.February, 14), ScheduleDueDate(day(2024, time.January, 15), 30))
	// month rollover from a day-31 start produces a valid March date
	assert.Equal(t, day(2024, time.March, 1), ScheduleDueDate(day(2024, time.January, 31), 30))
	assert.Equal(t, day(2024, time.March, 31), ScheduleDueDate(day(2024, time.March, 1), 30))
	// year rollover
	assert.Equal(t, day(2025, time.January, 14), ScheduleDueDate(day(2024, time.December, 15), 30))
	// non-positive offset falls back to the default
	assert.Equal(t, day(2024, time.January, 31), ScheduleDueDate(day(2024, time.January, 1), 0))
}

func TestIsOverdue(t *testing.T) {
	due := time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsOverdue(due, due), "due exactly now is not overdue")
	assert.True(t, IsOverdue(due, due.Add(time.Second)))
	assert.False(t, IsOverdue(due, due.Add(-time.Second)))
}

func TestStatusVariant(t *testing.T) {
	cases := []struct {
		status, variant string
	}{
		{"approved", VariantDefault},
		{"paid", VariantDefault},
		{"pending", VariantSecondary},
		{"rejected", VariantDestructive},
		{"overdue", VariantDestructive},
		{"unknown", VariantOutline},
		{"", VariantOutline},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.variant, StatusVariant(tc.status), "StatusVariant(%q)", tc.status)
	}
}

func TestStatusVariantCaseInsensitive(t *testing.T) {
	assert.Equal(t, StatusVariant("approved"), StatusVariant("APPROVED"))
	assert.Equal(t, StatusVariant("pending"), StatusVariant("Pending"))
	assert.Equal(t, StatusVariant("overdue"), StatusVariant("OverDue"))
}

func TestEndToEndOrderArithmetic(t *testing.T) {
	// quantity=10 bags at 1000 each
	total := TotalCost(d("10"), d("1000"))
	assert.True(t, total.Equal(d("10000")))

	down := DownPayment(total)
	remaining := RemainingBalance(total)
	assert.True(t, down.Equal(d("5000")))
	assert.True(t, remaining.Equal(d("5000")))

	assert.True(t, ValidDownPayment(total, d("5000")))
	assert.False(t, ValidDownPayment(total, d("4999")))

	approvedAt := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	due := ScheduleDueDate(approvedAt, DefaultDueDays)
	assert.Equal(t, time.Date(2024, time.March, 31, 9, 30, 0, 0, time.UTC), due)
}
