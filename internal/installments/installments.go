// Package installments expands a total amount into a monthly payment
// schedule. The generator is pure: identical inputs always produce the
// identical sequence.
package installments

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidCount rejects schedules with zero or negative installments.
var ErrInvalidCount = errors.New("installment count must be positive")

// ErrInvalidFirstDue rejects malformed first-due months.
var ErrInvalidFirstDue = errors.New("first due month must be in MM-YYYY format")

// Installment is one generated payment of a schedule.
type Installment struct {
	// LabelSuffix is the human-readable "i of n" marker, display only.
	LabelSuffix string
	Amount      decimal.Decimal
	DueDate     time.Time
}

// Generate splits total into count monthly installments. firstDue is the
// month of the first payment in "MM-YYYY" form; anchorDay is the target
// day of month, clamped to each month's last valid day (31 in a 30-day
// month pays on the 30th, in February on the 28th or 29th).
//
// The per-installment amount is total/count truncated to two decimal
// places; any rounding remainder is accepted as-is, not redistributed.
func Generate(total decimal.Decimal, count int, firstDue string, anchorDay int) ([]Installment, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	first, err := time.Parse("01-2006", firstDue)
	if err != nil {
		return nil, ErrInvalidFirstDue
	}

	amount := total.Div(decimal.NewFromInt(int64(count))).Truncate(2)

	// Start one month back so the first advance lands on the requested
	// first-due month.
	cursor := first.AddDate(0, -1, 0)

	schedule := make([]Installment, 0, count)
	for i := 1; i <= count; i++ {
		cursor = nextDueDate(cursor, anchorDay)
		schedule = append(schedule, Installment{
			LabelSuffix: fmt.Sprintf("%d of %d", i, count),
			Amount:      amount,
			DueDate:     cursor,
		})
	}
	return schedule, nil
}

// nextDueDate moves to the anchor day in the month after ref, clamping
// the anchor to that month's last valid day.
func nextDueDate(ref time.Time, anchorDay int) time.Time {
	year, month, _ := ref.Date()
	// Day 0 of the month after next is the last day of the next month.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, time.UTC).Day()

	day := anchorDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month+1, day, 0, 0, 0, 0, time.UTC)
}
