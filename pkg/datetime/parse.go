// Package datetime provides the month arithmetic used to date amortization rows.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/tvm-solver/pkg/constants"
)

const (
	// DateTimeLayout is the format expected for start dates and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// ParseMonth parses a YYYY-MM string into the first day of that month.
func ParseMonth(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("month value cannot be empty")
	}
	t, err := time.Parse(DateTimeLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", value, err)
	}
	return t, nil
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date string, months int) (string, error) {
	t, err := ParseMonth(date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(DateTimeLayout), nil
}

// MonthSequence returns count consecutive months beginning with start.
func MonthSequence(start string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("month count cannot be negative: %d", count)
	}
	t, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}
	months := make([]string, count)
	for i := range months {
		months[i] = t.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return months, nil
}
