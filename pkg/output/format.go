// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/tvm-solver/internal/calculation"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/loans"
	"github.com/iwvelando/tvm-solver/pkg/mathutil"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	resultHeader   = []string{"name", "kind", "field", "value", "iterations", "status", "error"}
	scheduleHeader = []string{"period", "date", "payment", "principal", "interest", "balance"}
)

// Amount renders a currency amount with two decimal places. Non-finite
// values are rendered as NaN, +Inf or -Inf.
func Amount(value float64) string {
	return fixed(value, constants.AmountPlaces)
}

// Rate renders a periodic rate with six decimal places.
func Rate(value float64) string {
	return fixed(value, constants.RatePlaces)
}

// Percentage renders a fractional rate as a percentage with four decimal
// places, e.g. 0.0041667 as 0.4167.
func Percentage(value float64) string {
	return fixed(mathutil.ToPercentage(value), 4)
}

// Value renders a solved value according to the field it belongs to.
func Value(field string, value float64) string {
	if field == tvm.FieldRate.String() {
		return Rate(value)
	}
	return Amount(value)
}

func fixed(value float64, places int32) string {
	if !mathutil.IsFinite(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return decimal.NewFromFloat(value).StringFixed(places)
}

// Status turns a status such as max_iterations into "Max Iterations".
func Status(status string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(status, "_", " "))
}

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []calculation.Result) {
	for i, result := range results {
		if i > 0 {
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "--- Results for %s %s ---\n", result.Kind, result.Name)
		if result.Failed() && result.Field == "" {
			fmt.Fprintf(w, "Error: %s\n", result.Error)
			continue
		}

		fmt.Fprintf(w, "Field | Value | Status\n")
		fmt.Fprintf(w, "_____ | _____ | ______\n")
		status := Status(result.Status)
		if result.Iterations > 0 {
			status = fmt.Sprintf("%s (%d iterations)", status, result.Iterations)
		}
		fmt.Fprintf(w, "%s | %s | %s\n", result.Field, Value(result.Field, result.Value), status)
		if result.Field == tvm.FieldRate.String() && mathutil.IsFinite(result.Value) {
			fmt.Fprintf(w, "Rate per period: %s%%\n", Percentage(result.Value))
		}
		if result.Failed() {
			fmt.Fprintf(w, "Error: %s\n", result.Error)
		}

		if result.Schedule != nil {
			fmt.Fprintf(w, "\n")
			PrettySchedule(w, *result.Schedule)
		}
	}
}

// PrettySchedule writes an amortization schedule followed by its totals.
func PrettySchedule(w io.Writer, schedule loans.Schedule) {
	fmt.Fprintf(w, "Period | Date    | Payment | Principal | Interest | Balance\n")
	fmt.Fprintf(w, "______ | ____    | _______ | _________ | ________ | _______\n")
	for _, row := range schedule.Rows {
		date := row.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(w, "%d | %s | %s | %s | %s | %s\n",
			row.Period, date, Amount(row.Payment), Amount(row.Principal), Amount(row.Interest), Amount(row.Balance))
	}
	fmt.Fprintf(w, "Monthly payment: %s\n", Amount(schedule.MonthlyPayment))
	fmt.Fprintf(w, "Total payments: %s\n", Amount(schedule.TotalPayments))
	fmt.Fprintf(w, "Total interest: %s\n", Amount(schedule.TotalInterest))
}

// CsvFormat writes the results table in comma-separated value format,
// followed by one schedule table per amortized loan. Tables are separated by
// an empty line.
func CsvFormat(w io.Writer, results []calculation.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(resultHeader); err != nil {
		return err
	}
	for _, result := range results {
		if err := writer.Write(resultRecord(result)); err != nil {
			return err
		}
	}

	for _, result := range results {
		if result.Schedule == nil {
			continue
		}
		writer.Flush()
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		if err := writer.Write([]string{"loan", result.Name}); err != nil {
			return err
		}
		if err := writeScheduleRecords(writer, *result.Schedule); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ScheduleCsvFormat writes a single amortization schedule as CSV.
func ScheduleCsvFormat(w io.Writer, schedule loans.Schedule) error {
	writer := csv.NewWriter(w)
	if err := writeScheduleRecords(writer, schedule); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeScheduleRecords(writer *csv.Writer, schedule loans.Schedule) error {
	if err := writer.Write(scheduleHeader); err != nil {
		return err
	}
	for _, row := range schedule.Rows {
		if err := writer.Write(scheduleRecord(row)); err != nil {
			return err
		}
	}
	return nil
}

func resultRecord(result calculation.Result) []string {
	value := ""
	if result.Field != "" {
		value = Value(result.Field, result.Value)
	}
	iterations := ""
	if result.Iterations > 0 {
		iterations = strconv.Itoa(result.Iterations)
	}
	return []string{result.Name, result.Kind, result.Field, value, iterations, result.Status, result.Error}
}

func scheduleRecord(row loans.Row) []string {
	return []string{
		strconv.Itoa(row.Period),
		row.Date,
		Amount(row.Payment),
		Amount(row.Principal),
		Amount(row.Interest),
		Amount(row.Balance),
	}
}
