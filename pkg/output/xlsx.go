package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/tvm-solver/internal/calculation"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/loans"
	"github.com/iwvelando/tvm-solver/pkg/mathutil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SolutionsSheet is the name of the workbook sheet listing every result.
const SolutionsSheet = "Solutions"

const maxSheetNameLength = 31

// XlsxFormat writes results to an Excel workbook at path. The first sheet
// lists every result; each amortized loan gets its own schedule sheet.
func XlsxFormat(path string, results []calculation.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SolutionsSheet); err != nil {
		return fmt.Errorf("failed to name solutions sheet: %w", err)
	}

	if err := setRow(f, SolutionsSheet, 1, toCells(resultHeader)); err != nil {
		return err
	}
	for i, result := range results {
		if err := setRow(f, SolutionsSheet, i+2, toCells(resultRecord(result))); err != nil {
			return err
		}
	}

	used := make(map[string]struct{})
	for _, result := range results {
		if result.Schedule == nil {
			continue
		}
		sheet := sheetName(result.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet for loan %s: %w", result.Name, err)
		}
		if err := writeScheduleSheet(f, sheet, *result.Schedule); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeScheduleSheet(f *excelize.File, sheet string, schedule loans.Schedule) error {
	if err := setRow(f, sheet, 1, toCells(scheduleHeader)); err != nil {
		return err
	}
	for i, row := range schedule.Rows {
		cells := []interface{}{
			row.Period,
			row.Date,
			roundedAmount(row.Payment),
			roundedAmount(row.Principal),
			roundedAmount(row.Interest),
			roundedAmount(row.Balance),
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// roundedAmount keeps schedule cells numeric while matching the two decimal
// places used by the other formats.
func roundedAmount(value float64) interface{} {
	if !mathutil.IsFinite(value) {
		return Amount(value)
	}
	return decimal.NewFromFloat(value).Round(constants.AmountPlaces).InexactFloat64()
}

// sheetName derives a unique, Excel-safe sheet name from a loan name.
func sheetName(name string, used map[string]struct{}) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if base == "" {
		base = "Loan"
	}
	if len([]rune(base)) > maxSheetNameLength {
		base = string([]rune(base)[:maxSheetNameLength])
	}

	candidate := base
	for n := 2; ; n++ {
		if _, taken := used[strings.ToLower(candidate)]; !taken && !strings.EqualFold(candidate, SolutionsSheet) {
			break
		}
		suffix := fmt.Sprintf(" (%d)", n)
		trimmed := []rune(base)
		if len(trimmed)+len(suffix) > maxSheetNameLength {
			trimmed = trimmed[:maxSheetNameLength-len(suffix)]
		}
		candidate = string(trimmed) + suffix
	}
	used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}
