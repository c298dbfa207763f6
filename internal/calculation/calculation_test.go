package calculation_test

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/tvm-solver/internal/calculation"
	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/testutil"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"go.uber.org/zap"
)

func testConfiguration() config.Configuration {
	return config.Configuration{
		Problems: []config.Problem{
			{
				Name: "car loan payment",
				PV:   tvm.Float(25000), FV: tvm.Float(0), Rate: tvm.Float(0.005), NPer: tvm.Float(60),
			},
			{
				Name: "savings rate", Solve: "rate",
				PV: tvm.Float(-1000), FV: tvm.Float(1967.1513572895665), PMT: tvm.Float(0), NPer: tvm.Float(10),
				Guess: 0.05,
			},
			{
				Name: "too few fields",
				PV:   tvm.Float(1000), Rate: tvm.Float(0.05),
			},
			{
				Name: "unreachable target",
				PV:   tvm.Float(0), FV: tvm.Float(1000), PMT: tvm.Float(10), Rate: tvm.Float(0.05),
			},
			{
				Name: "one-sided rate",
				PV:   tvm.Float(1000), FV: tvm.Float(1000), PMT: tvm.Float(0), NPer: tvm.Float(10),
			},
		},
		Loans: []config.Loan{
			{Name: "mortgage", Amount: 200000, AnnualRate: 0.05, TermMonths: 360, StartDate: "2026-01"},
			{Name: "bad loan", Amount: -5, AnnualRate: 0.05, TermMonths: 12},
		},
	}
}

func TestRun(t *testing.T) {
	results, err := calculation.Run(zap.NewNop(), testConfiguration())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	if results[0].Name != "car loan payment" || results[6].Name != "bad loan" {
		t.Errorf("results are not in configuration order: %q ... %q", results[0].Name, results[6].Name)
	}

	tests := []struct {
		name       string
		kind       string
		field      string
		status     string
		value      float64
		wantFailed bool
	}{
		{"car loan payment", calculation.KindProblem, "pmt", calculation.StatusSolved, -483.32, false},
		{"savings rate", calculation.KindProblem, "rate", "converged", 0.07, false},
		{"too few fields", calculation.KindProblem, "", calculation.StatusInvalid, 0, true},
		{"mortgage", calculation.KindLoan, "pmt", calculation.StatusScheduled, 1073.64, false},
		{"bad loan", calculation.KindLoan, "", calculation.StatusInvalid, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testutil.FindResult(results, tt.name)
			if result == nil {
				t.Fatalf("result %s not found", tt.name)
			}
			if result.Kind != tt.kind {
				t.Errorf("Kind = %q, expected %q", result.Kind, tt.kind)
			}
			if result.Field != tt.field {
				t.Errorf("Field = %q, expected %q", result.Field, tt.field)
			}
			if result.Status != tt.status {
				t.Errorf("Status = %q, expected %q", result.Status, tt.status)
			}
			if result.Failed() != tt.wantFailed {
				t.Errorf("Failed() = %t, expected %t (error %q)", result.Failed(), tt.wantFailed, result.Error)
			}
			if math.Abs(result.Value-tt.value) > 0.005 {
				t.Errorf("Value = %v, expected %v", result.Value, tt.value)
			}
		})
	}
}

func TestRunRecordsDomainFailure(t *testing.T) {
	results, err := calculation.Run(nil, testConfiguration())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	result := testutil.FindResult(results, "unreachable target")
	if result == nil {
		t.Fatal("result not found")
	}
	if result.Status != calculation.StatusDomainError || !result.Failed() {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Field != "nper" || !math.IsNaN(result.Value) {
		t.Errorf("expected NaN nper, got %s = %v", result.Field, result.Value)
	}
}

func TestRunRecordsNonConvergence(t *testing.T) {
	results, err := calculation.Run(nil, testConfiguration())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	result := testutil.FindResult(results, "one-sided rate")
	if result == nil {
		t.Fatal("result not found")
	}
	if !result.Failed() || result.Status == "converged" {
		t.Errorf("expected a non-converged rate, got %+v", result)
	}
	if result.Field != "rate" || result.Iterations == 0 {
		t.Errorf("expected rate field with iteration count, got %+v", result)
	}
	if !strings.Contains(result.Error, "did not converge") {
		t.Errorf("unexpected error text %q", result.Error)
	}
}

func TestRunSchedule(t *testing.T) {
	results, err := calculation.Run(nil, testConfiguration())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mortgage := testutil.FindResult(results, "mortgage")
	if mortgage == nil || mortgage.Schedule == nil {
		t.Fatal("expected mortgage schedule")
	}
	rows := mortgage.Schedule.Rows
	if len(rows) != 360 {
		t.Fatalf("expected 360 rows, got %d", len(rows))
	}
	if rows[0].Date != "2026-01" || rows[359].Date != "2055-12" {
		t.Errorf("unexpected schedule dates %s ... %s", rows[0].Date, rows[359].Date)
	}
	if rows[359].Balance != 0 {
		t.Errorf("final balance = %v, expected 0", rows[359].Balance)
	}

	if bad := testutil.FindResult(results, "bad loan"); bad == nil || bad.Schedule != nil {
		t.Errorf("expected invalid loan without schedule, got %+v", bad)
	}
}

func TestRunRecordsScheduleOverflow(t *testing.T) {
	conf := config.Configuration{
		Loans: []config.Loan{
			{Name: "huge", Amount: 1e308, AnnualRate: 0.05, TermMonths: 360},
		},
	}

	results, err := calculation.Run(nil, conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	result := results[0]
	if result.Status != calculation.StatusDomainError || result.Schedule != nil {
		t.Errorf("expected a domain error without schedule, got %+v", result)
	}
	if !strings.Contains(result.Error, "overflowed") {
		t.Errorf("unexpected error text %q", result.Error)
	}
}

func TestRunInvalidSolveField(t *testing.T) {
	conf := config.Configuration{
		Problems: []config.Problem{
			{Name: "first", PV: tvm.Float(1), FV: tvm.Float(0), Rate: tvm.Float(0.1), NPer: tvm.Float(1)},
			{Name: "typo", Solve: "apr", PV: tvm.Float(1), FV: tvm.Float(0), Rate: tvm.Float(0.1), NPer: tvm.Float(1)},
		},
	}

	results, err := calculation.Run(nil, conf)
	if err == nil {
		t.Fatal("expected an unknown solve field to abort the run")
	}
	if len(results) != 1 {
		t.Errorf("expected results up to the failing problem, got %d", len(results))
	}
}

func TestRunEmpty(t *testing.T) {
	results, err := calculation.Run(nil, config.Configuration{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
