package loans

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/iwvelando/tvm-solver/pkg/constants"
	"go.uber.org/zap"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		amount        float64
		annualRate    float64
		termMonths    int
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Standard 30-year mortgage",
			amount:        240000,
			annualRate:    0.06,
			termMonths:    360,
			expectedRange: []float64{1438, 1440}, // Around $1438.92
		},
		{
			name:          "5-year car loan",
			amount:        20000,
			annualRate:    0.04,
			termMonths:    60,
			expectedRange: []float64{368, 369}, // Around $368.33
		},
		{
			name:          "Zero interest loan",
			amount:        10000,
			annualRate:    0.0,
			termMonths:    60,
			expectedRange: []float64{166.66, 166.67}, // Exactly $166.67
		},
		{
			name:          "High interest loan",
			amount:        10000,
			annualRate:    0.18,
			termMonths:    36,
			expectedRange: []float64{361, 362}, // Around $361.52
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.amount, tt.annualRate, tt.termMonths)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		annualRate float64
		expected   float64
	}{
		{"Standard mortgage interest", 200000, 0.06, 1000.0},
		{"Car loan interest", 15000, 0.045, 56.25},
		{"Zero interest", 10000, 0.0, 0.0},
		{"High interest", 5000, 0.24, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.balance, tt.annualRate)

			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateInterestPayment() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestGenerateScheduleMortgageScenario(t *testing.T) {
	schedule, err := GenerateSchedule(200000, 0.05, 360)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(schedule.Rows) != 360 {
		t.Fatalf("expected 360 rows, got %d", len(schedule.Rows))
	}

	totals := []struct {
		name     string
		got      float64
		expected float64
		delta    float64
	}{
		{"monthly payment", schedule.MonthlyPayment, 1073.64, 0.005},
		{"total payments", schedule.TotalPayments, 386511.57, 0.01},
		{"total interest", schedule.TotalInterest, 186511.57, 0.01},
		{"total principal", schedule.TotalPrincipal, 200000, 0},
		{"first interest", schedule.Rows[0].Interest, 833.33, 0.005},
		{"first principal", schedule.Rows[0].Principal, 240.31, 0.005},
		{"interest identity", schedule.TotalInterest, schedule.TotalPayments - schedule.TotalPrincipal, 1e-6},
	}
	for _, tt := range totals {
		if math.Abs(tt.got-tt.expected) > tt.delta {
			t.Errorf("%s = %.6f, expected %.6f", tt.name, tt.got, tt.expected)
		}
	}

	first := schedule.Rows[0]
	if first.Period != 1 || first.Date != "" {
		t.Errorf("unexpected first row %+v", first)
	}
	last := schedule.Rows[359]
	if last.Period != 360 || last.Balance != 0 {
		t.Errorf("unexpected last row %+v", last)
	}
}

func TestGenerateScheduleConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for i := 0; i < 200; i++ {
		amount := 100 + rng.Float64()*500_000
		annualRate := rng.Float64() * 0.12
		if i%10 == 0 {
			annualRate = 0
		}
		termMonths := 1 + rng.Intn(360)

		schedule, err := GenerateSchedule(amount, annualRate, termMonths)
		if err != nil {
			t.Fatalf("GenerateSchedule(%v, %v, %d) error = %v", amount, annualRate, termMonths, err)
		}
		if len(schedule.Rows) != termMonths {
			t.Fatalf("expected %d rows, got %d", termMonths, len(schedule.Rows))
		}

		last := schedule.Rows[len(schedule.Rows)-1]
		if last.Balance != 0 {
			t.Fatalf("amount=%v rate=%v term=%d: final balance %v", amount, annualRate, termMonths, last.Balance)
		}
		if paid := schedule.PrincipalPaid(); math.Abs(paid-amount) > 1e-6 {
			t.Fatalf("amount=%v rate=%v term=%d: principal paid %v", amount, annualRate, termMonths, paid)
		}

		previous := amount
		for _, row := range schedule.Rows {
			if row.Balance < 0 || row.Balance > previous {
				t.Fatalf("amount=%v rate=%v term=%d: balance %v after %v", amount, annualRate, termMonths, row.Balance, previous)
			}
			if math.Abs(row.Payment-(row.Principal+row.Interest)) > 1e-9*math.Max(1, row.Payment) {
				t.Fatalf("period %d: payment %v != principal %v + interest %v", row.Period, row.Payment, row.Principal, row.Interest)
			}
			previous = row.Balance
		}
	}
}

func TestGenerateScheduleSinglePeriod(t *testing.T) {
	schedule, err := GenerateSchedule(1000, 0.12, 1)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(schedule.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(schedule.Rows))
	}

	row := schedule.Rows[0]
	if math.Abs(row.Payment-1010) > 1e-9 || math.Abs(row.Interest-10) > 1e-9 || math.Abs(row.Principal-1000) > 1e-9 {
		t.Errorf("unexpected row %+v", row)
	}
	if row.Balance != 0 {
		t.Errorf("balance = %v, expected 0", row.Balance)
	}
}

func TestGenerateScheduleZeroRate(t *testing.T) {
	schedule, err := GenerateSchedule(12000, 0, 12)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	for _, row := range schedule.Rows {
		if row.Payment != 1000 || row.Interest != 0 {
			t.Errorf("period %d: payment %v interest %v, expected 1000 and 0", row.Period, row.Payment, row.Interest)
		}
	}
	if schedule.TotalInterest != 0 || schedule.TotalPayments != 12000 {
		t.Errorf("totals = %v interest, %v payments", schedule.TotalInterest, schedule.TotalPayments)
	}
}

func TestGenerateDatedSchedule(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	schedule, err := generator.Generate(Loan{
		Name:       "car",
		Amount:     20000,
		AnnualRate: 0.04,
		TermMonths: 14,
		StartDate:  "2025-11",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for period, expected := range map[int]string{1: "2025-11", 3: "2026-01", 14: "2026-12"} {
		if got := schedule.Rows[period-1].Date; got != expected {
			t.Errorf("period %d date = %s, expected %s", period, got, expected)
		}
	}
}

func TestGenerateScheduleInvalidLoan(t *testing.T) {
	tests := []struct {
		name string
		loan Loan
	}{
		{"Zero amount", Loan{Amount: 0, AnnualRate: 0.05, TermMonths: 12}},
		{"Negative amount", Loan{Amount: -100, AnnualRate: 0.05, TermMonths: 12}},
		{"NaN amount", Loan{Amount: math.NaN(), AnnualRate: 0.05, TermMonths: 12}},
		{"Negative rate", Loan{Amount: 1000, AnnualRate: -0.01, TermMonths: 12}},
		{"Zero term", Loan{Amount: 1000, AnnualRate: 0.05, TermMonths: 0}},
		{"Term above cap", Loan{Amount: 1000, AnnualRate: 0.05, TermMonths: constants.MaxTermMonths + 1}},
		{"Bad start date", Loan{Amount: 1000, AnnualRate: 0.05, TermMonths: 12, StartDate: "2025/01"}},
	}

	generator := NewAmortizationScheduleGenerator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generator.Generate(tt.loan)
			if !errors.Is(err, ErrInvalidLoan) {
				t.Errorf("Generate() error = %v, expected ErrInvalidLoan", err)
			}
		})
	}
}

func TestGenerateScheduleOverflow(t *testing.T) {
	tests := []struct {
		name string
		loan Loan
	}{
		{"Huge amount", Loan{Name: "huge", Amount: 1e308, AnnualRate: 0.05, TermMonths: 360}},
		{"Huge rate", Loan{Name: "usury", Amount: 1e10, AnnualRate: 1e300, TermMonths: 12}},
	}

	generator := NewAmortizationScheduleGenerator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.loan.Validate(); err != nil {
				t.Fatalf("Validate() error = %v, expected finite inputs to pass", err)
			}
			schedule, err := generator.Generate(tt.loan)
			if !errors.Is(err, ErrScheduleOverflow) {
				t.Errorf("Generate() error = %v, expected ErrScheduleOverflow", err)
			}
			if len(schedule.Rows) != 0 {
				t.Errorf("expected no rows, got %d", len(schedule.Rows))
			}
		})
	}
}
