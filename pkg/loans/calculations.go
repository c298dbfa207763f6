// Package loans builds monthly amortization schedules for fixed-rate loans.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/datetime"
	"github.com/iwvelando/tvm-solver/pkg/mathutil"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"go.uber.org/zap"
)

var (
	// ErrInvalidLoan is returned when loan parameters cannot produce a schedule.
	ErrInvalidLoan = errors.New("invalid loan parameters")

	// ErrScheduleOverflow is returned when valid parameters produce amounts
	// that are not representable, e.g. NaN or an infinity.
	ErrScheduleOverflow = errors.New("amortization schedule overflowed")
)

// Row holds the values for a given payment period.
type Row struct {
	Period    int     `json:"period"`
	Date      string  `json:"date,omitempty"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

func (r Row) finite() bool {
	return mathutil.IsFinite(r.Payment) && mathutil.IsFinite(r.Principal) &&
		mathutil.IsFinite(r.Interest) && mathutil.IsFinite(r.Balance)
}

// Schedule is a complete amortization schedule and its totals.
type Schedule struct {
	Rows           []Row   `json:"rows"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayments  float64 `json:"totalPayments"`
	TotalInterest  float64 `json:"totalInterest"`
	TotalPrincipal float64 `json:"totalPrincipal"`
}

// PrincipalPaid sums the principal portion of every row.
func (s Schedule) PrincipalPaid() float64 {
	total := 0.0
	for _, row := range s.Rows {
		total += row.Principal
	}
	return total
}

// Loan represents loan configuration parameters.
type Loan struct {
	Name       string
	Amount     float64
	AnnualRate float64 // fraction, e.g. 0.05 for 5%
	TermMonths int
	StartDate  string // optional, YYYY-MM
}

// Validate checks that the loan can be amortized.
func (l Loan) Validate() error {
	if !(l.Amount > 0) || !mathutil.IsFinite(l.Amount) {
		return fmt.Errorf("%w: loan amount must be positive, got %v", ErrInvalidLoan, l.Amount)
	}
	if !(l.AnnualRate >= 0) || !mathutil.IsFinite(l.AnnualRate) {
		return fmt.Errorf("%w: annual rate cannot be negative, got %v", ErrInvalidLoan, l.AnnualRate)
	}
	if l.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidLoan, l.TermMonths)
	}
	if l.TermMonths > constants.MaxTermMonths {
		return fmt.Errorf("%w: term of %d months exceeds the maximum of %d", ErrInvalidLoan, l.TermMonths, constants.MaxTermMonths)
	}
	if l.StartDate != "" {
		if _, err := datetime.ParseMonth(l.StartDate); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLoan, err)
		}
	}
	return nil
}

// CalculateMonthlyPayment returns the level payment that retires amount over
// termMonths at the given annual rate, as a positive number.
func CalculateMonthlyPayment(amount, annualRate float64, termMonths int) float64 {
	monthlyRate := tvm.AnnualToPeriodic(annualRate, constants.MonthsPerYear)
	return math.Abs(tvm.PMT(amount, 0, monthlyRate, float64(termMonths), tvm.EndOfPeriod))
}

// CalculateInterestPayment calculates the interest accrued on balance over
// one month.
func CalculateInterestPayment(balance, annualRate float64) float64 {
	return balance * tvm.AnnualToPeriodic(annualRate, constants.MonthsPerYear)
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates the amortization schedule for an undated loan.
func GenerateSchedule(loanAmount, annualRate float64, termMonths int) (Schedule, error) {
	return NewAmortizationScheduleGenerator(nil).Generate(Loan{
		Amount:     loanAmount,
		AnnualRate: annualRate,
		TermMonths: termMonths,
	})
}

// Generate creates a complete amortization schedule for a loan. Payments are
// made at the end of each month. The last row's balance is forced to exactly
// zero and every balance is clamped at zero.
func (g *AmortizationScheduleGenerator) Generate(loan Loan) (Schedule, error) {
	if err := loan.Validate(); err != nil {
		return Schedule{}, err
	}

	var dates []string
	if loan.StartDate != "" {
		var err error
		dates, err = datetime.MonthSequence(loan.StartDate, loan.TermMonths)
		if err != nil {
			return Schedule{}, err
		}
	}

	monthlyPayment := CalculateMonthlyPayment(loan.Amount, loan.AnnualRate, loan.TermMonths)

	rows := make([]Row, 0, loan.TermMonths)
	balance := loan.Amount
	totalInterest := 0.0

	for period := 1; period <= loan.TermMonths; period++ {
		interest := CalculateInterestPayment(balance, loan.AnnualRate)
		principal := monthlyPayment - interest
		balance -= principal

		if period == loan.TermMonths {
			if !mathutil.IsZero(balance) {
				g.logger.Debug(fmt.Sprintf("loan %s: forcing residual balance %.6f to zero", loan.Name, balance),
					zap.String("op", "loans.Generate"),
				)
			}
			balance = 0
		}

		totalInterest += interest

		row := Row{
			Period:    period,
			Payment:   monthlyPayment,
			Principal: principal,
			Interest:  interest,
			Balance:   mathutil.ClampNonNegative(balance),
		}
		if dates != nil {
			row.Date = dates[period-1]
		}
		if !row.finite() {
			return Schedule{}, fmt.Errorf("%w: period %d of loan %q", ErrScheduleOverflow, period, loan.Name)
		}
		rows = append(rows, row)
	}

	schedule := Schedule{
		Rows:           rows,
		MonthlyPayment: monthlyPayment,
		TotalPayments:  monthlyPayment * float64(loan.TermMonths),
		TotalInterest:  totalInterest,
		TotalPrincipal: loan.Amount,
	}
	if !mathutil.IsFinite(schedule.TotalPayments) || !mathutil.IsFinite(schedule.TotalInterest) {
		return Schedule{}, fmt.Errorf("%w: totals of loan %q", ErrScheduleOverflow, loan.Name)
	}

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "loans.Generate"),
		zap.String("loan", loan.Name),
		zap.Int("periods", len(rows)),
		zap.Float64("monthlyPayment", monthlyPayment),
		zap.Float64("totalInterest", totalInterest),
	)

	return schedule, nil
}
