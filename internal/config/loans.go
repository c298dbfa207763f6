package config

import (
	"github.com/iwvelando/tvm-solver/pkg/loans"
)

// Loan indicates a loan whose amortization schedule should be produced.
type Loan struct {
	Name       string  `yaml:"name" mapstructure:"name"`
	Amount     float64 `yaml:"amount" mapstructure:"amount"`
	AnnualRate float64 `yaml:"annualRate" mapstructure:"annualRate"` // fraction, e.g. 0.05
	TermMonths int     `yaml:"termMonths" mapstructure:"termMonths"`
	StartDate  string  `yaml:"startDate,omitempty" mapstructure:"startDate"`
}

// ToLoan converts a configured Loan to the pkg/loans representation.
func (loan *Loan) ToLoan() loans.Loan {
	if loan == nil {
		return loans.Loan{}
	}
	return loans.Loan{
		Name:       loan.Name,
		Amount:     loan.Amount,
		AnnualRate: loan.AnnualRate,
		TermMonths: loan.TermMonths,
		StartDate:  loan.StartDate,
	}
}
