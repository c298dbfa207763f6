package validation

import (
	"fmt"

	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
)

// ValidateLoanTerm warns about unusually long schedules.
func ValidateLoanTerm(loanName string, termMonths int) string {
	if termMonths > constants.MaxTermMonths {
		return fmt.Sprintf("Loan '%s' term of %d months exceeds the maximum of %d and will be rejected",
			loanName, termMonths, constants.MaxTermMonths)
	}
	if termMonths > constants.LongTermWarningMonths {
		return fmt.Sprintf("Loan '%s' term of %d months is longer than %d months",
			loanName, termMonths, constants.LongTermWarningMonths)
	}
	return ""
}

// ValidateProblem returns warnings for a TVM problem that is likely to fail.
func ValidateProblem(problem ProblemConfig) []string {
	var warnings []string

	inputs := tvm.Inputs{PV: problem.PV, FV: problem.FV, PMT: problem.PMT, Rate: problem.Rate, NPer: problem.NPer}
	if result := tvm.ValidateInputs(inputs); !result.Valid {
		warnings = append(warnings, fmt.Sprintf("Problem '%s': %s", problem.Name, result.Message))
	}

	target := ""
	if problem.Solve != "" {
		field, err := tvm.ParseField(problem.Solve)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Problem '%s': %v", problem.Name, err))
			return warnings
		}
		target = field.String()
	} else if field, ok := inputs.Unknown(); ok {
		target = field.String()
	}

	if target == tvm.FieldRate.String() && sameSign(problem.PV, problem.FV, problem.PMT) {
		warnings = append(warnings, fmt.Sprintf(
			"Problem '%s': pv, fv and pmt all have the same sign so no interest rate balances them", problem.Name))
	}

	return warnings
}

// sameSign reports whether every non-zero value shares one sign.
func sameSign(values ...*float64) bool {
	positive, negative := false, false
	for _, v := range values {
		if v == nil {
			continue
		}
		switch {
		case *v > 0:
			positive = true
		case *v < 0:
			negative = true
		}
	}
	return positive != negative
}

// ConfigValidator performs comprehensive configuration validation
type ConfigValidator struct {
	Problems []ProblemConfig
	Loans    []LoanConfig
}

type ProblemConfig struct {
	Name  string
	Solve string
	PV    *float64
	FV    *float64
	PMT   *float64
	Rate  *float64
	NPer  *float64
}

type LoanConfig struct {
	Name       string
	TermMonths int
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	seen := make(map[string]struct{})
	checkName := func(kind, name string) {
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("%s has no name", kind))
			return
		}
		if _, dup := seen[name]; dup {
			warnings = append(warnings, fmt.Sprintf("%s name '%s' is used more than once", kind, name))
		}
		seen[name] = struct{}{}
	}

	for _, problem := range cv.Problems {
		checkName("Problem", problem.Name)
		warnings = append(warnings, ValidateProblem(problem)...)
	}

	for _, loan := range cv.Loans {
		checkName("Loan", loan.Name)
		if warning := ValidateLoanTerm(loan.Name, loan.TermMonths); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	return warnings
}
