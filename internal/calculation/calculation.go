// Package calculation evaluates every problem and loan in a configuration and
// collects the results for output.
package calculation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/loans"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"go.uber.org/zap"
)

// Result kinds.
const (
	KindProblem = "problem"
	KindLoan    = "loan"
)

// Result statuses that are not rate iteration outcomes.
const (
	StatusSolved      = "solved"
	StatusScheduled   = "scheduled"
	StatusInvalid     = "invalid"
	StatusDomainError = "domain_error"
)

// Result holds the outcome of a single configured problem or loan.
type Result struct {
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Field      string          `json:"field,omitempty"`
	Value      float64         `json:"value"`
	Iterations int             `json:"iterations,omitempty"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Schedule   *loans.Schedule `json:"schedule,omitempty"`
}

// Failed reports whether the problem or loan could not be evaluated cleanly.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Run processes every problem and then every loan in conf. Failures of an
// individual item are recorded on its Result; only configuration errors
// abort the run.
func Run(logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, 0, len(conf.Problems)+len(conf.Loans))

	for i := range conf.Problems {
		result, err := solveProblem(logger, &conf.Problems[i], conf.Solver)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	generator := loans.NewAmortizationScheduleGenerator(logger)
	for i := range conf.Loans {
		results = append(results, scheduleLoan(logger, generator, &conf.Loans[i]))
	}

	return results, nil
}

func solveProblem(logger *zap.Logger, problem *config.Problem, solver config.SolverConfig) (Result, error) {
	target, err := problem.Target()
	if err != nil {
		return Result{}, err
	}

	result := Result{Name: problem.Name, Kind: KindProblem}
	solution, err := tvm.Solve(problem.ToInputs(), target, problem.RateOptions(solver))

	if errors.Is(err, tvm.ErrInvalidInputs) {
		logger.Warn(fmt.Sprintf("problem %s has invalid inputs", problem.Name),
			zap.String("op", "calculation.Run"),
			zap.Error(err),
		)
		result.Status = StatusInvalid
		result.Error = err.Error()
		return result, nil
	}

	result.Field = solution.Field.String()
	result.Value = solution.Value
	result.Status = StatusSolved
	if solution.Rate != nil {
		result.Iterations = solution.Rate.Iterations
		result.Status = solution.Rate.Status.String()
	}

	switch {
	case errors.Is(err, tvm.ErrDomain):
		result.Status = StatusDomainError
		result.Error = err.Error()
	case err != nil:
		result.Error = err.Error()
	}

	if result.Failed() {
		logger.Warn(fmt.Sprintf("problem %s did not produce a clean solution", problem.Name),
			zap.String("op", "calculation.Run"),
			zap.String("status", result.Status),
			zap.Error(err),
		)
	} else {
		logger.Debug(fmt.Sprintf("solved problem %s", problem.Name),
			zap.String("op", "calculation.Run"),
			zap.String("field", result.Field),
			zap.Float64("value", result.Value),
		)
	}

	return result, nil
}

func scheduleLoan(logger *zap.Logger, generator *loans.AmortizationScheduleGenerator, loan *config.Loan) Result {
	result := Result{Name: loan.Name, Kind: KindLoan}

	schedule, err := generator.Generate(loan.ToLoan())
	if err != nil {
		logger.Warn(fmt.Sprintf("loan %s could not be amortized", loan.Name),
			zap.String("op", "calculation.Run"),
			zap.Error(err),
		)
		result.Status = StatusInvalid
		if errors.Is(err, loans.ErrScheduleOverflow) {
			result.Status = StatusDomainError
		}
		result.Error = err.Error()
		return result
	}

	result.Field = tvm.FieldPMT.String()
	result.Value = schedule.MonthlyPayment
	result.Status = StatusScheduled
	result.Schedule = &schedule
	return result
}
