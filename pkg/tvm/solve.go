package tvm

import (
	"errors"
	"fmt"

	"github.com/iwvelando/tvm-solver/pkg/mathutil"
)

var (
	// ErrInvalidInputs is returned when ValidateInputs rejects a problem.
	ErrInvalidInputs = errors.New("invalid TVM inputs")
	// ErrDomain is returned when a closed-form solver yields a non-finite value.
	ErrDomain = errors.New("no finite solution for the given cash flows")
	// ErrNotConverged is returned when the rate iteration ends without converging.
	ErrNotConverged = errors.New("rate iteration did not converge")
)

// Solution is the value found for the unknown field of a problem.
type Solution struct {
	Field Field
	Value float64
	// Rate is set only when Field is FieldRate.
	Rate *RateResult
}

// Solve validates in, identifies its unknown field and computes it. When all
// five fields are present, target selects which one to recompute; otherwise
// target is ignored.
//
// On ErrDomain and ErrNotConverged the returned Solution still carries the
// computed value so callers can decide how to degrade.
func Solve(in Inputs, target *Field, opts RateOptions) (Solution, error) {
	if result := ValidateInputs(in); !result.Valid {
		return Solution{}, fmt.Errorf("%w: %s", ErrInvalidInputs, result.Message)
	}

	field, ok := in.Unknown()
	if !ok {
		if target == nil {
			return Solution{}, fmt.Errorf("%w: all five fields are set, choose one to solve for", ErrInvalidInputs)
		}
		field = *target
		in = in.Without(field)
	} else if target != nil && *target != field {
		return Solution{}, fmt.Errorf("%w: asked to solve for %s but %s is the missing field", ErrInvalidInputs, *target, field)
	}

	solution := Solution{Field: field}
	switch field {
	case FieldPV:
		solution.Value = ComputePV(in)
	case FieldFV:
		solution.Value = ComputeFV(in)
	case FieldPMT:
		solution.Value = ComputePMT(in)
	case FieldNPer:
		solution.Value = ComputeNPER(in)
	case FieldRate:
		rate := ComputeRate(in, opts)
		solution.Value = rate.Rate
		solution.Rate = &rate
		if !rate.Converged() {
			return solution, fmt.Errorf("%w: %s after %d iterations", ErrNotConverged, rate.Status, rate.Iterations)
		}
	default:
		return Solution{}, fmt.Errorf("%w: unsupported field %s", ErrInvalidInputs, field)
	}

	if !mathutil.IsFinite(solution.Value) {
		return solution, fmt.Errorf("%w: %s", ErrDomain, field)
	}
	return solution, nil
}
