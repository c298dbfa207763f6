package tvm

import (
	"math"

	"github.com/iwvelando/tvm-solver/pkg/constants"
)

// RateStatus describes how the rate iteration ended.
type RateStatus int

const (
	// RateConverged means the residual dropped below the tolerance.
	RateConverged RateStatus = iota
	// RateFlatDerivative means the derivative vanished and no Newton step was possible.
	RateFlatDerivative
	// RateMaxIterations means the iteration budget ran out.
	RateMaxIterations
	// RateDiverged means the iterate stopped being a finite number.
	RateDiverged
)

func (s RateStatus) String() string {
	switch s {
	case RateConverged:
		return "converged"
	case RateFlatDerivative:
		return "flat_derivative"
	case RateMaxIterations:
		return "max_iterations"
	case RateDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// RateResult is the outcome of the rate iteration. Rate always holds the last
// estimate, even when Status is not RateConverged.
type RateResult struct {
	Rate       float64
	Iterations int
	Status     RateStatus
}

// Converged reports whether Rate satisfies the residual tolerance.
func (r RateResult) Converged() bool {
	return r.Status == RateConverged
}

// RateOptions tunes the rate iteration. Zero values select the defaults.
type RateOptions struct {
	Guess         float64
	Tolerance     float64
	MaxIterations int
}

// DefaultRateOptions returns the standard 10% guess, 1e-10 tolerance and
// 100 iteration budget.
func DefaultRateOptions() RateOptions {
	return RateOptions{
		Guess:         constants.DefaultRateGuess,
		Tolerance:     constants.DefaultRateTolerance,
		MaxIterations: constants.DefaultRateMaxIterations,
	}
}

func (o RateOptions) normalized() RateOptions {
	if o.Guess == 0 {
		o.Guess = constants.DefaultRateGuess
	}
	if o.Tolerance <= 0 {
		o.Tolerance = constants.DefaultRateTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = constants.DefaultRateMaxIterations
	}
	return o
}

// Rate finds the periodic rate at which pv, fv and nper payments of pmt
// balance to zero, using Newton-Raphson with a central-difference derivative.
func Rate(pv, fv, pmt, nper float64, t PaymentTiming, opts RateOptions) RateResult {
	opts = opts.normalized()
	rate := opts.Guess

	for i := 0; i < opts.MaxIterations; i++ {
		f := rateResidual(rate, pv, fv, pmt, nper, t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return RateResult{Rate: rate, Iterations: i, Status: RateDiverged}
		}
		if math.Abs(f) < opts.Tolerance {
			return RateResult{Rate: rate, Iterations: i, Status: RateConverged}
		}

		df := rateDerivative(rate, pv, fv, pmt, nper, t)
		if math.Abs(df) < constants.FlatDerivativeThreshold {
			return RateResult{Rate: rate, Iterations: i, Status: RateFlatDerivative}
		}

		rate -= f / df
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return RateResult{Rate: rate, Iterations: i + 1, Status: RateDiverged}
		}
	}

	return RateResult{Rate: rate, Iterations: opts.MaxIterations, Status: RateMaxIterations}
}

// ComputeRate solves for the periodic rate using the other fields of in.
func ComputeRate(in Inputs, opts RateOptions) RateResult {
	return Rate(in.get(FieldPV), in.get(FieldFV), in.get(FieldPMT), in.get(FieldNPer), in.Type, opts)
}

// rateResidual is the zero-cash-flow equation; it is zero at the solution.
func rateResidual(rate, pv, fv, pmt, nper float64, t PaymentTiming) float64 {
	if rate == 0 {
		return pv + fv + pmt*nper
	}

	discount := math.Pow(1+rate, -nper)
	annuityFactor := (1 - discount) / rate

	return pv + fv*discount + pmt*annuityFactor*(1+rate*t.factor())
}

func rateDerivative(rate, pv, fv, pmt, nper float64, t PaymentTiming) float64 {
	h := constants.RateDerivativeStep
	return (rateResidual(rate+h, pv, fv, pmt, nper, t) -
		rateResidual(rate-h, pv, fv, pmt, nper, t)) / (2 * h)
}
