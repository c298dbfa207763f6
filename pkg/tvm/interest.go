package tvm

import "math"

// CompoundInterest returns principal grown at the nominal annual rate,
// compounded compoundsPerYear times a year, over years.
func CompoundInterest(principal, rate, years float64, compoundsPerYear int) float64 {
	m := float64(compoundsPerYear)
	if compoundsPerYear <= 0 {
		m = 1
	}
	return principal * math.Pow(1+rate/m, m*years)
}

// SimpleInterest returns principal plus non-compounding interest over years.
func SimpleInterest(principal, rate, years float64) float64 {
	return principal * (1 + rate*years)
}

// AnnualToPeriodic converts a nominal annual rate to a per-period rate.
func AnnualToPeriodic(annualRate float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		return annualRate
	}
	return annualRate / float64(periodsPerYear)
}

// PeriodicToAnnual converts a per-period rate to a nominal annual rate.
func PeriodicToAnnual(periodicRate float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		return periodicRate
	}
	return periodicRate * float64(periodsPerYear)
}

// APY returns the effective annual yield of a nominal rate compounded
// compoundsPerYear times a year.
func APY(nominalRate float64, compoundsPerYear int) float64 {
	m := float64(compoundsPerYear)
	if compoundsPerYear <= 0 {
		m = 1
	}
	return math.Pow(1+nominalRate/m, m) - 1
}
