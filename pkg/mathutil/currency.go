// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/tvm-solver/pkg/constants"
)

// IsZero checks if a value is effectively zero (within one cent)
func IsZero(val float64) bool {
	return WithinTolerance(val, 0, constants.CurrencyTolerance)
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// ClampNonNegative returns val, or 0 when val is negative.
func ClampNonNegative(val float64) float64 {
	return math.Max(0, val)
}

// ToPercentage converts a fraction (0.05) to a percentage (5).
func ToPercentage(fraction float64) float64 {
	return fraction * constants.PercentageMultiplier
}
