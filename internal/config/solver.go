package config

import (
	"fmt"
	"math"

	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
)

const maxIterationsLimit = 10000

// SolverConfig tunes the iterative rate solver.
type SolverConfig struct {
	Guess         float64 `yaml:"guess,omitempty" mapstructure:"guess"`
	Tolerance     float64 `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize ensures defaults are applied before validation.
func (s *SolverConfig) Normalize() {
	if s == nil {
		return
	}
	if s.Guess == 0 {
		s.Guess = constants.DefaultRateGuess
	}
	if s.Tolerance <= 0 {
		s.Tolerance = constants.DefaultRateTolerance
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = constants.DefaultRateMaxIterations
	}
}

// Validate returns an error when the solver configuration is unusable.
func (s *SolverConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("solver configuration cannot be nil")
	}

	s.Normalize()

	if math.IsNaN(s.Guess) || math.IsInf(s.Guess, 0) {
		return fmt.Errorf("solver guess must be finite")
	}
	if s.Guess <= constants.MinimumRate {
		return fmt.Errorf("solver guess %.4f must be greater than %.0f", s.Guess, constants.MinimumRate)
	}
	if s.Tolerance >= 1 {
		return fmt.Errorf("solver tolerance %g must be less than 1", s.Tolerance)
	}
	if s.MaxIterations > maxIterationsLimit {
		return fmt.Errorf("solver maxIterations %d exceeds the limit of %d", s.MaxIterations, maxIterationsLimit)
	}
	return nil
}

// RateOptions converts the configuration into solver options.
func (s SolverConfig) RateOptions() tvm.RateOptions {
	s.Normalize()
	return tvm.RateOptions{
		Guess:         s.Guess,
		Tolerance:     s.Tolerance,
		MaxIterations: s.MaxIterations,
	}
}
