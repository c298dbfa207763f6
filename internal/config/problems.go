package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/tvm-solver/pkg/tvm"
)

// Problem is a single TVM calculation. Omitted fields are unknown; Solve
// names the field to compute and may be left empty when exactly one field
// is omitted.
type Problem struct {
	Name  string   `yaml:"name" mapstructure:"name"`
	Solve string   `yaml:"solve,omitempty" mapstructure:"solve"`
	PV    *float64 `yaml:"pv,omitempty" mapstructure:"pv"`
	FV    *float64 `yaml:"fv,omitempty" mapstructure:"fv"`
	PMT   *float64 `yaml:"pmt,omitempty" mapstructure:"pmt"`
	Rate  *float64 `yaml:"rate,omitempty" mapstructure:"rate"`
	NPer  *float64 `yaml:"nper,omitempty" mapstructure:"nper"`
	Type  int      `yaml:"type,omitempty" mapstructure:"type"` // 0 = end of period, 1 = beginning
	Guess float64  `yaml:"guess,omitempty" mapstructure:"guess"`
}

// ToInputs converts a configured Problem into solver inputs.
func (p *Problem) ToInputs() tvm.Inputs {
	return tvm.Inputs{
		PV:   p.PV,
		FV:   p.FV,
		PMT:  p.PMT,
		Rate: p.Rate,
		NPer: p.NPer,
		Type: tvm.PaymentTiming(p.Type),
	}
}

// Target returns the field named by Solve, or nil when Solve is empty.
func (p *Problem) Target() (*tvm.Field, error) {
	if strings.TrimSpace(p.Solve) == "" {
		return nil, nil
	}
	field, err := tvm.ParseField(p.Solve)
	if err != nil {
		return nil, fmt.Errorf("problem %s: %w", p.Name, err)
	}
	return &field, nil
}

// RateOptions returns the solver options for this problem, letting a
// per-problem guess override the global one.
func (p *Problem) RateOptions(solver SolverConfig) tvm.RateOptions {
	opts := solver.RateOptions()
	if p.Guess != 0 {
		opts.Guess = p.Guess
	}
	return opts
}
