package config

import (
	"testing"

	"github.com/iwvelando/tvm-solver/pkg/tvm"
)

func TestProblemTarget(t *testing.T) {
	problem := Problem{Name: "implicit"}
	target, err := problem.Target()
	if err != nil || target != nil {
		t.Errorf("Target() = %v, %v; expected nil, nil", target, err)
	}

	problem.Solve = "NPer"
	target, err = problem.Target()
	if err != nil {
		t.Fatalf("Target() error = %v", err)
	}
	if target == nil || *target != tvm.FieldNPer {
		t.Errorf("Target() = %v, expected nper", target)
	}

	problem.Solve = "apr"
	if _, err := problem.Target(); err == nil {
		t.Error("expected unknown field to be rejected")
	}
}

func TestProblemToInputs(t *testing.T) {
	problem := Problem{PV: tvm.Float(100), FV: tvm.Float(-200), NPer: tvm.Float(1), Type: 1}
	inputs := problem.ToInputs()

	if inputs.Type != tvm.BeginningOfPeriod {
		t.Errorf("Type = %v, expected beginning of period", inputs.Type)
	}
	if inputs.Known() != 3 {
		t.Errorf("Known() = %d, expected 3", inputs.Known())
	}
}

func TestProblemRateOptions(t *testing.T) {
	solver := SolverConfig{Guess: 0.2, MaxIterations: 10}

	opts := (&Problem{}).RateOptions(solver)
	if opts.Guess != 0.2 || opts.MaxIterations != 10 {
		t.Errorf("expected global solver options, got %+v", opts)
	}

	opts = (&Problem{Guess: 0.01}).RateOptions(solver)
	if opts.Guess != 0.01 {
		t.Errorf("expected per-problem guess to win, got %v", opts.Guess)
	}
}
