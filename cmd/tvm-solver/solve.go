package main

import (
	"errors"
	"fmt"

	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/output"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type solveOptions struct {
	solve         string
	pv            float64
	fv            float64
	pmt           float64
	rate          float64
	nper          float64
	paymentType   int
	guess         float64
	tolerance     float64
	maxIterations int
}

func newSolveCommand(root *rootOptions) *cobra.Command {
	opts := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a single TVM problem",
		Long: `Solve computes the one TVM field that is not given. Provide at least four
of --pv, --fv, --pmt, --rate and --nper. When all five are given, --solve
selects the field to recompute.

Cash flows follow the usual sign convention: money received is positive and
money paid out is negative. --rate is the rate per period as a fraction.`,
		Example: `  tvm-solver solve --pv 25000 --fv 0 --rate 0.005 --nper 60
  tvm-solver solve --solve rate --pv 25000 --fv 0 --pmt -483.32 --nper 60 --guess 0.01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.solve, "solve", "", "field to solve for: pv, fv, pmt, rate, nper")
	flags.Float64Var(&opts.pv, "pv", 0, "present value")
	flags.Float64Var(&opts.fv, "fv", 0, "future value")
	flags.Float64Var(&opts.pmt, "pmt", 0, "payment per period")
	flags.Float64Var(&opts.rate, "rate", 0, "interest rate per period")
	flags.Float64Var(&opts.nper, "nper", 0, "number of periods")
	flags.IntVar(&opts.paymentType, "type", 0, "payment timing: 0 end of period, 1 beginning")
	flags.Float64Var(&opts.guess, "guess", 0, "starting rate for the rate iteration")
	flags.Float64Var(&opts.tolerance, "tolerance", 0, "residual tolerance for the rate iteration")
	flags.IntVar(&opts.maxIterations, "max-iterations", 0, "iteration budget for the rate iteration")

	return cmd
}

func runSolve(cmd *cobra.Command, root *rootOptions, opts *solveOptions) error {
	logger, err := initializeLogger(config.LoggingConfig{}, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	flags := cmd.Flags()
	given := func(name string, value float64) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		return tvm.Float(value)
	}

	problem := config.Problem{
		Name:  "cli",
		Solve: opts.solve,
		PV:    given("pv", opts.pv),
		FV:    given("fv", opts.fv),
		PMT:   given("pmt", opts.pmt),
		Rate:  given("rate", opts.rate),
		NPer:  given("nper", opts.nper),
		Type:  opts.paymentType,
		Guess: opts.guess,
	}

	target, err := problem.Target()
	if err != nil {
		return err
	}

	solver := config.SolverConfig{Tolerance: opts.tolerance, MaxIterations: opts.maxIterations}
	if err := solver.Validate(); err != nil {
		return err
	}

	solution, err := tvm.Solve(problem.ToInputs(), target, problem.RateOptions(solver))
	if errors.Is(err, tvm.ErrInvalidInputs) {
		return err
	}

	out := cmd.OutOrStdout()
	field := solution.Field.String()
	fmt.Fprintf(out, "%s = %s\n", field, output.Value(field, solution.Value))
	if solution.Rate != nil {
		fmt.Fprintf(out, "status = %s after %d iterations\n", solution.Rate.Status, solution.Rate.Iterations)
	}

	if err != nil {
		logger.Warn("problem has no clean solution",
			zap.String("op", "main.solve"),
			zap.String("field", field),
			zap.Error(err),
		)
		return err
	}
	return nil
}
