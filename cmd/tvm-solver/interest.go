package main

import (
	"fmt"

	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/mathutil"
	"github.com/iwvelando/tvm-solver/pkg/output"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type interestOptions struct {
	principal    float64
	rate         float64
	periodicRate float64
	years        float64
	compounds    int
}

func newInterestCommand(root *rootOptions) *cobra.Command {
	opts := &interestOptions{}

	cmd := &cobra.Command{
		Use:   "interest",
		Short: "Compare compound and simple growth of a deposit",
		Long: `Interest grows --principal for --years at a nominal annual rate, both
compounded --compounds times a year and without compounding, and reports the
effective annual yield. The rate is given either as the nominal annual
--rate or as the --periodic-rate per compounding period.`,
		Example: `  tvm-solver interest --principal 1000 --rate 0.05 --years 10
  tvm-solver interest --principal 1000 --periodic-rate 0.005 --compounds 12 --years 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterest(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&opts.principal, "principal", 0, "starting balance")
	flags.Float64Var(&opts.rate, "rate", 0, "nominal annual rate as a fraction")
	flags.Float64Var(&opts.periodicRate, "periodic-rate", 0, "rate per compounding period as a fraction")
	flags.Float64Var(&opts.years, "years", 1, "number of years")
	flags.IntVar(&opts.compounds, "compounds", constants.MonthsPerYear, "compounding periods per year")
	cmd.MarkFlagsMutuallyExclusive("rate", "periodic-rate")
	_ = cmd.MarkFlagRequired("principal")

	return cmd
}

func runInterest(cmd *cobra.Command, root *rootOptions, opts *interestOptions) error {
	logger, err := initializeLogger(config.LoggingConfig{}, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if opts.compounds < 1 {
		return fmt.Errorf("compounds must be at least 1, got %d", opts.compounds)
	}
	for name, value := range map[string]float64{
		"principal": opts.principal, "rate": opts.rate, "periodic-rate": opts.periodicRate, "years": opts.years,
	} {
		if !mathutil.IsFinite(value) {
			return fmt.Errorf("%s must be finite, got %v", name, value)
		}
	}
	if opts.years < 0 {
		return fmt.Errorf("years cannot be negative, got %v", opts.years)
	}

	nominal := opts.rate
	if cmd.Flags().Changed("periodic-rate") {
		nominal = tvm.PeriodicToAnnual(opts.periodicRate, opts.compounds)
	}
	if nominal <= constants.MinimumRate {
		return fmt.Errorf("rate %v must be greater than %.0f", nominal, constants.MinimumRate)
	}

	compound := tvm.CompoundInterest(opts.principal, nominal, opts.years, opts.compounds)
	simple := tvm.SimpleInterest(opts.principal, nominal, opts.years)
	apy := tvm.APY(nominal, opts.compounds)

	logger.Debug("computed interest growth",
		zap.String("op", "main.interest"),
		zap.Float64("nominalRate", nominal),
		zap.Int("compounds", opts.compounds),
		zap.Float64("compound", compound),
		zap.Float64("simple", simple),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "nominal rate = %s%%\n", output.Percentage(nominal))
	fmt.Fprintf(out, "periodic rate = %s%%\n", output.Percentage(tvm.AnnualToPeriodic(nominal, opts.compounds)))
	fmt.Fprintf(out, "apy = %s%%\n", output.Percentage(apy))
	fmt.Fprintf(out, "compound = %s\n", output.Amount(compound))
	fmt.Fprintf(out, "simple = %s\n", output.Amount(simple))
	return nil
}
