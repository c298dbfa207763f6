package main

import (
	"fmt"

	"github.com/iwvelando/tvm-solver/internal/calculation"
	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/loans"
	"github.com/iwvelando/tvm-solver/pkg/output"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"github.com/iwvelando/tvm-solver/pkg/validation"
	"github.com/spf13/cobra"
)

type amortizeOptions struct {
	name         string
	amount       float64
	annualRate   float64
	termMonths   int
	startDate    string
	outputFormat string
	outputFile   string
}

func newAmortizeCommand(root *rootOptions) *cobra.Command {
	opts := &amortizeOptions{}

	cmd := &cobra.Command{
		Use:     "amortize",
		Short:   "Print the monthly amortization schedule of a loan",
		Example: `  tvm-solver amortize --amount 200000 --rate 0.05 --term 360 --start-date 2026-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAmortize(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "loan", "loan name used in reports")
	flags.Float64Var(&opts.amount, "amount", 0, "loan principal")
	flags.Float64Var(&opts.annualRate, "rate", 0, "annual interest rate as a fraction, e.g. 0.05")
	flags.IntVar(&opts.termMonths, "term", 0, "term in months")
	flags.StringVar(&opts.startDate, "start-date", "", "month of the first payment (YYYY-MM)")
	flags.StringVar(&opts.outputFormat, "output-format", constants.OutputFormatPretty, "pretty, csv or xlsx")
	flags.StringVar(&opts.outputFile, "output-file", "", "workbook path for xlsx output")

	return cmd
}

func runAmortize(cmd *cobra.Command, root *rootOptions, opts *amortizeOptions) error {
	if err := validation.ValidateOutputFormat(opts.outputFormat); err != nil {
		return err
	}

	logger, err := initializeLogger(config.LoggingConfig{}, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	schedule, err := loans.NewAmortizationScheduleGenerator(logger).Generate(loans.Loan{
		Name:       opts.name,
		Amount:     opts.amount,
		AnnualRate: opts.annualRate,
		TermMonths: opts.termMonths,
		StartDate:  opts.startDate,
	})
	if err != nil {
		return err
	}

	if opts.outputFormat == constants.OutputFormatCSV {
		return output.ScheduleCsvFormat(cmd.OutOrStdout(), schedule)
	}

	result := calculation.Result{
		Name:     opts.name,
		Kind:     calculation.KindLoan,
		Field:    tvm.FieldPMT.String(),
		Value:    schedule.MonthlyPayment,
		Status:   calculation.StatusScheduled,
		Schedule: &schedule,
	}
	return writeResults(cmd, logger, opts.outputFormat, opts.outputFile, []calculation.Result{result})
}
