package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tvm-solver",
		Short: "Time-value-of-money solver and loan amortization",
		Long: `tvm-solver computes any one of present value, future value, payment,
number of periods and periodic rate from the other four, and builds monthly
amortization schedules for fixed-rate loans.

Commands:
  run       - evaluate every problem and loan in a YAML configuration
  solve     - solve a single TVM problem
  amortize  - print the amortization schedule of a loan
  interest  - compare compound and simple growth and report the APY
  serve     - expose the calculator over HTTP`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCommand(opts),
		newSolveCommand(opts),
		newAmortizeCommand(opts),
		newInterestCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
