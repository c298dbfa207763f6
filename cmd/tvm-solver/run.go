package main

import (
	"fmt"

	"github.com/iwvelando/tvm-solver/internal/calculation"
	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/output"
	"github.com/iwvelando/tvm-solver/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	configPath   string
	outputFormat string
	outputFile   string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every problem and loan in a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, xlsx")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "workbook path for xlsx output")

	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main.run"))
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.run"),
		)
	}

	results, err := calculation.Run(logger, *conf)
	if err != nil {
		logger.Error("failed to run calculation",
			zap.String("op", "main.run"),
			zap.Error(err),
		)
		return err
	}

	outputFile := conf.Output.File
	if opts.outputFile != "" {
		outputFile = opts.outputFile
	}
	return writeResults(cmd, logger, outputFormat, outputFile, results)
}

func writeResults(cmd *cobra.Command, logger *zap.Logger, format, file string, results []calculation.Result) error {
	switch format {
	case constants.OutputFormatCSV:
		return output.CsvFormat(cmd.OutOrStdout(), results)
	case constants.OutputFormatXLSX:
		if file == "" {
			file = constants.DefaultXLSXFile
		}
		if err := output.XlsxFormat(file, results); err != nil {
			return err
		}
		logger.Info("wrote workbook",
			zap.String("op", "main.writeResults"),
			zap.String("file", file),
		)
		return nil
	default:
		output.PrettyFormat(cmd.OutOrStdout(), results)
		return nil
	}
}
