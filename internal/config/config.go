// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected for loan start dates.
const DateTimeLayout = constants.DateTimeLayout

// envPrefix scopes environment overrides, e.g. TVM_LOGGING_LEVEL=debug.
const envPrefix = "TVM"

// Configuration holds all configuration for tvm-solver.
type Configuration struct {
	Logging  LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output   OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
	Solver   SolverConfig  `yaml:"solver,omitempty" mapstructure:"solver"`
	Problems []Problem     `yaml:"problems,omitempty" mapstructure:"problems"`
	Loans    []Loan        `yaml:"loans,omitempty" mapstructure:"loans"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, xlsx
	File   string `yaml:"file,omitempty" mapstructure:"file"`     // xlsx destination
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Solver.Validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Problems that would fail outright are reported by Run.
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{}
	for _, problem := range c.Problems {
		validator.Problems = append(validator.Problems, validation.ProblemConfig{
			Name:  problem.Name,
			Solve: problem.Solve,
			PV:    problem.PV,
			FV:    problem.FV,
			PMT:   problem.PMT,
			Rate:  problem.Rate,
			NPer:  problem.NPer,
		})
	}
	for _, loan := range c.Loans {
		validator.Loans = append(validator.Loans, validation.LoanConfig{
			Name:       loan.Name,
			TermMonths: loan.TermMonths,
		})
	}
	return validator.ValidateAll()
}
