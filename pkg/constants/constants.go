// Package constants provides shared constants for the tvm-solver application.
package constants

// DateTimeLayout is the format expected for schedule start dates and is also
// the output date format for amortization rows.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// AmountPlaces is the number of decimal places used when rendering amounts.
	AmountPlaces = 2

	// RatePlaces is the number of decimal places used when rendering rates.
	RatePlaces = 6

	// MaxTermMonths caps the length of a generated amortization schedule.
	MaxTermMonths = 6000

	// LongTermWarningMonths is the term above which configuration validation warns.
	LongTermWarningMonths = 600
)

// Rate solver defaults
const (
	// DefaultRateGuess is the starting point of the Newton iteration (10% per period).
	DefaultRateGuess = 0.1

	// DefaultRateTolerance is the residual below which the rate is considered converged.
	DefaultRateTolerance = 1e-10

	// DefaultRateMaxIterations bounds the Newton iteration.
	DefaultRateMaxIterations = 100

	// FlatDerivativeThreshold is the derivative magnitude below which no
	// Newton step is taken. It does not follow the residual tolerance.
	FlatDerivativeThreshold = 1e-10

	// RateDerivativeStep is the central-difference step used for f'(r).
	RateDerivativeStep = 1e-8

	// MinimumRate is the lowest meaningful periodic rate (a 100% loss per period).
	MinimumRate = -1.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatXLSX is the spreadsheet output format
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultXLSXFile is the workbook written when xlsx output has no explicit path
	DefaultXLSXFile = "tvm-results.xlsx"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// RequestIDHeader carries the per-request identifier.
	RequestIDHeader = "X-Request-ID"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
