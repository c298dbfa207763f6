// Package tvm solves time-value-of-money problems: given four of present
// value, future value, payment, period count and periodic rate it computes
// the fifth.
//
// Cash flows follow the financial-calculator sign convention: money received
// and money paid carry opposite signs, so a loan received (positive PV) is
// repaid by negative payments.
//
// Every function in this package is pure and safe for concurrent use.
package tvm

import (
	"fmt"
	"strings"

	"github.com/iwvelando/tvm-solver/pkg/constants"
)

// PaymentTiming indicates when payments occur within a period.
type PaymentTiming int

const (
	// EndOfPeriod is an ordinary annuity (type 0).
	EndOfPeriod PaymentTiming = 0
	// BeginningOfPeriod is an annuity-due (type 1).
	BeginningOfPeriod PaymentTiming = 1
)

// Valid reports whether t is one of the two supported timings.
func (t PaymentTiming) Valid() bool {
	return t == EndOfPeriod || t == BeginningOfPeriod
}

func (t PaymentTiming) factor() float64 {
	return float64(t)
}

// Field names one of the five interdependent TVM quantities.
type Field int

const (
	FieldPV Field = iota
	FieldFV
	FieldPMT
	FieldRate
	FieldNPer
)

var fieldNames = map[Field]string{
	FieldPV:   "pv",
	FieldFV:   "fv",
	FieldPMT:  "pmt",
	FieldRate: "rate",
	FieldNPer: "nper",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField converts a field name such as "PMT" or "nper" into a Field.
func ParseField(value string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pv", "presentvalue", "present_value":
		return FieldPV, nil
	case "fv", "futurevalue", "future_value":
		return FieldFV, nil
	case "pmt", "payment":
		return FieldPMT, nil
	case "rate", "i", "interest":
		return FieldRate, nil
	case "nper", "n", "periods":
		return FieldNPer, nil
	default:
		return 0, fmt.Errorf("unknown TVM field %q", value)
	}
}

// Inputs holds the known quantities of a TVM problem. A nil field is unknown.
type Inputs struct {
	PV   *float64
	FV   *float64
	PMT  *float64
	Rate *float64
	NPer *float64
	Type PaymentTiming
}

// Float returns a pointer to v, for building Inputs literals.
func Float(v float64) *float64 {
	return &v
}

func (in Inputs) fields() [5]*float64 {
	return [5]*float64{in.PV, in.FV, in.PMT, in.Rate, in.NPer}
}

// Known counts how many of the five core fields are present.
func (in Inputs) Known() int {
	n := 0
	for _, v := range in.fields() {
		if v != nil {
			n++
		}
	}
	return n
}

// Unknown returns the single missing field. The second return value is false
// when zero or more than one field is missing.
func (in Inputs) Unknown() (Field, bool) {
	missing := -1
	for i, v := range in.fields() {
		if v != nil {
			continue
		}
		if missing >= 0 {
			return 0, false
		}
		missing = i
	}
	if missing < 0 {
		return 0, false
	}
	return Field(missing), true
}

// Value returns the value of field f, or false when it is not set.
func (in Inputs) Value(f Field) (float64, bool) {
	fields := in.fields()
	if int(f) < 0 || int(f) >= len(fields) || fields[f] == nil {
		return 0, false
	}
	return *fields[f], true
}

// Without returns a copy of in with field f cleared, so that it can be solved for.
func (in Inputs) Without(f Field) Inputs {
	out := in
	switch f {
	case FieldPV:
		out.PV = nil
	case FieldFV:
		out.FV = nil
	case FieldPMT:
		out.PMT = nil
	case FieldRate:
		out.Rate = nil
	case FieldNPer:
		out.NPer = nil
	}
	return out
}

func (in Inputs) get(f Field) float64 {
	v, _ := in.Value(f)
	return v
}

// ValidationResult reports whether Inputs can be solved and, if not, why.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidateInputs checks the preconditions every solver assumes: at least four
// of the five core fields, a rate no lower than -100% and a positive period
// count. Solvers do not repeat these checks.
func ValidateInputs(in Inputs) ValidationResult {
	if in.Known() < 4 {
		return ValidationResult{
			Valid:   false,
			Message: "at least 4 of pv, fv, pmt, rate and nper must be provided",
		}
	}
	if in.Rate != nil && *in.Rate < constants.MinimumRate {
		return ValidationResult{
			Valid:   false,
			Message: "interest rate cannot be lower than -100% per period",
		}
	}
	if in.NPer != nil && *in.NPer <= 0 {
		return ValidationResult{
			Valid:   false,
			Message: "number of periods must be positive",
		}
	}
	if !in.Type.Valid() {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("payment type must be 0 or 1, got %d", int(in.Type)),
		}
	}
	return ValidationResult{Valid: true}
}
