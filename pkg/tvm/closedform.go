package tvm

import "math"

// FV returns the future value of pv and a stream of nper payments pmt at the
// periodic rate.
func FV(pv, rate, nper, pmt float64, t PaymentTiming) float64 {
	if rate == 0 {
		return -(pv + pmt*nper)
	}

	growth := math.Pow(1+rate, nper)
	annuityFactor := (growth - 1) / rate

	return -(pv*growth + pmt*annuityFactor*(1+rate*t.factor()))
}

// PV returns the present value of fv and a stream of nper payments pmt.
func PV(fv, rate, nper, pmt float64, t PaymentTiming) float64 {
	if rate == 0 {
		return -(fv + pmt*nper)
	}

	discount := math.Pow(1+rate, -nper)
	annuityFactor := (1 - discount) / rate

	return -(fv*discount + pmt*annuityFactor*(1+rate*t.factor()))
}

// PMT returns the periodic payment that takes pv to fv over nper periods.
func PMT(pv, fv, rate, nper float64, t PaymentTiming) float64 {
	if rate == 0 {
		return -(pv + fv) / nper
	}

	discount := math.Pow(1+rate, -nper)
	annuityFactor := (1 - discount) / rate

	return -(pv + fv*discount) / (annuityFactor * (1 + rate*t.factor()))
}

// NPER returns the number of periods needed for pmt to take pv to fv. It
// returns NaN when the cash flows have inconsistent signs or never reach fv.
func NPER(pv, fv, pmt, rate float64, t PaymentTiming) float64 {
	if rate == 0 {
		return -(pv + fv) / pmt
	}

	adjustedPmt := pmt * (1 + rate*t.factor())
	numerator := adjustedPmt - fv*rate
	denominator := pv*rate + adjustedPmt

	if numerator <= 0 || denominator <= 0 {
		return math.NaN()
	}

	return math.Log(numerator/denominator) / math.Log(1+rate)
}

// ComputePV solves for the present value using the other fields of in.
func ComputePV(in Inputs) float64 {
	return PV(in.get(FieldFV), in.get(FieldRate), in.get(FieldNPer), in.get(FieldPMT), in.Type)
}

// ComputeFV solves for the future value using the other fields of in.
func ComputeFV(in Inputs) float64 {
	return FV(in.get(FieldPV), in.get(FieldRate), in.get(FieldNPer), in.get(FieldPMT), in.Type)
}

// ComputePMT solves for the payment using the other fields of in.
func ComputePMT(in Inputs) float64 {
	return PMT(in.get(FieldPV), in.get(FieldFV), in.get(FieldRate), in.get(FieldNPer), in.Type)
}

// ComputeNPER solves for the period count using the other fields of in.
func ComputeNPER(in Inputs) float64 {
	return NPER(in.get(FieldPV), in.get(FieldFV), in.get(FieldPMT), in.get(FieldRate), in.Type)
}
