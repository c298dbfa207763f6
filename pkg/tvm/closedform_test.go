package tvm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFV(t *testing.T) {
	tests := []struct {
		name     string
		pv       float64
		rate     float64
		nper     float64
		pmt      float64
		timing   PaymentTiming
		expected float64
	}{
		{"Savings with deposits", -1000, 0.05, 10, -100, EndOfPeriod, 2886.683880332326},
		{"Savings with deposits due", -1000, 0.05, 10, -100, BeginningOfPeriod, 2949.57334301007},
		{"Lump sum", 1000, 0.07, 10, 0, EndOfPeriod, -1967.1513572895665},
		{"Zero rate", -1000, 0, 12, -50, EndOfPeriod, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FV(tt.pv, tt.rate, tt.nper, tt.pmt, tt.timing)
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}

func TestPV(t *testing.T) {
	assert.InDelta(t, -7472.58172866057, PV(10000, 0.06, 5, 0, EndOfPeriod), 1e-6)
	assert.Equal(t, -(500.0 + 25*12), PV(500, 0, 12, 25, EndOfPeriod))
}

func TestPMT(t *testing.T) {
	tests := []struct {
		name     string
		pv       float64
		fv       float64
		rate     float64
		nper     float64
		timing   PaymentTiming
		expected float64
	}{
		{"30-year mortgage", 200000, 0, 0.05 / 12, 360, EndOfPeriod, -1073.6432460242797},
		{"5-year car loan", 25000, 0, 0.005, 60, EndOfPeriod, -483.3200382357069},
		{"5-year car loan paid in advance", 25000, 0, 0.005, 60, BeginningOfPeriod, -480.91546093105165},
		{"Zero rate", 12000, 0, 0, 60, EndOfPeriod, -200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PMT(tt.pv, tt.fv, tt.rate, tt.nper, tt.timing)
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}

func TestNPER(t *testing.T) {
	t.Run("Loan repaid by positive payments", func(t *testing.T) {
		got := NPER(-25000, 0, 483.3200382357069, 0.005, EndOfPeriod)
		assert.InDelta(t, 60, got, 1e-6)
	})

	t.Run("Saving toward a target", func(t *testing.T) {
		got := NPER(1000, -5000, 100, 0.05, EndOfPeriod)
		assert.InDelta(t, 17.366161291132766, got, 1e-9)
	})

	t.Run("Zero rate", func(t *testing.T) {
		assert.Equal(t, 10.0, NPER(1000, 0, -100, 0, EndOfPeriod))
	})

	t.Run("Payment too small to cover interest", func(t *testing.T) {
		// numerator = pmt - fv*rate = 10 - 50 <= 0
		got := NPER(0, 1000, 10, 0.05, EndOfPeriod)
		assert.True(t, math.IsNaN(got), "expected NaN, got %v", got)
	})

	t.Run("Sign-inconsistent series", func(t *testing.T) {
		got := NPER(-1000, 5000, -100, 0.05, EndOfPeriod)
		assert.True(t, math.IsNaN(got), "expected NaN, got %v", got)
	})
}

func TestZeroRateLinearity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		pv := rng.Float64()*20000 - 10000
		pmt := rng.Float64()*2000 - 1000
		nper := float64(1 + rng.Intn(480))

		require.Equal(t, -(pv + pmt*nper), FV(pv, 0, nper, pmt, EndOfPeriod))
	}
}

func TestFVPVRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		pv := rng.Float64()*200000 - 100000
		rate := 0.0005 + rng.Float64()*0.2
		nper := float64(1 + rng.Intn(360))
		pmt := rng.Float64()*4000 - 2000
		timing := PaymentTiming(rng.Intn(2))

		fv := FV(pv, rate, nper, pmt, timing)
		got := PV(fv, rate, nper, pmt, timing)

		tolerance := 1e-6 * math.Max(1, math.Max(math.Abs(pv), math.Abs(pmt)*nper))
		require.InDelta(t, pv, got, tolerance,
			"pv=%v rate=%v nper=%v pmt=%v type=%d", pv, rate, nper, pmt, timing)
	}
}

func TestPMTInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 500; i++ {
		pv := rng.Float64()*500000 + 1000
		fv := rng.Float64()*10000 - 5000
		rate := 0.0001 + rng.Float64()*0.05
		nper := float64(1 + rng.Intn(480))
		timing := PaymentTiming(rng.Intn(2))

		pmt := PMT(pv, fv, rate, nper, timing)
		got := PV(fv, rate, nper, pmt, timing)

		require.InDelta(t, pv, got, 1e-6*pv,
			"pv=%v fv=%v rate=%v nper=%v type=%d", pv, fv, rate, nper, timing)
	}
}

func TestComputeFromInputs(t *testing.T) {
	in := Inputs{
		PV:   Float(200000),
		FV:   Float(0),
		Rate: Float(0.05 / 12),
		NPer: Float(360),
	}
	pmt := ComputePMT(in)
	assert.InDelta(t, -1073.64, pmt, 0.005)

	in.PMT = Float(pmt)
	assert.InDelta(t, 200000, ComputePV(in.Without(FieldPV)), 1e-6)
	assert.InDelta(t, 0, ComputeFV(in.Without(FieldFV)), 1e-6)

	lump := Inputs{PV: Float(1000), PMT: Float(0), Rate: Float(0.07), NPer: Float(10)}
	assert.InDelta(t, -1967.1513572895665, ComputeFV(lump), 1e-9)

	savings := Inputs{PV: Float(1000), FV: Float(-5000), PMT: Float(100), Rate: Float(0.05)}
	assert.InDelta(t, 17.366161291132766, ComputeNPER(savings), 1e-9)
}
