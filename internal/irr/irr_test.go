package irr

import (
	"math"
	"testing"
)

func TestSolve_SinglePeriodRoundTrip(t *testing.T) {
	// -1000 now, 1100 in one period → exactly 10%
	rate, ok := Solve([]float64{-1000, 1100})

	if !ok {
		t.Fatal("expected solve to succeed")
	}
	if math.Abs(rate-0.10) > 1e-6 {
		t.Errorf("expected rate 0.10, got %f", rate)
	}
}

func TestSolve_MultiYearAnnuity(t *testing.T) {
	// Flows generated at a known 8% discount rate must recover it
	flows := []float64{-10000}
	for yr := 1; yr <= 5; yr++ {
		flows = append(flows, 2504.56) // payment for 10000 over 5 years at 8%
	}

	rate, ok := Solve(flows)
	if !ok {
		t.Fatal("expected solve to succeed")
	}
	if math.Abs(rate-0.08) > 1e-4 {
		t.Errorf("expected rate near 0.08, got %f", rate)
	}
}

func TestSolve_NegativeReturn(t *testing.T) {
	// Losing deal: recover only 900 of 1000 → -10%
	rate, ok := Solve([]float64{-1000, 900})

	if !ok {
		t.Fatal("expected solve to succeed")
	}
	if math.Abs(rate-(-0.10)) > 1e-6 {
		t.Errorf("expected rate -0.10, got %f", rate)
	}
}

func TestSolve_NoSignChange(t *testing.T) {
	// All-positive flows have no IRR
	if _, ok := Solve([]float64{1000, 1100, 1200}); ok {
		t.Error("expected solve to fail for all-positive flows")
	}
	// All-negative likewise
	if _, ok := Solve([]float64{-1000, -500}); ok {
		t.Error("expected solve to fail for all-negative flows")
	}
}

func TestSolve_DegenerateInputs(t *testing.T) {
	if _, ok := Solve(nil); ok {
		t.Error("expected failure for nil flows")
	}
	if _, ok := Solve([]float64{-1000}); ok {
		t.Error("expected failure for a single flow")
	}
}

func TestSolve_RootAtVerifiedNPV(t *testing.T) {
	// A lumpy rental-style stream: the returned rate must actually
	// zero the NPV
	flows := []float64{-85000, 4200, 4400, 4600, 4800, 112000}

	rate, ok := Solve(flows)
	if !ok {
		t.Fatal("expected solve to succeed")
	}
	if v := npv(flows, rate); math.Abs(v) > 1e-4 {
		t.Errorf("expected NPV near zero at solved rate, got %f", v)
	}
	if rate < 0.05 || rate > 0.20 {
		t.Errorf("expected plausible rate, got %f", rate)
	}
}

func TestSolve_SteepFlowsFallBackToBisection(t *testing.T) {
	// A deep-loss stream drives Newton far from [bisectLow, bisectHigh];
	// bisection still brackets the root
	flows := []float64{-1000, 10, 10, 10, 50}

	rate, ok := Solve(flows)
	if !ok {
		t.Fatal("expected solve to succeed via bisection")
	}
	if rate >= 0 {
		t.Errorf("expected deeply negative rate, got %f", rate)
	}
	if v := npv(flows, rate); math.Abs(v) > 1e-3 {
		t.Errorf("expected NPV near zero at solved rate, got %f", v)
	}
}
