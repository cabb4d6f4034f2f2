// Package irr solves for the internal rate of return of a cash-flow
// sequence at unit time spacing: the discount rate at which net
// present value is zero.
package irr

import "math"

const (
	newtonStart   = 0.10
	newtonMaxIter = 80
	npvTolerance  = 1e-7
	stepTolerance = 1e-10

	bisectLow     = -0.95
	bisectHigh    = 5.0
	bisectMaxIter = 120
)

// Solve returns the rate r with NPV(flows, r) ~ 0, and whether a root
// was found. Index 0 is the initial outlay (typically negative); the
// last index includes terminal proceeds.
//
// Newton-Raphson runs first; real cash-flow sequences with a single
// late sign change often have flat or ill-conditioned derivatives
// there, so a divergent or stalled iteration falls back to bisection
// on [-0.95, 5]. No sign change across that bracket means no root.
func Solve(flows []float64) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}

	if r, ok := newton(flows); ok {
		return r, true
	}
	return bisect(flows)
}

func newton(flows []float64) (float64, bool) {
	r := newtonStart
	for i := 0; i < newtonMaxIter; i++ {
		v := npv(flows, r)
		if math.Abs(v) < npvTolerance {
			return r, true
		}
		d := npvDerivative(flows, r)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, false
		}
		next := r - v/d
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-r) < stepTolerance {
			return next, true
		}
		r = next
	}
	return 0, false
}

func bisect(flows []float64) (float64, bool) {
	lo, hi := bisectLow, bisectHigh
	fLo := npv(flows, lo)
	fHi := npv(flows, hi)
	if fLo*fHi > 0 {
		return 0, false // cannot bracket a root
	}

	mid := 0.0
	for i := 0; i < bisectMaxIter; i++ {
		mid = (lo + hi) / 2
		fMid := npv(flows, mid)
		if math.Abs(fMid) < npvTolerance {
			return mid, true
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return mid, true
}

// npv discounts each flow at rate r: sum of CF_t / (1+r)^t.
func npv(flows []float64, r float64) float64 {
	sum := 0.0
	for t, cf := range flows {
		sum += cf / math.Pow(1+r, float64(t))
	}
	return sum
}

// npvDerivative is the closed-form d/dr of npv.
func npvDerivative(flows []float64, r float64) float64 {
	sum := 0.0
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		sum -= float64(t) * cf / math.Pow(1+r, float64(t+1))
	}
	return sum
}
