// Package finance is the pure formula library: loan amortization,
// annual pro forma, flip and refinance economics. Every function takes
// a parameter snapshot and returns a new result record; degenerate
// inputs resolve to 0 or a clamped bound, never an error.
package finance

import (
	"math"

	"property-deal-lab/internal/domain"
)

// balanceZeroThreshold is the remaining-balance level at which an
// amortization schedule is considered fully paid.
const balanceZeroThreshold = 0.005

// MonthlyPayment computes the fixed monthly payment for a fully
// amortizing loan. Returns 0 for non-positive principal or term.
// A zero rate degrades to straight-line principal repayment.
func MonthlyPayment(principal, annualRatePct, termYears float64) float64 {
	months := totalMonths(termYears)
	if principal <= 0 || months <= 0 {
		return 0
	}
	if annualRatePct == 0 {
		return principal / float64(months)
	}
	r := annualRatePct / 100 / 12
	pow := math.Pow(1+r, float64(months))
	return principal * r * pow / (pow - 1)
}

// AmortSchedule produces the ordered amortization rows for a loan.
// Each row's interest accrues on the running balance; the principal
// portion is floored at 0, so a payment smaller than accrued interest
// stalls the balance rather than growing it. The schedule ends with
// the row where the balance drops to <= 0.005, or after the nominal
// term, whichever comes first.
func AmortSchedule(principal, annualRatePct, termYears float64) []domain.AmortRow {
	months := totalMonths(termYears)
	if principal <= 0 || months <= 0 {
		return nil
	}

	payment := MonthlyPayment(principal, annualRatePct, termYears)
	r := annualRatePct / 100 / 12

	rows := make([]domain.AmortRow, 0, months)
	balance := principal
	for m := 1; m <= months; m++ {
		interest := balance * r
		principalPortion := payment - interest
		if principalPortion < 0 {
			principalPortion = 0
		}
		balance -= principalPortion
		if balance < 0 {
			balance = 0
		}
		rows = append(rows, domain.AmortRow{
			Period:    m,
			Payment:   payment,
			Principal: principalPortion,
			Interest:  interest,
			Balance:   balance,
		})
		if balance <= balanceZeroThreshold {
			break
		}
	}
	return rows
}

// BalanceAtMonth reads the remaining balance after `month` payments
// from a schedule. Months past the end of the schedule return the
// final row's balance (the schedule already fully amortized).
func BalanceAtMonth(schedule []domain.AmortRow, month int) float64 {
	if len(schedule) == 0 {
		return 0
	}
	if month < 1 {
		month = 1
	}
	if month > len(schedule) {
		return schedule[len(schedule)-1].Balance
	}
	return schedule[month-1].Balance
}

// LoanAmount resolves the financed amount: an explicit finite override
// wins; otherwise it is derived from purchase price and down payment.
func LoanAmount(p domain.DealParams) float64 {
	if p.LoanAmountOverride != nil && isFinite(*p.LoanAmountOverride) {
		return *p.LoanAmountOverride
	}
	return p.PurchasePrice * (1 - domain.Fraction(p.DownPaymentPct))
}

// TotalCashInvested sums the cash required to close: down payment,
// points on the loan amount, closing costs, rehab and loan fees.
func TotalCashInvested(p domain.DealParams) float64 {
	loan := LoanAmount(p)
	down := p.PurchasePrice - loan
	if down < 0 {
		down = 0
	}
	points := loan * domain.Fraction(p.PointsPct)
	return down + points + p.ClosingCosts + p.RehabCost + p.LoanFees
}

func totalMonths(termYears float64) int {
	return int(math.Round(termYears * 12))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
