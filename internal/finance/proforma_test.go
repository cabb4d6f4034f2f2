package finance

import (
	"math"
	"testing"

	"property-deal-lab/internal/domain"
)

// rentalParams is a representative single-family rental hold.
func rentalParams() domain.DealParams {
	return domain.DealParams{
		PurchasePrice:   350000,
		ClosingCosts:    5000,
		DownPaymentPct:  25,
		InterestRatePct: 6.75,
		TermYears:       30,
		MonthlyRent:     2800,
		AnnualTaxes:     3600,
		AnnualInsurance: 1200,
		VacancyPct:      5,
		ManagementPct:   8,
		MaintenancePct:  5,
		CapexPct:        5,
	}
}

func TestProformaAnnual_RentalScenario(t *testing.T) {
	pf := ProformaAnnual(rentalParams())

	// GSI = 2800 * 12 = 33600
	if math.Abs(pf.GrossScheduledIncome-33600) > 1e-6 {
		t.Errorf("expected GSI 33600, got %f", pf.GrossScheduledIncome)
	}
	// Vacancy = 5% of GSI = 1680
	if math.Abs(pf.VacancyLoss-1680) > 1e-6 {
		t.Errorf("expected vacancy loss 1680, got %f", pf.VacancyLoss)
	}
	if math.Abs(pf.EffectiveGrossIncome-31920) > 1e-6 {
		t.Errorf("expected EGI 31920, got %f", pf.EffectiveGrossIncome)
	}
	// Taxes 3600 + insurance 1200 + mgmt 2688 + maint 1680 + capex 1680
	if math.Abs(pf.TotalExpenses-10848) > 1e-6 {
		t.Errorf("expected total expenses 10848, got %f", pf.TotalExpenses)
	}
	if math.Abs(pf.NOI-21072) > 1e-6 {
		t.Errorf("expected NOI 21072, got %f", pf.NOI)
	}

	// Cap rate = NOI / price = 21072 / 350000 ≈ 6.02%
	if pf.CapRatePct < 6.0 || pf.CapRatePct > 6.05 {
		t.Errorf("expected cap rate near 6.02, got %f", pf.CapRatePct)
	}
	// Debt service on a 262500 loan at 6.75%/30yr ≈ 20430/year, so the
	// deal barely cash flows
	if pf.DSCR < 1.0 || pf.DSCR > 1.1 {
		t.Errorf("expected DSCR slightly above 1, got %f", pf.DSCR)
	}
	if pf.CashFlow <= 0 {
		t.Errorf("expected positive cash flow, got %f", pf.CashFlow)
	}
	if pf.BreakEvenOccupancyPct < 90 || pf.BreakEvenOccupancyPct > 100 {
		t.Errorf("expected break-even occupancy in the 90s, got %f", pf.BreakEvenOccupancyPct)
	}
}

func TestProformaAnnual_OtherIncomeAndExpenses(t *testing.T) {
	p := rentalParams()
	p.OtherIncome = []domain.LineItem{
		{Name: "laundry", Monthly: 50},
		{Name: "parking", Monthly: 100},
	}
	p.OtherExpenses = []domain.LineItem{
		{Name: "landscaping", Monthly: 75},
	}

	pf := ProformaAnnual(p)

	// GSI = (2800 + 150) * 12 = 35400
	if math.Abs(pf.GrossScheduledIncome-35400) > 1e-6 {
		t.Errorf("expected GSI 35400, got %f", pf.GrossScheduledIncome)
	}
	if math.Abs(pf.Expenses.Other-900) > 1e-6 {
		t.Errorf("expected other expenses 900, got %f", pf.Expenses.Other)
	}
}

func TestProformaAnnual_PercentBucketsClampedIndividually(t *testing.T) {
	p := rentalParams()
	p.ManagementPct = 150
	p.MaintenancePct = 120

	pf := ProformaAnnual(p)

	// Each bucket clamps at 90% of GSI on its own; two saturated
	// buckets can still jointly exceed income
	limit := pf.GrossScheduledIncome * 0.90
	if math.Abs(pf.Expenses.Management-limit) > 1e-6 {
		t.Errorf("expected management clamped to %f, got %f", limit, pf.Expenses.Management)
	}
	if math.Abs(pf.Expenses.Maintenance-limit) > 1e-6 {
		t.Errorf("expected maintenance clamped to %f, got %f", limit, pf.Expenses.Maintenance)
	}
	if pf.NOI >= 0 {
		t.Errorf("expected negative NOI with saturated buckets, got %f", pf.NOI)
	}
}

func TestProformaAnnual_ZeroIncome(t *testing.T) {
	p := domain.DealParams{
		PurchasePrice:   200000,
		DownPaymentPct:  20,
		InterestRatePct: 7,
		TermYears:       30,
		AnnualTaxes:     2400,
	}

	pf := ProformaAnnual(p)

	if pf.GrossScheduledIncome != 0 {
		t.Errorf("expected zero GSI, got %f", pf.GrossScheduledIncome)
	}
	// No income means ratios on income stay zero instead of dividing
	// by zero
	if pf.BreakEvenOccupancyPct != 0 {
		t.Errorf("expected zero break-even, got %f", pf.BreakEvenOccupancyPct)
	}
	if pf.NOI != -2400 {
		t.Errorf("expected NOI -2400, got %f", pf.NOI)
	}
	if pf.DSCR >= 0 {
		t.Errorf("expected negative DSCR, got %f", pf.DSCR)
	}
}

func TestProformaAnnual_AllCashPurchase(t *testing.T) {
	p := rentalParams()
	p.DownPaymentPct = 100

	pf := ProformaAnnual(p)

	if pf.AnnualDebtService != 0 {
		t.Errorf("expected zero debt service, got %f", pf.AnnualDebtService)
	}
	// No debt service leaves DSCR at its zero value
	if pf.DSCR != 0 {
		t.Errorf("expected DSCR 0 without debt, got %f", pf.DSCR)
	}
	if math.Abs(pf.CashFlow-pf.NOI) > 1e-9 {
		t.Errorf("expected cash flow to equal NOI, got %f vs %f", pf.CashFlow, pf.NOI)
	}
}
