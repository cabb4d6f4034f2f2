package finance

import (
	"property-deal-lab/internal/domain"
)

// maxIncomeShare caps each percent-of-income expense bucket at 90% of
// gross scheduled income. Buckets are clamped individually, not
// jointly, so pathological inputs can still drive NOI negative; the
// consuming layer surfaces that as a health warning.
const maxIncomeShare = 0.90

// ProformaAnnual derives the annual pro forma for a rental hold.
func ProformaAnnual(p domain.DealParams) domain.Proforma {
	gsi := grossScheduledIncome(p)

	vacancyLoss := incomeBucket(gsi, p.VacancyPct)
	egi := gsi - vacancyLoss

	expenses := domain.OperatingExpenses{
		Taxes:       p.AnnualTaxes,
		Insurance:   p.AnnualInsurance,
		HOA:         p.MonthlyHOA * 12,
		Utilities:   p.MonthlyUtilities * 12,
		Other:       lineItemsAnnual(p.OtherExpenses),
		Management:  incomeBucket(gsi, p.ManagementPct),
		Maintenance: incomeBucket(gsi, p.MaintenancePct),
		Capex:       incomeBucket(gsi, p.CapexPct),
	}
	totalExpenses := expenses.Total()

	noi := egi - totalExpenses
	debtService := MonthlyPayment(LoanAmount(p), p.InterestRatePct, p.TermYears) * 12
	cashFlow := noi - debtService

	pf := domain.Proforma{
		GrossScheduledIncome: gsi,
		VacancyLoss:          vacancyLoss,
		EffectiveGrossIncome: egi,
		Expenses:             expenses,
		TotalExpenses:        totalExpenses,
		NOI:                  noi,
		AnnualDebtService:    debtService,
		CashFlow:             cashFlow,
	}

	if p.PurchasePrice > 0 {
		pf.CapRatePct = noi / p.PurchasePrice * 100
	}
	if invested := TotalCashInvested(p); invested > 0 {
		pf.CashOnCashPct = cashFlow / invested * 100
	}
	if debtService > 0 {
		pf.DSCR = noi / debtService
	}
	if gsi > 0 {
		pf.BreakEvenOccupancyPct = (totalExpenses + debtService) / gsi * 100
	}
	return pf
}

// grossScheduledIncome is annual rent plus all extra income lines.
func grossScheduledIncome(p domain.DealParams) float64 {
	return (p.MonthlyRent + lineItemsMonthly(p.OtherIncome)) * 12
}

// incomeBucket resolves a percent-of-income expense, clamped to
// maxIncomeShare of gross scheduled income.
func incomeBucket(gsi, pct float64) float64 {
	amount := gsi * domain.Fraction(pct)
	if limit := gsi * maxIncomeShare; amount > limit {
		return limit
	}
	return amount
}

func lineItemsMonthly(items []domain.LineItem) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.Monthly
	}
	return sum
}

func lineItemsAnnual(items []domain.LineItem) float64 {
	return lineItemsMonthly(items) * 12
}
