package finance

import (
	"property-deal-lab/internal/domain"
)

// defaultFlipMonths is assumed when no holding duration is given.
const defaultFlipMonths = 6

// FlipResults derives buy-rehab-sell economics. The property carries
// its loan for the holding period, sells at after-repair value, and
// pays the remaining balance off from the sale.
func FlipResults(p domain.DealParams) domain.FlipResult {
	months := p.FlipHoldingMonths
	if months <= 0 {
		months = defaultFlipMonths
	}

	loan := LoanAmount(p)
	payment := MonthlyPayment(loan, p.InterestRatePct, p.TermYears)
	schedule := AmortSchedule(loan, p.InterestRatePct, p.TermYears)
	payoff := BalanceAtMonth(schedule, months)

	monthlyFixed := p.AnnualTaxes/12 + p.AnnualInsurance/12 + p.MonthlyHOA + p.MonthlyUtilities
	holdingCosts := (monthlyFixed + payment) * float64(months)

	invested := TotalCashInvested(p) + holdingCosts

	salePrice := p.AfterRepairValue
	netProceeds := salePrice*(1-domain.Fraction(p.SellingCostPct)) - payoff
	profit := netProceeds - invested

	r := domain.FlipResult{
		LoanAmount:        loan,
		HoldingMonths:     months,
		HoldingCosts:      holdingCosts,
		TotalCashInvested: invested,
		SalePrice:         salePrice,
		NetSaleProceeds:   netProceeds,
		Profit:            profit,
	}
	if invested > 0 {
		r.ROIPct = profit / invested * 100
		r.AnnualizedROIPct = r.ROIPct * 12 / float64(months)
	}
	return r
}

// BrrrrResults derives buy-rehab-rent-refinance economics: the deal is
// refinanced at RefiLTVPct of after-repair value once rehab completes,
// the original loan is paid off, and the rental then runs on the new
// debt service. Cash-on-cash is measured against the cash still left
// in the deal after the cash-out.
func BrrrrResults(p domain.DealParams) domain.BrrrrResult {
	seasoningMonths := p.FlipHoldingMonths
	if seasoningMonths <= 0 {
		seasoningMonths = defaultFlipMonths
	}

	initialLoan := LoanAmount(p)
	schedule := AmortSchedule(initialLoan, p.InterestRatePct, p.TermYears)
	payoff := BalanceAtMonth(schedule, seasoningMonths)

	refiLoan := p.AfterRepairValue * domain.Fraction(p.RefiLTVPct)
	cashOut := refiLoan - payoff - p.RefiClosingCosts

	cashLeft := TotalCashInvested(p) - cashOut
	if cashLeft < 0 {
		cashLeft = 0
	}

	newDebtService := MonthlyPayment(refiLoan, p.RefiRatePct, p.RefiTermYears) * 12
	noi := ProformaAnnual(p).NOI
	annualCashFlow := noi - newDebtService

	r := domain.BrrrrResult{
		InitialLoanAmount:    initialLoan,
		RefiLoanAmount:       refiLoan,
		PayoffBalance:        payoff,
		CashOut:              cashOut,
		CashLeftInDeal:       cashLeft,
		NewAnnualDebtService: newDebtService,
		AnnualCashFlow:       annualCashFlow,
	}
	if cashLeft > 0 {
		r.CashOnCashPct = annualCashFlow / cashLeft * 100
	}
	return r
}
