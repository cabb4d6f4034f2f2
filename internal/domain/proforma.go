package domain

// AmortRow is one period of a fixed-rate amortization schedule.
type AmortRow struct {
	Period    int // 1-based month index
	Payment   float64
	Principal float64 // principal portion, floored at 0
	Interest  float64
	Balance   float64 // remaining balance after this payment, floored at 0
}

// OperatingExpenses itemizes the annual expense buckets of a pro forma.
type OperatingExpenses struct {
	Taxes       float64
	Insurance   float64
	HOA         float64
	Utilities   float64
	Other       float64 // sum of itemized extra expense lines
	Management  float64 // percent-of-income buckets, each clamped to 90% of GSI
	Maintenance float64
	Capex       float64
}

// Total returns the sum of all expense buckets.
func (e OperatingExpenses) Total() float64 {
	return e.Taxes + e.Insurance + e.HOA + e.Utilities + e.Other +
		e.Management + e.Maintenance + e.Capex
}

// Proforma holds derived annual figures for a rental hold.
// Pure function of DealParams; never persisted.
type Proforma struct {
	GrossScheduledIncome float64
	VacancyLoss          float64
	EffectiveGrossIncome float64

	Expenses      OperatingExpenses
	TotalExpenses float64

	NOI               float64 // EGI - operating expenses, before debt service
	AnnualDebtService float64
	CashFlow          float64 // NOI - debt service

	CapRatePct            float64 // NOI / purchase price; 0 when price <= 0
	CashOnCashPct         float64 // cash flow / cash invested; 0 when invested <= 0
	DSCR                  float64 // NOI / debt service; 0 when debt service == 0
	BreakEvenOccupancyPct float64 // (expenses + debt service) / GSI
}

// FlipResult holds single-pass buy-rehab-sell economics.
type FlipResult struct {
	LoanAmount        float64
	HoldingMonths     int
	HoldingCosts      float64 // taxes, insurance, HOA, utilities and interest over the hold
	TotalCashInvested float64
	SalePrice         float64 // after-repair value
	NetSaleProceeds   float64 // after selling costs and loan payoff
	Profit            float64
	ROIPct            float64 // profit / cash invested
	AnnualizedROIPct  float64
}

// BrrrrResult holds buy-rehab-rent-refinance economics.
type BrrrrResult struct {
	InitialLoanAmount float64
	RefiLoanAmount    float64 // refi LTV x after-repair value
	PayoffBalance     float64 // original loan balance at refinance
	CashOut           float64 // refi proceeds - payoff - refi closing costs
	CashLeftInDeal    float64 // initial cash invested - cash out, floored at 0

	NewAnnualDebtService float64
	AnnualCashFlow       float64 // post-refi NOI - new debt service
	CashOnCashPct        float64 // 0 when no cash left in the deal
}
