package domain

// LineItem is one named monthly income or expense line.
type LineItem struct {
	Name    string
	Monthly float64 // currency units per month
}

// DealParams is the flat assumption set for one deal.
// All percentage fields hold 0-100 values, not fractions; the engine
// clamps them into fractional ranges at the point of use. The engine
// never mutates a DealParams; every computation takes a value copy.
type DealParams struct {
	// Acquisition
	PurchasePrice    float64
	ClosingCosts     float64
	RehabCost        float64
	AfterRepairValue float64

	// Financing
	DownPaymentPct     float64
	InterestRatePct    float64 // annual nominal rate
	TermYears          float64
	PointsPct          float64 // % of loan amount, paid at close
	LoanFees           float64
	LoanAmountOverride *float64 // nil = derive from price and down payment

	// Income
	MonthlyRent float64
	OtherIncome []LineItem

	// Fixed expenses
	AnnualTaxes      float64
	AnnualInsurance  float64
	MonthlyHOA       float64
	MonthlyUtilities float64
	OtherExpenses    []LineItem

	// Percent-of-income expenses
	VacancyPct     float64
	ManagementPct  float64
	MaintenancePct float64
	CapexPct       float64

	// Exit assumptions
	HoldingYears    int
	SellingCostPct  float64
	AppreciationPct float64 // annual
	ExitCapRatePct  float64

	// Flip sub-parameters
	FlipHoldingMonths int // rehab-to-sale duration; 0 means 6

	// Refinance (BRRRR) sub-parameters
	RefiLTVPct       float64 // % of after-repair value
	RefiRatePct      float64
	RefiTermYears    float64
	RefiClosingCosts float64
}

// Deal is a stored deal: identifying metadata plus its parameter snapshot.
type Deal struct {
	DealID    string // deterministic hash, see idhash
	Name      string
	Address   string
	Params    DealParams
	CreatedAt int64 // unix ms, set by the store
}

// ClampPct clamps a percentage field into [0, 100].
func ClampPct(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Fraction converts a 0-100 percentage field into a clamped [0, 1] fraction.
func Fraction(pct float64) float64 {
	return ClampPct(pct) / 100
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
