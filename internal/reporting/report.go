// Package reporting renders underwriting results to markdown and CSV.
package reporting

import (
	"time"

	"property-deal-lab/internal/domain"
)

// Report is the full underwriting output for one deal.
type Report struct {
	GeneratedAt time.Time

	DealID   string
	DealName string
	Address  string

	Proforma domain.Proforma
	Flip     domain.FlipResult
	Brrrr    domain.BrrrrResult

	// Sensitivity grid of cash-on-cash percentages, with the axis
	// steps used to build it.
	Grid         [][]float64
	RentDeltaPct float64
	VacDeltaPts  float64

	// Simulation is nil when no Monte Carlo run was requested.
	Simulation *domain.SimResult
	RunID      string
}

// HealthWarnings flags assumption combinations the engine deliberately
// does not correct, so the presentation layer can surface them.
func (r *Report) HealthWarnings() []string {
	var warnings []string
	if r.Proforma.NOI < 0 {
		warnings = append(warnings, "negative NOI: percent-of-income expenses exceed effective income")
	}
	if r.Proforma.AnnualDebtService > 0 && r.Proforma.DSCR < 1 {
		warnings = append(warnings, "DSCR below 1.0: operating income does not cover debt service")
	}
	if r.Proforma.BreakEvenOccupancyPct > 100 {
		warnings = append(warnings, "break-even occupancy above 100%")
	}
	return warnings
}
