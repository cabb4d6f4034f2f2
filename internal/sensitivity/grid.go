// Package sensitivity builds deterministic stress grids by
// re-evaluating the full pro forma over perturbed assumptions.
package sensitivity

import (
	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/finance"
)

// Grid computes a size x size matrix of cash-on-cash percentages.
// Rows perturb rent by (row-center)*rentDeltaPct percent relative to
// baseline; columns shift vacancy by (col-center)*vacDeltaPts
// percentage points. The center cell is the unperturbed baseline.
// An even or non-positive size is normalized to the next odd value,
// so a center cell always exists.
//
// Each cell is a full re-evaluation on its own parameter snapshot;
// there is no incremental computation and no shared state.
func Grid(p domain.DealParams, rentDeltaPct, vacDeltaPts float64, size int) [][]float64 {
	size = normalizeSize(size)
	center := size / 2

	grid := make([][]float64, size)
	for r := 0; r < size; r++ {
		grid[r] = make([]float64, size)
		for c := 0; c < size; c++ {
			cell := p
			cell.MonthlyRent = p.MonthlyRent * (1 + float64(r-center)*rentDeltaPct/100)
			cell.VacancyPct = p.VacancyPct + float64(c-center)*vacDeltaPts
			grid[r][c] = finance.ProformaAnnual(cell).CashOnCashPct
		}
	}
	return grid
}

func normalizeSize(size int) int {
	if size < 1 {
		return 1
	}
	if size%2 == 0 {
		return size + 1
	}
	return size
}
