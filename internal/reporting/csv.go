package reporting

import (
	"fmt"
	"strings"

	"property-deal-lab/internal/domain"
)

// RenderTrialsCSV renders per-trial simulation outcomes as a CSV string.
func RenderTrialsCSV(trials []*domain.TrialRecord) string {
	var sb strings.Builder

	sb.WriteString("run_id,trial_index,irr,irr_resolved,sale_proceeds\n")
	for _, t := range trials {
		resolved := 0
		if t.IRRResolved {
			resolved = 1
		}
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%d,%.2f\n",
			t.RunID,
			t.TrialIndex,
			t.IRR,
			resolved,
			t.SaleProceeds,
		))
	}

	return sb.String()
}

// RenderGridCSV renders a sensitivity grid as a CSV string. Row and
// column headers are the step offsets from the baseline center cell.
func RenderGridCSV(grid [][]float64) string {
	var sb strings.Builder

	size := len(grid)
	center := size / 2

	sb.WriteString("rent_step")
	for c := 0; c < size; c++ {
		sb.WriteString(fmt.Sprintf(",vac%+d", c-center))
	}
	sb.WriteString("\n")

	for rIdx, row := range grid {
		sb.WriteString(fmt.Sprintf("%+d", rIdx-center))
		for _, v := range row {
			sb.WriteString(fmt.Sprintf(",%.4f", v))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
