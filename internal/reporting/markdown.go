package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Underwriting Report — %s\n\n", r.DealName))
	if r.Address != "" {
		sb.WriteString(fmt.Sprintf("Address: %s\n\n", r.Address))
	}
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Annual pro forma
	sb.WriteString("## Annual Pro Forma\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Gross Scheduled Income | %.2f |\n", r.Proforma.GrossScheduledIncome))
	sb.WriteString(fmt.Sprintf("| Vacancy Loss | %.2f |\n", r.Proforma.VacancyLoss))
	sb.WriteString(fmt.Sprintf("| Effective Gross Income | %.2f |\n", r.Proforma.EffectiveGrossIncome))
	sb.WriteString(fmt.Sprintf("| Total Operating Expenses | %.2f |\n", r.Proforma.TotalExpenses))
	sb.WriteString(fmt.Sprintf("| NOI | %.2f |\n", r.Proforma.NOI))
	sb.WriteString(fmt.Sprintf("| Annual Debt Service | %.2f |\n", r.Proforma.AnnualDebtService))
	sb.WriteString(fmt.Sprintf("| Cash Flow | %.2f |\n", r.Proforma.CashFlow))
	sb.WriteString(fmt.Sprintf("| Cap Rate | %.2f%% |\n", r.Proforma.CapRatePct))
	sb.WriteString(fmt.Sprintf("| Cash-on-Cash | %.2f%% |\n", r.Proforma.CashOnCashPct))
	sb.WriteString(fmt.Sprintf("| DSCR | %.2f |\n", r.Proforma.DSCR))
	sb.WriteString(fmt.Sprintf("| Break-even Occupancy | %.2f%% |\n", r.Proforma.BreakEvenOccupancyPct))
	sb.WriteString("\n")

	// Health warnings
	if warnings := r.HealthWarnings(); len(warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	// Flip
	sb.WriteString("## Flip\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Holding Months | %d |\n", r.Flip.HoldingMonths))
	sb.WriteString(fmt.Sprintf("| Total Cash Invested | %.2f |\n", r.Flip.TotalCashInvested))
	sb.WriteString(fmt.Sprintf("| Net Sale Proceeds | %.2f |\n", r.Flip.NetSaleProceeds))
	sb.WriteString(fmt.Sprintf("| Profit | %.2f |\n", r.Flip.Profit))
	sb.WriteString(fmt.Sprintf("| ROI | %.2f%% |\n", r.Flip.ROIPct))
	sb.WriteString(fmt.Sprintf("| Annualized ROI | %.2f%% |\n", r.Flip.AnnualizedROIPct))
	sb.WriteString("\n")

	// BRRRR
	sb.WriteString("## BRRRR\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Refi Loan Amount | %.2f |\n", r.Brrrr.RefiLoanAmount))
	sb.WriteString(fmt.Sprintf("| Cash Out | %.2f |\n", r.Brrrr.CashOut))
	sb.WriteString(fmt.Sprintf("| Cash Left In Deal | %.2f |\n", r.Brrrr.CashLeftInDeal))
	sb.WriteString(fmt.Sprintf("| Annual Cash Flow | %.2f |\n", r.Brrrr.AnnualCashFlow))
	sb.WriteString(fmt.Sprintf("| Cash-on-Cash | %.2f%% |\n", r.Brrrr.CashOnCashPct))
	sb.WriteString("\n")

	// Sensitivity grid
	if len(r.Grid) > 0 {
		sb.WriteString("## Sensitivity — Cash-on-Cash %\n\n")
		sb.WriteString(fmt.Sprintf("Rows: rent %+.1f%% per step. Columns: vacancy %+.1f pts per step.\n\n",
			r.RentDeltaPct, r.VacDeltaPts))
		renderGridTable(&sb, r.Grid)
	}

	// Monte Carlo
	if r.Simulation != nil {
		s := r.Simulation
		sb.WriteString("## Monte Carlo\n\n")
		sb.WriteString(fmt.Sprintf("Trials: %d | Horizon: %d years | Exit: %s | Resolved IRRs: %d\n\n",
			s.Runs, s.HorizonYears, s.ExitMethod, s.IRRResolved))
		sb.WriteString("| Metric | P10 | P50 | P90 |\n")
		sb.WriteString("|--------|-----|-----|-----|\n")
		sb.WriteString(fmt.Sprintf("| IRR | %.4f | %.4f | %.4f |\n", s.IRRP10, s.IRRP50, s.IRRP90))
		sb.WriteString(fmt.Sprintf("| Net Sale Proceeds | %.2f | %.2f | %.2f |\n",
			s.ProceedsP10, s.ProceedsP50, s.ProceedsP90))
		sb.WriteString(fmt.Sprintf("\nMean IRR (resolved trials): %.4f\n\n", s.IRRMean))
	}

	return sb.String()
}

func renderGridTable(sb *strings.Builder, grid [][]float64) {
	size := len(grid)
	center := size / 2

	sb.WriteString("| rent \\ vacancy |")
	for c := 0; c < size; c++ {
		sb.WriteString(fmt.Sprintf(" %+d |", c-center))
	}
	sb.WriteString("\n|---|")
	for c := 0; c < size; c++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for rIdx, row := range grid {
		sb.WriteString(fmt.Sprintf("| %+d |", rIdx-center))
		for _, v := range row {
			sb.WriteString(fmt.Sprintf(" %.2f |", v))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
