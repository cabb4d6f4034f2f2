package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/finance"
	"property-deal-lab/internal/sensitivity"
)

// Generator builds underwriting reports from a deal snapshot.
type Generator struct {
	rentDeltaPct float64
	vacDeltaPts  float64
	gridSize     int
	now          func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a Generator with the given sensitivity axes.
func NewGenerator(rentDeltaPct, vacDeltaPts float64, gridSize int) *Generator {
	return &Generator{
		rentDeltaPct: rentDeltaPct,
		vacDeltaPts:  vacDeltaPts,
		gridSize:     gridSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Build assembles the full report for a deal. sim and runID may be
// zero-valued when no Monte Carlo run was requested.
func (g *Generator) Build(deal *domain.Deal, sim *domain.SimResult, runID string) *Report {
	return &Report{
		GeneratedAt:  g.now(),
		DealID:       deal.DealID,
		DealName:     deal.Name,
		Address:      deal.Address,
		Proforma:     finance.ProformaAnnual(deal.Params),
		Flip:         finance.FlipResults(deal.Params),
		Brrrr:        finance.BrrrrResults(deal.Params),
		Grid:         sensitivity.Grid(deal.Params, g.rentDeltaPct, g.vacDeltaPts, g.gridSize),
		RentDeltaPct: g.rentDeltaPct,
		VacDeltaPts:  g.vacDeltaPts,
		Simulation:   sim,
		RunID:        runID,
	}
}

// WriteFiles writes the markdown report and grid CSV into dir, plus a
// trials CSV when trials are present.
func (g *Generator) WriteFiles(dir string, r *Report, trials []*domain.TrialRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(dir, fmt.Sprintf("underwriting_%s.md", shortName(r.DealID)))
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	gridPath := filepath.Join(dir, fmt.Sprintf("sensitivity_%s.csv", shortName(r.DealID)))
	if err := os.WriteFile(gridPath, []byte(RenderGridCSV(r.Grid)), 0o644); err != nil {
		return fmt.Errorf("write grid csv: %w", err)
	}

	if len(trials) > 0 {
		trialsPath := filepath.Join(dir, fmt.Sprintf("trials_%s.csv", shortName(r.RunID)))
		if err := os.WriteFile(trialsPath, []byte(RenderTrialsCSV(trials)), 0o644); err != nil {
			return fmt.Errorf("write trials csv: %w", err)
		}
	}

	return nil
}

// shortName truncates a hex ID for use in file names.
func shortName(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	if id == "" {
		return "report"
	}
	return id
}
