// Command underwrite evaluates a single deal: annual pro forma, flip
// and BRRRR economics, and the rent/vacancy sensitivity grid.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/idhash"
	"property-deal-lab/internal/reporting"
	"property-deal-lab/internal/storage"
	pgstore "property-deal-lab/internal/storage/postgres"
)

func main() {
	// Parameter source: a JSON file or a stored deal.
	paramsFile := flag.String("params", "", "Path to a JSON file with deal parameters")
	dealID := flag.String("deal-id", "", "Deal ID to load from storage")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (with -deal-id)")

	// Sensitivity axes
	rentDelta := flag.Float64("rent-delta", 10, "Rent perturbation per grid step (%)")
	vacDelta := flag.Float64("vac-delta", 2.5, "Vacancy perturbation per grid step (points)")
	gridSize := flag.Int("grid-size", 5, "Sensitivity grid size (odd)")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	outputDir := flag.String("output-dir", "", "Write report files into this directory")

	flag.Parse()

	logger := log.New(os.Stderr, "[underwrite] ", log.LstdFlags)

	if *paramsFile == "" && *dealID == "" {
		logger.Fatal("either -params or -deal-id is required")
	}

	ctx := context.Background()

	deal, err := loadDeal(ctx, *paramsFile, *dealID, *postgresDSN)
	if err != nil {
		logger.Fatalf("load deal: %v", err)
	}

	gen := reporting.NewGenerator(*rentDelta, *vacDelta, *gridSize)
	report := gen.Build(deal, nil, "")

	if *outputDir != "" {
		if err := gen.WriteFiles(*outputDir, report, nil); err != nil {
			logger.Fatalf("write report files: %v", err)
		}
		logger.Printf("Report written to %s", *outputDir)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Fatalf("encode report: %v", err)
		}
		return
	}

	fmt.Print(reporting.RenderMarkdown(report))
}

// loadDeal resolves the deal either from a params file or from storage.
func loadDeal(ctx context.Context, paramsFile, dealID, postgresDSN string) (*domain.Deal, error) {
	if paramsFile != "" {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return nil, fmt.Errorf("read params file: %w", err)
		}
		var p domain.DealParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse params file: %w", err)
		}
		deal := &domain.Deal{
			Name:   paramsFile,
			Params: p,
		}
		deal.DealID = idhash.ComputeDealID(deal.Name, deal.Address, p.PurchasePrice, 0)
		return deal, nil
	}

	if postgresDSN == "" {
		return nil, fmt.Errorf("-postgres-dsn is required with -deal-id")
	}
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	var store storage.DealStore = pgstore.NewDealStore(pool)
	return store.GetByID(ctx, dealID)
}
