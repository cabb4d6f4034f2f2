// Command simulate runs a Monte Carlo projection for one deal and
// prints the outcome distribution. Trials can be archived to
// ClickHouse and the summary persisted to PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/idhash"
	"property-deal-lab/internal/montecarlo"
	"property-deal-lab/internal/reporting"
	"property-deal-lab/internal/storage"
	chstore "property-deal-lab/internal/storage/clickhouse"
	pgstore "property-deal-lab/internal/storage/postgres"
)

func main() {
	// Parameter source
	paramsFile := flag.String("params", "", "Path to a JSON file with deal parameters")
	dealID := flag.String("deal-id", "", "Deal ID to load from storage")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (enables trial archive)")

	// Simulation config
	runs := flag.Int("runs", 5000, "Number of Monte Carlo trials [100, 50000]")
	horizon := flag.Int("horizon", 10, "Projection horizon in years [1, 50]")
	exitMethod := flag.String("exit", domain.ExitMethodAppreciation, "Exit valuation: appreciation or exitcap")
	seed := flag.Int64("seed", 0, "Sampler seed (0 = time-based)")

	// Distributions (percent units)
	rentMean := flag.Float64("rent-growth-mean", 3, "Yearly rent growth mean (%)")
	rentStd := flag.Float64("rent-growth-std", 1, "Yearly rent growth std (%)")
	expMean := flag.Float64("expense-growth-mean", 3, "Yearly expense growth mean (%)")
	expStd := flag.Float64("expense-growth-std", 1, "Yearly expense growth std (%)")
	apprMean := flag.Float64("appreciation-mean", 3, "Terminal appreciation mean (%)")
	apprStd := flag.Float64("appreciation-std", 2, "Terminal appreciation std (%)")
	vacMean := flag.Float64("vacancy-mean", 5, "Vacancy rate mean (%)")
	vacStd := flag.Float64("vacancy-std", 2, "Vacancy rate std (%)")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persist := flag.Bool("persist", false, "Persist run summary to PostgreSQL")
	trialsCSV := flag.String("trials-csv", "", "Write per-trial outcomes to this CSV file")

	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	if *paramsFile == "" && *dealID == "" {
		logger.Fatal("either -params or -deal-id is required")
	}
	if *exitMethod != domain.ExitMethodAppreciation && *exitMethod != domain.ExitMethodExitCap {
		logger.Fatalf("invalid -exit %q: must be %s or %s",
			*exitMethod, domain.ExitMethodAppreciation, domain.ExitMethodExitCap)
	}

	*runs = clampInt(*runs, 100, 50000)
	*horizon = clampInt(*horizon, 1, 50)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	deal, pool, err := loadDeal(ctx, *paramsFile, *dealID, *postgresDSN)
	if err != nil {
		logger.Fatalf("load deal: %v", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	cfg := domain.SimConfig{
		Runs:         *runs,
		HorizonYears: *horizon,
		ExitMethod:   *exitMethod,
		Seed:         *seed,
		Dist: domain.DistributionSpec{
			RentGrowth:    domain.NormalSpec{MeanPct: *rentMean, StdPct: *rentStd},
			ExpenseGrowth: domain.NormalSpec{MeanPct: *expMean, StdPct: *expStd},
			Appreciation:  domain.NormalSpec{MeanPct: *apprMean, StdPct: *apprStd},
			Vacancy:       domain.NormalSpec{MeanPct: *vacMean, StdPct: *vacStd},
		},
	}

	engine := montecarlo.New(montecarlo.Options{
		Sampler: montecarlo.NewGaussianSampler(*seed),
		OnProgress: func(done, total int) {
			logger.Printf("progress: %d/%d trials", done, total)
		},
	})

	start := time.Now()
	result, trials, err := engine.Run(ctx, deal.Params, cfg)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}
	logger.Printf("Completed %d trials in %s (%d IRRs resolved)",
		result.Runs, time.Since(start).Round(time.Millisecond), result.IRRResolved)

	runID := idhash.ComputeRunID(deal.DealID, cfg.Runs, cfg.HorizonYears, cfg.ExitMethod, cfg.Seed)
	for i := range trials {
		trials[i].RunID = runID
	}

	if *clickhouseDSN != "" {
		if err := archiveTrials(ctx, *clickhouseDSN, trials); err != nil {
			logger.Fatalf("archive trials: %v", err)
		}
		logger.Printf("Archived %d trials (run %s)", len(trials), idhash.ShortID(runID))
	}

	if *persist {
		if pool == nil {
			logger.Fatal("-persist requires -postgres-dsn")
		}
		summary := &domain.RunSummary{
			RunID:     runID,
			DealID:    deal.DealID,
			Seed:      *seed,
			Result:    *result,
			CreatedAt: time.Now().UnixMilli(),
		}
		var runStore storage.RunStore = pgstore.NewRunStore(pool)
		if err := runStore.Insert(ctx, summary); err != nil && err != storage.ErrDuplicateKey {
			logger.Fatalf("persist run summary: %v", err)
		}
	}

	if *trialsCSV != "" {
		refs := make([]*domain.TrialRecord, len(trials))
		for i := range trials {
			refs[i] = &trials[i]
		}
		if err := os.WriteFile(*trialsCSV, []byte(reporting.RenderTrialsCSV(refs)), 0o644); err != nil {
			logger.Fatalf("write trials csv: %v", err)
		}
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatalf("encode result: %v", err)
		}
		return
	}

	fmt.Printf("Run %s\n", idhash.ShortID(runID))
	fmt.Printf("IRR     p10=%.4f p50=%.4f p90=%.4f mean=%.4f (%d/%d resolved)\n",
		result.IRRP10, result.IRRP50, result.IRRP90, result.IRRMean,
		result.IRRResolved, result.Runs)
	fmt.Printf("Proceeds p10=%.2f p50=%.2f p90=%.2f\n",
		result.ProceedsP10, result.ProceedsP50, result.ProceedsP90)
}

// loadDeal resolves the deal and returns the pool when one was opened.
func loadDeal(ctx context.Context, paramsFile, dealID, postgresDSN string) (*domain.Deal, *pgstore.Pool, error) {
	if paramsFile != "" {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read params file: %w", err)
		}
		var p domain.DealParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, nil, fmt.Errorf("parse params file: %w", err)
		}
		deal := &domain.Deal{Name: paramsFile, Params: p}
		deal.DealID = idhash.ComputeDealID(deal.Name, deal.Address, p.PurchasePrice, 0)

		// A pool is still useful for -persist.
		if postgresDSN != "" {
			pool, err := pgstore.NewPool(ctx, postgresDSN)
			if err != nil {
				return nil, nil, err
			}
			return deal, pool, nil
		}
		return deal, nil, nil
	}

	if postgresDSN == "" {
		return nil, nil, fmt.Errorf("-postgres-dsn is required with -deal-id")
	}
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, err
	}
	deal, err := pgstore.NewDealStore(pool).GetByID(ctx, dealID)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return deal, pool, nil
}

func archiveTrials(ctx context.Context, dsn string, trials []domain.TrialRecord) error {
	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	refs := make([]*domain.TrialRecord, len(trials))
	for i := range trials {
		refs[i] = &trials[i]
	}
	return chstore.NewTrialArchive(conn).InsertBulk(ctx, refs)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
