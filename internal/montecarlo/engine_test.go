package montecarlo

import (
	"context"
	"math"
	"testing"

	"property-deal-lab/internal/domain"
)

// fixedSampler returns the distribution mean for every draw,
// collapsing the projection to its deterministic center.
type fixedSampler struct{}

func (fixedSampler) Normal(mean, std float64) float64 { return mean }

func simParams() domain.DealParams {
	return domain.DealParams{
		PurchasePrice:    350000,
		ClosingCosts:     5000,
		DownPaymentPct:   25,
		InterestRatePct:  6.75,
		TermYears:        30,
		MonthlyRent:      2800,
		AnnualTaxes:      3600,
		AnnualInsurance:  1200,
		VacancyPct:       5,
		ManagementPct:    8,
		MaintenancePct:   5,
		CapexPct:         5,
		SellingCostPct:   7,
		AppreciationPct:  3,
		ExitCapRatePct:   6,
		HoldingYears:     10,
	}
}

func simConfig() domain.SimConfig {
	return domain.SimConfig{
		Runs:         200,
		HorizonYears: 10,
		ExitMethod:   domain.ExitMethodAppreciation,
		Seed:         42,
		Dist: domain.DistributionSpec{
			RentGrowth:    domain.NormalSpec{MeanPct: 3, StdPct: 1},
			ExpenseGrowth: domain.NormalSpec{MeanPct: 2.5, StdPct: 1},
			Appreciation:  domain.NormalSpec{MeanPct: 3, StdPct: 2},
			Vacancy:       domain.NormalSpec{MeanPct: 5, StdPct: 2},
		},
	}
}

func TestEngineRun_ZeroVarianceCollapsesDistribution(t *testing.T) {
	engine := New(Options{Sampler: fixedSampler{}})

	result, trials, err := engine.Run(context.Background(), simParams(), simConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Runs != 200 {
		t.Fatalf("expected 200 runs, got %d", result.Runs)
	}
	if len(trials) != 200 {
		t.Fatalf("expected 200 trials, got %d", len(trials))
	}

	// Identical draws → identical trials → all percentiles coincide
	if result.IRRP10 != result.IRRP50 || result.IRRP50 != result.IRRP90 {
		t.Errorf("expected collapsed IRR percentiles, got %f %f %f",
			result.IRRP10, result.IRRP50, result.IRRP90)
	}
	if result.ProceedsP10 != result.ProceedsP90 {
		t.Errorf("expected collapsed proceeds percentiles, got %f and %f",
			result.ProceedsP10, result.ProceedsP90)
	}
	if result.IRRResolved != 200 {
		t.Errorf("expected all IRRs resolved, got %d", result.IRRResolved)
	}
	if math.Abs(result.IRRMean-result.IRRP50) > 1e-12 {
		t.Errorf("expected mean to equal median, got %f vs %f", result.IRRMean, result.IRRP50)
	}
}

func TestEngineRun_SeedDeterminism(t *testing.T) {
	cfg := simConfig()

	run := func() *domain.SimResult {
		engine := New(Options{Sampler: NewGaussianSampler(cfg.Seed)})
		result, _, err := engine.Run(context.Background(), simParams(), cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return result
	}

	a := run()
	b := run()

	if a.IRRMean != b.IRRMean || a.IRRP50 != b.IRRP50 || a.ProceedsP50 != b.ProceedsP50 {
		t.Errorf("expected identical results for identical seed: %+v vs %+v", a, b)
	}
}

func TestEngineRun_DifferentSeedsDiffer(t *testing.T) {
	cfg := simConfig()

	engineA := New(Options{Sampler: NewGaussianSampler(1)})
	engineB := New(Options{Sampler: NewGaussianSampler(2)})

	a, _, err := engineA.Run(context.Background(), simParams(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _, err := engineB.Run(context.Background(), simParams(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.IRRMean == b.IRRMean && a.ProceedsP50 == b.ProceedsP50 {
		t.Error("expected different seeds to produce different distributions")
	}
}

func TestEngineRun_ContextCancellation(t *testing.T) {
	engine := New(Options{Sampler: fixedSampler{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := engine.Run(ctx, simParams(), simConfig())
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestEngineRun_ProgressCallbacks(t *testing.T) {
	var calls [][2]int
	engine := New(Options{
		Sampler: fixedSampler{},
		OnProgress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	})

	cfg := simConfig()
	cfg.Runs = 1200
	cfg.BatchSize = 500

	_, _, err := engine.Run(context.Background(), simParams(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Batches at 500 and 1000, plus the final completion call
	want := [][2]int{{500, 1200}, {1000, 1200}, {1200, 1200}}
	if len(calls) != len(want) {
		t.Fatalf("expected %d progress calls, got %d: %v", len(want), len(calls), calls)
	}
	for i, c := range calls {
		if c != want[i] {
			t.Errorf("call %d: expected %v, got %v", i, want[i], c)
		}
	}
}

func TestEngineRun_ExitCapUsesTerminalNOI(t *testing.T) {
	p := simParams()
	cfg := simConfig()
	cfg.ExitMethod = domain.ExitMethodExitCap

	engine := New(Options{Sampler: fixedSampler{}})
	result, trials, err := engine.Run(context.Background(), p, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitMethod != domain.ExitMethodExitCap {
		t.Errorf("expected exitcap method recorded, got %q", result.ExitMethod)
	}

	// Positive terminal NOI over a 6% cap must beat the outstanding
	// loan balance and leave positive proceeds
	if trials[0].SaleProceeds <= 0 {
		t.Errorf("expected positive sale proceeds, got %f", trials[0].SaleProceeds)
	}
}

func TestEngineRun_TrialIndexesAssigned(t *testing.T) {
	engine := New(Options{Sampler: fixedSampler{}})

	cfg := simConfig()
	cfg.Runs = 50

	_, trials, err := engine.Run(context.Background(), simParams(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, tr := range trials {
		if tr.TrialIndex != i {
			t.Fatalf("trial %d: expected index %d, got %d", i, i, tr.TrialIndex)
		}
	}
}

func TestEngineRun_HorizonClampedToOne(t *testing.T) {
	engine := New(Options{Sampler: fixedSampler{}})

	cfg := simConfig()
	cfg.HorizonYears = 0
	cfg.Runs = 10

	result, _, err := engine.Run(context.Background(), simParams(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HorizonYears != 1 {
		t.Errorf("expected horizon clamped to 1, got %d", result.HorizonYears)
	}
}
