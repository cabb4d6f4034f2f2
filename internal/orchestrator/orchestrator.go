// Package orchestrator coordinates the underwriting pipeline:
// deal load → pro forma / flip / BRRRR → sensitivity → Monte Carlo →
// trial archive → run summary → report files.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/idhash"
	"property-deal-lab/internal/montecarlo"
	"property-deal-lab/internal/reporting"
	"property-deal-lab/internal/storage"
)

// Orchestrator runs the full underwriting pipeline over stored deals.
type Orchestrator struct {
	dealStore    storage.DealStore
	runStore     storage.RunStore
	trialArchive storage.TrialArchive

	simConfig domain.SimConfig
	generator *reporting.Generator
	outputDir string
	verbose   bool
}

// Options for creating an Orchestrator.
type Options struct {
	// Required stores
	DealStore storage.DealStore

	// Optional stores; nil skips the corresponding persistence phase.
	RunStore     storage.RunStore
	TrialArchive storage.TrialArchive

	// Simulation configuration applied to every deal.
	SimConfig domain.SimConfig

	// Report generation
	Generator *reporting.Generator
	OutputDir string // empty skips report files

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	gen := opts.Generator
	if gen == nil {
		gen = reporting.NewGenerator(10, 2.5, 5)
	}
	return &Orchestrator{
		dealStore:    opts.DealStore,
		runStore:     opts.RunStore,
		trialArchive: opts.TrialArchive,
		simConfig:    opts.SimConfig,
		generator:    gen,
		outputDir:    opts.OutputDir,
		verbose:      opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	DealsProcessed int
	RunsCreated    int
	TrialsArchived int
	Errors         []string
}

// Run executes the pipeline for every stored deal. Per-deal failures
// are accumulated, not fatal; only context cancellation aborts.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	o.log("Phase 1: Loading deals...")
	deals, err := o.dealStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load deals) failed: %w", err)
	}
	o.log("  Found %d deals", len(deals))

	for _, deal := range deals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := o.runDeal(ctx, deal, result); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("deal %s: %v", deal.DealID, err))
		}
		result.DealsProcessed++
	}

	o.log("Pipeline completed: %d deals, %d runs, %d trials archived (%d errors)",
		result.DealsProcessed, result.RunsCreated, result.TrialsArchived, len(result.Errors))

	return result, nil
}

// RunDeal executes the pipeline for a single deal by ID.
func (o *Orchestrator) RunDeal(ctx context.Context, dealID string) (*RunResult, error) {
	deal, err := o.dealStore.GetByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("load deal: %w", err)
	}

	result := &RunResult{}
	if err := o.runDeal(ctx, deal, result); err != nil {
		return nil, err
	}
	result.DealsProcessed = 1
	return result, nil
}

func (o *Orchestrator) runDeal(ctx context.Context, deal *domain.Deal, result *RunResult) error {
	o.log("Deal %s: simulating (%d trials, %d year horizon)...",
		idhash.ShortID(deal.DealID), o.simConfig.Runs, o.simConfig.HorizonYears)

	engine := montecarlo.New(montecarlo.Options{
		Sampler: montecarlo.NewGaussianSampler(o.simConfig.Seed),
	})
	sim, trials, err := engine.Run(ctx, deal.Params, o.simConfig)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	runID := idhash.ComputeRunID(deal.DealID, o.simConfig.Runs, o.simConfig.HorizonYears,
		o.simConfig.ExitMethod, o.simConfig.Seed)
	for i := range trials {
		trials[i].RunID = runID
	}

	if o.trialArchive != nil {
		archived := make([]*domain.TrialRecord, len(trials))
		for i := range trials {
			archived[i] = &trials[i]
		}
		if err := o.trialArchive.InsertBulk(ctx, archived); err != nil {
			return fmt.Errorf("archive trials: %w", err)
		}
		result.TrialsArchived += len(trials)
	}

	if o.runStore != nil {
		summary := &domain.RunSummary{
			RunID:     runID,
			DealID:    deal.DealID,
			Seed:      o.simConfig.Seed,
			Result:    *sim,
			CreatedAt: time.Now().UnixMilli(),
		}
		if err := o.runStore.Insert(ctx, summary); err != nil && err != storage.ErrDuplicateKey {
			return fmt.Errorf("persist run summary: %w", err)
		}
	}
	result.RunsCreated++

	if o.outputDir != "" {
		report := o.generator.Build(deal, sim, runID)
		archived := make([]*domain.TrialRecord, len(trials))
		for i := range trials {
			archived[i] = &trials[i]
		}
		if err := o.generator.WriteFiles(o.outputDir, report, archived); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	o.log("Deal %s: done (run %s, %d/%d IRRs resolved)",
		idhash.ShortID(deal.DealID), idhash.ShortID(runID), sim.IRRResolved, sim.Runs)
	return nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
