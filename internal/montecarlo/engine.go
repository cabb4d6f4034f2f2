// Package montecarlo projects deal outcomes over repeated stochastic
// trials: sampled growth/vacancy assumptions drive yearly pro formas,
// a terminal sale closes the cash-flow sequence, and the IRR and
// proceeds distributions are aggregated across trials.
package montecarlo

import (
	"context"
	"math"
	"sort"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/finance"
	"property-deal-lab/internal/irr"
	"property-deal-lab/internal/stats"
)

const defaultBatchSize = 500

// Engine runs Monte Carlo projections. Each call to Run is
// independent and reentrant; the engine holds no per-run state.
type Engine struct {
	sampler    Sampler
	onProgress func(done, total int)
}

// Options configures an Engine.
type Options struct {
	// Sampler supplies normal draws. Nil means a time-seeded
	// GaussianSampler.
	Sampler Sampler

	// OnProgress, if set, is called between batches with the number
	// of completed trials and the total.
	OnProgress func(done, total int)
}

// New creates an Engine.
func New(opts Options) *Engine {
	s := opts.Sampler
	if s == nil {
		s = NewGaussianSampler(0)
	}
	return &Engine{sampler: s, onProgress: opts.OnProgress}
}

// Run executes cfg.Runs trials against the base parameters and
// aggregates the outcome distributions. Degenerate numeric inputs are
// clamped or resolved to sentinel exclusions, never errors; the only
// error returned is context cancellation, checked between batches.
//
// Debt service is held at the year-one annual amount for every
// projected year rather than re-derived from the schedule; loan terms
// do not change mid-projection.
func (e *Engine) Run(ctx context.Context, p domain.DealParams, cfg domain.SimConfig) (*domain.SimResult, []domain.TrialRecord, error) {
	horizon := cfg.HorizonYears
	if horizon < 1 {
		horizon = 1
	}
	runs := cfg.Runs
	if runs < 0 {
		runs = 0
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	// Trial-invariant figures.
	loan := finance.LoanAmount(p)
	schedule := finance.AmortSchedule(loan, p.InterestRatePct, p.TermYears)
	outstanding := finance.BalanceAtMonth(schedule, horizon*12)
	invested := finance.TotalCashInvested(p)
	debtService := finance.MonthlyPayment(loan, p.InterestRatePct, p.TermYears) * 12
	sellFrac := domain.Fraction(p.SellingCostPct)
	exitCap := domain.Clamp(domain.Fraction(p.ExitCapRatePct), 0.01, 0.25)

	irrs := make([]float64, 0, runs)
	proceeds := make([]float64, 0, runs)
	trials := make([]domain.TrialRecord, 0, runs)

	for i := 0; i < runs; i++ {
		if i%batch == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if e.onProgress != nil && i > 0 {
				e.onProgress(i, runs)
			}
		}

		t := e.trial(p, cfg.Dist, trialInputs{
			horizon:     horizon,
			invested:    invested,
			debtService: debtService,
			outstanding: outstanding,
			sellFrac:    sellFrac,
			exitCap:     exitCap,
			exitMethod:  cfg.ExitMethod,
		})
		t.TrialIndex = i
		trials = append(trials, t)

		proceeds = append(proceeds, t.SaleProceeds)
		if t.IRRResolved {
			irrs = append(irrs, t.IRR)
		}
	}
	if e.onProgress != nil {
		e.onProgress(runs, runs)
	}

	sort.Float64s(irrs)
	sort.Float64s(proceeds)

	result := &domain.SimResult{
		Runs:         runs,
		HorizonYears: horizon,
		ExitMethod:   cfg.ExitMethod,
		IRRResolved:  len(irrs),
		IRRMean:      stats.Mean(irrs),
	}
	result.IRRP10, _ = stats.Quantile(irrs, 0.10)
	result.IRRP50, _ = stats.Quantile(irrs, 0.50)
	result.IRRP90, _ = stats.Quantile(irrs, 0.90)
	result.ProceedsP10, _ = stats.Quantile(proceeds, 0.10)
	result.ProceedsP50, _ = stats.Quantile(proceeds, 0.50)
	result.ProceedsP90, _ = stats.Quantile(proceeds, 0.90)

	return result, trials, nil
}

// trialInputs carries the trial-invariant figures into one trial.
type trialInputs struct {
	horizon     int
	invested    float64
	debtService float64
	outstanding float64
	sellFrac    float64
	exitCap     float64
	exitMethod  string
}

func (e *Engine) trial(p domain.DealParams, dist domain.DistributionSpec, in trialInputs) domain.TrialRecord {
	rentGrowth := e.sampler.Normal(dist.RentGrowth.MeanPct, dist.RentGrowth.StdPct) / 100
	expenseGrowth := e.sampler.Normal(dist.ExpenseGrowth.MeanPct, dist.ExpenseGrowth.StdPct) / 100
	appreciation := e.sampler.Normal(dist.Appreciation.MeanPct, dist.Appreciation.StdPct) / 100
	vacancy := domain.Clamp(e.sampler.Normal(dist.Vacancy.MeanPct, dist.Vacancy.StdPct)/100, 0, 0.5)

	flows := make([]float64, 0, in.horizon+1)
	flows = append(flows, -in.invested)

	lastNOI := 0.0
	for y := 1; y <= in.horizon; y++ {
		pf := finance.ProformaAnnual(yearSnapshot(p, rentGrowth, expenseGrowth, vacancy, y))
		lastNOI = pf.NOI
		flows = append(flows, pf.NOI-in.debtService)
	}

	var salePrice float64
	if in.exitMethod == domain.ExitMethodExitCap {
		salePrice = lastNOI / in.exitCap
	} else {
		salePrice = p.PurchasePrice * math.Pow(1+appreciation, float64(in.horizon))
	}

	netProceeds := salePrice*(1-in.sellFrac) - in.outstanding
	// Terminal proceeds augment the final operating year, they are
	// not a period of their own.
	flows[len(flows)-1] += netProceeds

	t := domain.TrialRecord{SaleProceeds: netProceeds}
	if r, ok := irr.Solve(flows); ok && !math.IsNaN(r) && !math.IsInf(r, 0) {
		t.IRR = r
		t.IRRResolved = true
	}
	return t
}

// yearSnapshot builds the synthetic parameter set for projection year
// y: income lines compound by (1+rentGrowth)^(y-1), fixed expense
// lines by (1+expenseGrowth)^(y-1), and the sampled vacancy rate
// replaces the baseline.
func yearSnapshot(p domain.DealParams, rentGrowth, expenseGrowth, vacancy float64, y int) domain.DealParams {
	incomeFactor := math.Pow(1+rentGrowth, float64(y-1))
	expenseFactor := math.Pow(1+expenseGrowth, float64(y-1))

	yp := p
	yp.MonthlyRent = p.MonthlyRent * incomeFactor
	yp.OtherIncome = scaleLineItems(p.OtherIncome, incomeFactor)
	yp.AnnualTaxes = p.AnnualTaxes * expenseFactor
	yp.AnnualInsurance = p.AnnualInsurance * expenseFactor
	yp.MonthlyHOA = p.MonthlyHOA * expenseFactor
	yp.MonthlyUtilities = p.MonthlyUtilities * expenseFactor
	yp.OtherExpenses = scaleLineItems(p.OtherExpenses, expenseFactor)
	yp.VacancyPct = vacancy * 100
	return yp
}

func scaleLineItems(items []domain.LineItem, factor float64) []domain.LineItem {
	if len(items) == 0 {
		return nil
	}
	scaled := make([]domain.LineItem, len(items))
	for i, it := range items {
		scaled[i] = domain.LineItem{Name: it.Name, Monthly: it.Monthly * factor}
	}
	return scaled
}
