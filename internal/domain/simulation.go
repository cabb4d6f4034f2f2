package domain

// Exit valuation method constants.
const (
	ExitMethodAppreciation = "appreciation"
	ExitMethodExitCap      = "exitcap"
)

// NormalSpec describes one normally distributed simulation variable.
// Mean and standard deviation are in percent units (5 = 5%).
type NormalSpec struct {
	MeanPct float64
	StdPct  float64
}

// DistributionSpec holds the per-variable distributions of a Monte Carlo run.
type DistributionSpec struct {
	RentGrowth    NormalSpec // yearly rent and other-income growth
	ExpenseGrowth NormalSpec // yearly fixed-expense growth
	Appreciation  NormalSpec // terminal price appreciation
	Vacancy       NormalSpec // vacancy rate; sample clamped to [0, 0.5]
}

// SimConfig configures a Monte Carlo run.
type SimConfig struct {
	Runs         int
	HorizonYears int
	Dist         DistributionSpec
	ExitMethod   string // ExitMethodAppreciation | ExitMethodExitCap
	Seed         int64  // sampler seed; 0 means non-deterministic
	BatchSize    int    // trials between progress/cancellation checks; 0 means 500
}

// TrialRecord is one Monte Carlo trial outcome.
type TrialRecord struct {
	RunID        string
	TrialIndex   int
	IRR          float64 // meaningless when IRRResolved is false
	IRRResolved  bool    // false when no root could be bracketed
	SaleProceeds float64 // terminal net sale proceeds
}

// SimResult aggregates a completed Monte Carlo run.
// Trials with unresolved IRR are excluded from the IRR statistics but
// still contribute to the proceeds statistics.
type SimResult struct {
	Runs         int
	HorizonYears int
	ExitMethod   string

	IRRResolved int // number of trials with a resolved IRR
	IRRMean     float64
	IRRP10      float64
	IRRP50      float64
	IRRP90      float64

	ProceedsP10 float64
	ProceedsP50 float64
	ProceedsP90 float64
}

// RunSummary is a persisted record of one simulation run.
type RunSummary struct {
	RunID     string
	DealID    string
	Seed      int64
	Result    SimResult
	CreatedAt int64 // unix ms, set by the store
}
