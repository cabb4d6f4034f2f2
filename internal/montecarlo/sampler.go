package montecarlo

import (
	"math"
	"math/rand"
	"time"
)

// Sampler draws normally distributed values for the simulation
// variables. Implementations must be deterministic for a fixed seed so
// runs are reproducible in tests.
type Sampler interface {
	// Normal returns one draw from N(mean, std*std).
	Normal(mean, std float64) float64
}

// GaussianSampler produces normal deviates via the Box-Muller
// transform over a seeded PRNG.
type GaussianSampler struct {
	rng *rand.Rand
}

// NewGaussianSampler creates a sampler. A zero seed falls back to the
// current time, giving a different stream per run.
func NewGaussianSampler(seed int64) *GaussianSampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &GaussianSampler{rng: rand.New(rand.NewSource(seed))}
}

// Normal combines two uniform draws into one standard-normal deviate
// and scales it. u1 is redrawn at exactly 0 to keep the log finite.
func (s *GaussianSampler) Normal(mean, std float64) float64 {
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + std*z
}
