package theory

import (
	"math/rand/v2"
	"time"
)

// Rand is the randomness source consumed by the generators.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG-backed source. A zero seed derives one from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WeightedChoice draws an index with probability proportional to its weight.
// Negative weights count as zero. It returns -1 and ErrNoSelection when the
// slice is empty or no weight is positive.
func WeightedChoice(r Rand, weights []float64) (int, error) {
	sum := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			sum += w
			last = i
		}
	}
	if last < 0 {
		return -1, ErrNoSelection
	}

	u := r.Float64() * sum
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if cumulative > u {
			return i, nil
		}
	}
	// rounding left u at the very top of the range
	return last, nil
}

// Chance reports whether a percentage roll (0-100) succeeds
func Chance(r Rand, percent float64) bool {
	return r.Float64()*100 < percent
}
