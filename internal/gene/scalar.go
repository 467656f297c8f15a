// Package gene provides crossover and mutation for real-valued genes kept on
// the normalized scale [-1, 1].
package gene

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gacore/internal/prob"
)

const (
	MinValue = -1.0
	MaxValue = 1.0
)

// Crossover returns a or b with equal chance.
func Crossover(a, b float64, rng *rand.Rand) float64 {
	if rng.Float64() < 0.5 {
		return a
	}
	return b
}

// Mutate perturbs value with probability rate by a draw from the standard
// normal distribution and clamps the result to [MinValue, MaxValue]. A value
// that is not perturbed is returned as is.
func Mutate(value float64, rate prob.Probability, rng *rand.Rand) float64 {
	if rng.Float64() >= rate.Value() {
		return value
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	return clamp(value + normal.Rand())
}

func clamp(v float64) float64 {
	return max(MinValue, min(MaxValue, v))
}
