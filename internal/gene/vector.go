package gene

import (
	"fmt"
	"math/rand/v2"

	"gacore/internal/prob"
)

// Vector is a genome of independent scalar genes.
type Vector []float64

// RandomVector draws n genes uniformly from [MinValue, MaxValue).
func RandomVector(n int, rng *rand.Rand) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = MinValue + rng.Float64()*(MaxValue-MinValue)
	}
	return v
}

// CrossoverVectors builds a new vector choosing every gene from a or b
// independently. Both parents must have the same length.
func CrossoverVectors(a, b Vector, rng *rand.Rand) Vector {
	if len(a) != len(b) {
		panic(fmt.Sprintf("gene: parent length mismatch: %d != %d", len(a), len(b)))
	}
	child := make(Vector, len(a))
	for i := range child {
		child[i] = Crossover(a[i], b[i], rng)
	}
	return child
}

// Mutate perturbs every gene in place with probability rate.
func (v Vector) Mutate(rate prob.Probability, rng *rand.Rand) {
	for i := range v {
		v[i] = Mutate(v[i], rate, rng)
	}
}

func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
