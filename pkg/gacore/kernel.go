// Package gacore is a fitness-proportionate genetic algorithm kernel.
//
// Callers supply agents that implement Agent and genomes that implement Dna,
// then call Population.Reproduce once per generation with one non-negative
// score per agent. Scalar gene helpers cover genomes whose genes live on
// [-1, 1].
package gacore

import (
	"iter"
	"math/rand/v2"

	"gacore/internal/gene"
	"gacore/internal/population"
	"gacore/internal/prob"
	"gacore/internal/selection"
)

type (
	Probability = prob.Probability
	Dna         = population.Dna
	Option      = population.Option
	Vector      = gene.Vector
)

type Agent[A any, D Dna] = population.Agent[A, D]

type Population[A Agent[A, D], D Dna] = population.Population[A, D]

var (
	ErrOutOfRange       = prob.ErrOutOfRange
	ErrEmptyScores      = prob.ErrEmptyScores
	ErrDegenerateScores = prob.ErrDegenerateScores
)

func NewPopulation[A Agent[A, D], D Dna](individuals []A, opts ...Option) *Population[A, D] {
	return population.New[A, D](individuals, opts...)
}

func WithWorkers(n int) Option {
	return population.WithWorkers(n)
}

func NewProbability(v float64) (Probability, error) {
	return prob.New(v)
}

func MustProbability(v float64) Probability {
	return prob.Must(v)
}

func Probabilities(scores []float64) iter.Seq[Probability] {
	return prob.Probabilities(scores)
}

func SelectParent(probabilities []Probability, rng *rand.Rand) int {
	return selection.SelectParent(probabilities, rng)
}

func Crossover(a, b float64, rng *rand.Rand) float64 {
	return gene.Crossover(a, b, rng)
}

func Mutate(value float64, rate Probability, rng *rand.Rand) float64 {
	return gene.Mutate(value, rate, rng)
}

func RandomVector(n int, rng *rand.Rand) Vector {
	return gene.RandomVector(n, rng)
}

func CrossoverVectors(a, b Vector, rng *rand.Rand) Vector {
	return gene.CrossoverVectors(a, b, rng)
}
