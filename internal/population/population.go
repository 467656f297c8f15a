// Package population holds a fixed-size generation of agents and replaces
// their genetic material through fitness-proportionate reproduction.
package population

import (
	"fmt"
	"math/rand/v2"

	"github.com/sourcegraph/conc/pool"

	"gacore/internal/prob"
	"gacore/internal/selection"
)

// Dna is the mutable genetic payload of an agent.
type Dna interface {
	Mutate(rate prob.Probability, rng *rand.Rand)
}

// Agent combines its genetic material with another agent of the same type and
// accepts replacement material in place. Crossover must not modify either
// parent.
type Agent[A any, D Dna] interface {
	Crossover(other A, rng *rand.Rand) D
	OverrideDNA(dna D)
}

type Option func(*options)

type options struct {
	workers int
}

// WithWorkers builds offspring on up to n goroutines. Values below 2 keep
// reproduction on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

type Population[A Agent[A, D], D Dna] struct {
	individuals []A
	generations int

	probabilities []prob.Probability
	dna           []D

	workers int
}

func New[A Agent[A, D], D Dna](individuals []A, opts ...Option) *Population[A, D] {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return &Population[A, D]{
		individuals: individuals,
		workers:     o.workers,
	}
}

// Individuals returns a copy of the current generation.
func (p *Population[A, D]) Individuals() []A {
	out := make([]A, len(p.individuals))
	copy(out, p.individuals)
	return out
}

// MutableIndividuals returns the backing slice. Callers may mutate agents but
// must not change its length.
func (p *Population[A, D]) MutableIndividuals() []A {
	return p.individuals
}

func (p *Population[A, D]) Len() int {
	return len(p.individuals)
}

func (p *Population[A, D]) Generations() int {
	return p.generations
}

// Probabilities returns the selection distribution of the last reproduction.
func (p *Population[A, D]) Probabilities() []prob.Probability {
	out := make([]prob.Probability, len(p.probabilities))
	copy(out, p.probabilities)
	return out
}

// Offspring returns the genomes produced by the last reproduction, in the
// order they were applied to individuals.
func (p *Population[A, D]) Offspring() []D {
	out := make([]D, len(p.dna))
	copy(out, p.dna)
	return out
}

// Reproduce advances the population by one generation. Every slot receives
// the crossover of two roulette-selected parents, mutated with rate. All
// offspring are built from the current generation before any agent is
// overwritten.
//
// It panics when len(scores) differs from the population size or when scores
// cannot be normalized (negative entries, non-positive sum).
func (p *Population[A, D]) Reproduce(scores []float64, rate prob.Probability, rng *rand.Rand) {
	n := len(p.individuals)
	if len(scores) != n {
		panic(fmt.Sprintf("population: got %d scores for %d individuals", len(scores), n))
	}

	p.probabilities = p.probabilities[:0]
	for w := range prob.Probabilities(scores) {
		p.probabilities = append(p.probabilities, w)
	}

	// Slot sources are drawn up front so the outcome does not depend on
	// the worker count or scheduling.
	sources := make([]*rand.Rand, n)
	for i := range sources {
		sources[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	}

	clear(p.dna)
	if cap(p.dna) < n {
		p.dna = make([]D, n)
	} else {
		p.dna = p.dna[:n]
	}

	if p.workers > 1 && n > 1 {
		workers := pool.New().WithMaxGoroutines(min(p.workers, n))
		for i := 0; i < n; i++ {
			workers.Go(func() {
				p.dna[i] = p.breed(sources[i], rate)
			})
		}
		workers.Wait()
	} else {
		for i := 0; i < n; i++ {
			p.dna[i] = p.breed(sources[i], rate)
		}
	}

	for i, dna := range p.dna {
		p.individuals[i].OverrideDNA(dna)
	}
	p.generations++
}

func (p *Population[A, D]) breed(rng *rand.Rand, rate prob.Probability) D {
	a := p.individuals[selection.SelectParent(p.probabilities, rng)]
	b := p.individuals[selection.SelectParent(p.probabilities, rng)]
	dna := a.Crossover(b, rng)
	dna.Mutate(rate, rng)
	return dna
}
