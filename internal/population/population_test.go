package population

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"gacore/internal/prob"
)

type testDNA []float64

func (d testDNA) Mutate(rate prob.Probability, rng *rand.Rand) {
	for i := range d {
		if rng.Float64() < rate.Value() {
			d[i] += rng.NormFloat64()
		}
	}
}

type testAgent struct {
	id        int
	genes     testDNA
	overrides int
}

func (a *testAgent) Crossover(other *testAgent, rng *rand.Rand) testDNA {
	child := make(testDNA, len(a.genes))
	for i := range child {
		if rng.Float64() < 0.5 {
			child[i] = a.genes[i]
		} else {
			child[i] = other.genes[i]
		}
	}
	return child
}

func (a *testAgent) OverrideDNA(dna testDNA) {
	a.genes = dna
	a.overrides++
}

// cloneAgent returns a parent's genome unchanged so offspring can be traced
// back to exactly one individual of the previous generation.
type cloneAgent struct {
	genes testDNA
}

func (a *cloneAgent) Crossover(_ *cloneAgent, _ *rand.Rand) testDNA {
	return slices.Clone(a.genes)
}

func (a *cloneAgent) OverrideDNA(dna testDNA) {
	a.genes = dna
}

func newTestAgents(n int) []*testAgent {
	agents := make([]*testAgent, n)
	for i := range agents {
		agents[i] = &testAgent{id: i, genes: testDNA{float64(i), float64(i) + 0.5}}
	}
	return agents
}

func uniformScores(n int) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1
	}
	return scores
}

func TestNewPopulationStartsAtGenerationZero(t *testing.T) {
	pop := New[*testAgent, testDNA](newTestAgents(3))
	if pop.Generations() != 0 {
		t.Fatalf("expected generation 0, got %d", pop.Generations())
	}
	if pop.Len() != 3 {
		t.Fatalf("expected 3 individuals, got %d", pop.Len())
	}
}

func TestReproducePreservesSizeAndAdvancesGeneration(t *testing.T) {
	agents := newTestAgents(6)
	pop := New[*testAgent, testDNA](agents)
	rng := rand.New(rand.NewPCG(1, 2))

	for gen := 1; gen <= 5; gen++ {
		pop.Reproduce([]float64{1, 2, 3, 4, 5, 6}, prob.Must(0.1), rng)
		if pop.Len() != 6 {
			t.Fatalf("generation %d: expected 6 individuals, got %d", gen, pop.Len())
		}
		if pop.Generations() != gen {
			t.Fatalf("expected generation %d, got %d", gen, pop.Generations())
		}
	}
}

func TestReproduceKeepsAgentIdentity(t *testing.T) {
	agents := newTestAgents(4)
	pop := New[*testAgent, testDNA](agents)
	pop.Reproduce(uniformScores(4), prob.Must(0.5), rand.New(rand.NewPCG(3, 3)))

	for i, agent := range pop.MutableIndividuals() {
		if agent != agents[i] {
			t.Fatalf("slot %d: expected the same agent pointer", i)
		}
		if agent.id != i {
			t.Fatalf("slot %d: expected id %d, got %d", i, i, agent.id)
		}
		if agent.overrides != 1 {
			t.Fatalf("slot %d: expected one override, got %d", i, agent.overrides)
		}
	}
}

func TestReproducePanicsOnScoreCountMismatch(t *testing.T) {
	for _, count := range []int{0, 1, 3, 5, 10} {
		t.Run(fmt.Sprintf("scores=%d", count), func(t *testing.T) {
			pop := New[*testAgent, testDNA](newTestAgents(4))
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
				if pop.Generations() != 0 {
					t.Fatalf("expected generation to stay 0, got %d", pop.Generations())
				}
			}()
			pop.Reproduce(uniformScores(count), prob.Probability{}, rand.New(rand.NewPCG(1, 1)))
		})
	}
}

func TestReproducePanicsOnDegenerateScores(t *testing.T) {
	for name, scores := range map[string][]float64{
		"zero sum": {0, 0, 0},
		"negative": {1, -2, 3},
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			pop := New[*testAgent, testDNA](newTestAgents(3))
			pop.Reproduce(scores, prob.Probability{}, rand.New(rand.NewPCG(1, 1)))
		})
	}
}

func TestReproduceWithZeroRateCopiesParentGenomes(t *testing.T) {
	agents := []*cloneAgent{
		{genes: testDNA{0.1}},
		{genes: testDNA{0.2}},
		{genes: testDNA{0.3}},
		{genes: testDNA{0.4}},
	}
	parents := make(map[float64]bool, len(agents))
	for _, a := range agents {
		parents[a.genes[0]] = true
	}

	pop := New[*cloneAgent, testDNA](agents)
	pop.Reproduce([]float64{1, 1, 1, 1}, prob.Probability{}, rand.New(rand.NewPCG(9, 9)))

	if pop.Len() != 4 {
		t.Fatalf("expected 4 individuals, got %d", pop.Len())
	}
	if pop.Generations() != 1 {
		t.Fatalf("expected generation 1, got %d", pop.Generations())
	}
	for i, a := range pop.Individuals() {
		if len(a.genes) != 1 || !parents[a.genes[0]] {
			t.Fatalf("slot %d: genome %v is not an unmutated parent genome", i, a.genes)
		}
	}
}

func TestReproduceReadsOnlyThePreviousGeneration(t *testing.T) {
	// Only the last agent has any weight, so every offspring must be its
	// genome from before the cycle, even for slots filled after it.
	agents := []*cloneAgent{
		{genes: testDNA{1}},
		{genes: testDNA{2}},
		{genes: testDNA{3}},
	}
	pop := New[*cloneAgent, testDNA](agents)
	pop.Reproduce([]float64{0, 0, 1}, prob.Probability{}, rand.New(rand.NewPCG(5, 6)))

	for i, a := range pop.Individuals() {
		if a.genes[0] != 3 {
			t.Fatalf("slot %d: expected genome from the previous generation, got %v", i, a.genes)
		}
	}

	dna := pop.Offspring()
	dna[0][0] = 42
	if agents[1].genes[0] != 3 {
		t.Fatal("expected distinct offspring genomes per slot")
	}
}

func TestReproduceAppliesOffspringInSlotOrder(t *testing.T) {
	agents := newTestAgents(5)
	pop := New[*testAgent, testDNA](agents)
	pop.Reproduce([]float64{5, 4, 3, 2, 1}, prob.Must(0.2), rand.New(rand.NewPCG(7, 7)))

	offspring := pop.Offspring()
	if len(offspring) != 5 {
		t.Fatalf("expected 5 offspring, got %d", len(offspring))
	}
	for i, agent := range agents {
		if !slices.Equal(agent.genes, offspring[i]) {
			t.Fatalf("slot %d: expected offspring %v, got %v", i, offspring[i], agent.genes)
		}
	}
}

func TestReproduceRefreshesWorkingBuffers(t *testing.T) {
	pop := New[*testAgent, testDNA](newTestAgents(4))
	rng := rand.New(rand.NewPCG(2, 2))

	pop.Reproduce([]float64{1, 1, 1, 1}, prob.Probability{}, rng)
	pop.Reproduce([]float64{1, 0, 0, 3}, prob.Probability{}, rng)

	probs := pop.Probabilities()
	if len(probs) != 4 {
		t.Fatalf("expected 4 probabilities, got %d", len(probs))
	}
	want := []float64{0.25, 0, 0, 0.75}
	for i := range want {
		if probs[i].Value() != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], probs[i].Value())
		}
	}
	if len(pop.Offspring()) != 4 {
		t.Fatalf("expected 4 offspring, got %d", len(pop.Offspring()))
	}
}

func TestReproduceIsIndependentOfWorkerCount(t *testing.T) {
	scores := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	run := func(workers int) [][]float64 {
		agents := newTestAgents(len(scores))
		pop := New[*testAgent, testDNA](agents, WithWorkers(workers))
		rng := rand.New(rand.NewPCG(99, 100))
		for i := 0; i < 3; i++ {
			pop.Reproduce(scores, prob.Must(0.3), rng)
		}
		out := make([][]float64, len(agents))
		for i, a := range agents {
			out[i] = slices.Clone(a.genes)
		}
		return out
	}

	serial := run(1)
	for _, workers := range []int{2, 4, 16} {
		parallel := run(workers)
		for i := range serial {
			if !slices.Equal(serial[i], parallel[i]) {
				t.Fatalf("workers=%d slot %d: expected %v, got %v", workers, i, serial[i], parallel[i])
			}
		}
	}
}

func TestReproduceEmptyPopulation(t *testing.T) {
	pop := New[*testAgent, testDNA](nil)
	pop.Reproduce(nil, prob.Must(0.5), rand.New(rand.NewPCG(1, 1)))
	if pop.Generations() != 1 || pop.Len() != 0 {
		t.Fatalf("unexpected state: generations=%d len=%d", pop.Generations(), pop.Len())
	}
}
