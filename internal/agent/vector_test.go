package agent

import (
	"math/rand/v2"
	"testing"

	"gacore/internal/gene"
	"gacore/internal/population"
	"gacore/internal/prob"
)

func TestNewVectorAgentValidation(t *testing.T) {
	if _, err := NewVectorAgent("", gene.Vector{0}); err == nil {
		t.Fatal("expected missing id error")
	}
	if _, err := NewVectorAgent("a", nil); err == nil {
		t.Fatal("expected empty genome error")
	}
}

func TestRandomVectorAgents(t *testing.T) {
	agents, err := RandomVectorAgents(5, 3, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("random agents: %v", err)
	}
	if len(agents) != 5 {
		t.Fatalf("expected 5 agents, got %d", len(agents))
	}
	seen := map[string]bool{}
	for _, a := range agents {
		if len(a.Genes()) != 3 {
			t.Fatalf("agent %s: expected 3 genes, got %d", a.ID(), len(a.Genes()))
		}
		if seen[a.ID()] {
			t.Fatalf("duplicate agent id %s", a.ID())
		}
		seen[a.ID()] = true
	}

	if _, err := RandomVectorAgents(0, 3, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Fatal("expected count error")
	}
	if _, err := RandomVectorAgents(2, 0, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Fatal("expected dimensions error")
	}
}

func TestGenesReturnsCopy(t *testing.T) {
	a, err := NewVectorAgent("a", gene.Vector{0.5})
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	genes := a.Genes()
	genes[0] = -1
	if a.Genes()[0] != 0.5 {
		t.Fatal("expected agent genome to be unaffected by caller edits")
	}
}

func TestVectorAgentInPopulation(t *testing.T) {
	agents, err := RandomVectorAgents(4, 2, rand.New(rand.NewPCG(2, 2)))
	if err != nil {
		t.Fatalf("random agents: %v", err)
	}
	before := make(map[float64]bool)
	for _, a := range agents {
		for _, g := range a.Genes() {
			before[g] = true
		}
	}

	pop := population.New[*VectorAgent, gene.Vector](agents)
	pop.Reproduce([]float64{1, 1, 1, 1}, prob.Probability{}, rand.New(rand.NewPCG(3, 3)))

	for _, a := range pop.Individuals() {
		for _, g := range a.Genes() {
			if !before[g] {
				t.Fatalf("agent %s: gene %v did not come from the previous generation", a.ID(), g)
			}
		}
	}
	if pop.Generations() != 1 {
		t.Fatalf("expected generation 1, got %d", pop.Generations())
	}
}
