package agent

import (
	"fmt"
	"math/rand/v2"

	"gacore/internal/gene"
)

// VectorAgent carries a gene.Vector genome. The population replaces the
// genome every generation while the agent keeps its ID.
type VectorAgent struct {
	id    string
	genes gene.Vector
}

func NewVectorAgent(id string, genes gene.Vector) (*VectorAgent, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if len(genes) == 0 {
		return nil, fmt.Errorf("agent %s requires at least one gene", id)
	}
	return &VectorAgent{id: id, genes: genes}, nil
}

// RandomVectorAgents seeds count agents with dims uniformly drawn genes.
func RandomVectorAgents(count, dims int, rng *rand.Rand) ([]*VectorAgent, error) {
	if count <= 0 {
		return nil, fmt.Errorf("agent count must be > 0")
	}
	if dims <= 0 {
		return nil, fmt.Errorf("dimensions must be > 0")
	}
	agents := make([]*VectorAgent, 0, count)
	for i := 0; i < count; i++ {
		a, err := NewVectorAgent(fmt.Sprintf("agent-%d", i), gene.RandomVector(dims, rng))
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}

func (a *VectorAgent) ID() string {
	return a.id
}

// Genes returns a copy of the current genome.
func (a *VectorAgent) Genes() gene.Vector {
	return a.genes.Clone()
}

func (a *VectorAgent) Crossover(other *VectorAgent, rng *rand.Rand) gene.Vector {
	return gene.CrossoverVectors(a.genes, other.genes, rng)
}

func (a *VectorAgent) OverrideDNA(dna gene.Vector) {
	a.genes = dna
}
