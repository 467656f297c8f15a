package scape

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gacore/internal/gene"
)

// Scape scores an agent. Scores must be non-negative; roulette selection
// needs their sum to be positive.
type Scape[A any] interface {
	Name() string
	Evaluate(ctx context.Context, agent A) (float64, error)
}

// Carrier exposes the genome a vector scape evaluates.
type Carrier interface {
	Genes() gene.Vector
}

// TargetScape rewards closeness to Target: 1 / (1 + euclidean distance).
type TargetScape[A Carrier] struct {
	Target gene.Vector
}

func (TargetScape[A]) Name() string {
	return "target"
}

func (s TargetScape[A]) Evaluate(ctx context.Context, agent A) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	genes := agent.Genes()
	if len(genes) != len(s.Target) {
		return 0, fmt.Errorf("target scape requires %d genes, got %d", len(s.Target), len(genes))
	}
	var squared float64
	for i, g := range genes {
		d := g - s.Target[i]
		squared += d * d
	}
	return 1 / (1 + math.Sqrt(squared)), nil
}

// SumScape rewards genes close to gene.MaxValue: the mean of (g+1)/2.
type SumScape[A Carrier] struct{}

func (SumScape[A]) Name() string {
	return "sum"
}

func (SumScape[A]) Evaluate(ctx context.Context, agent A) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	genes := agent.Genes()
	if len(genes) == 0 {
		return 0, fmt.Errorf("sum scape requires at least one gene")
	}
	var total float64
	for _, g := range genes {
		total += (g - gene.MinValue) / (gene.MaxValue - gene.MinValue)
	}
	return total / float64(len(genes)), nil
}

// Names lists the vector scapes available through Lookup.
func Names() []string {
	return []string{"sum", "target"}
}

// Lookup builds a vector scape by name. The target scape aims at a fixed
// vector alternating between 0.5 and -0.5.
func Lookup[A Carrier](name string, dims int) (Scape[A], error) {
	if dims <= 0 {
		return nil, fmt.Errorf("dimensions must be > 0")
	}
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "", "target":
		target := make(gene.Vector, dims)
		for i := range target {
			target[i] = 0.5
			if i%2 == 1 {
				target[i] = -0.5
			}
		}
		return TargetScape[A]{Target: target}, nil
	case "sum":
		return SumScape[A]{}, nil
	default:
		return nil, fmt.Errorf("unknown scape: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
}
