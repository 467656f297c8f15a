package evo

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gacore/internal/model"
	"gacore/internal/population"
	"gacore/internal/prob"
	"gacore/internal/scape"
)

type RunResult struct {
	BestByGeneration      []float64
	GenerationDiagnostics []model.GenerationDiagnostics
	// FinalScores holds the fitness of every individual of the last
	// evaluated generation, in population order.
	FinalScores []float64
	// Reproductions counts completed reproduction cycles.
	Reproductions int
	Converged     bool
}

type MonitorConfig[A any] struct {
	Scape        scape.Scape[A]
	Generations  int
	MutationRate prob.Probability
	Workers      int
	Seed         uint64
	// FitnessGoal stops the run once the best fitness reaches it. Zero
	// disables the goal.
	FitnessGoal float64
	Observer    func(model.GenerationDiagnostics)
}

// Monitor evaluates a population, records per-generation diagnostics and
// reproduces it until the generation limit or fitness goal is reached.
type Monitor[A population.Agent[A, D], D population.Dna] struct {
	cfg MonitorConfig[A]
	rng *rand.Rand
}

func NewMonitor[A population.Agent[A, D], D population.Dna](cfg MonitorConfig[A]) (*Monitor[A, D], error) {
	if cfg.Scape == nil {
		return nil, fmt.Errorf("scape is required")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.FitnessGoal < 0 {
		return nil, fmt.Errorf("fitness goal must be >= 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Monitor[A, D]{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

func (m *Monitor[A, D]) Run(ctx context.Context, pop *population.Population[A, D]) (RunResult, error) {
	if pop.Len() == 0 {
		return RunResult{}, fmt.Errorf("population is empty")
	}

	result := RunResult{
		BestByGeneration:      make([]float64, 0, m.cfg.Generations+1),
		GenerationDiagnostics: make([]model.GenerationDiagnostics, 0, m.cfg.Generations+1),
	}
	for gen := 0; ; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		scores, err := m.evaluate(ctx, pop.MutableIndividuals())
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %w", gen, err)
		}

		diag := summarizeGeneration(scores, gen)
		result.BestByGeneration = append(result.BestByGeneration, diag.BestFitness)
		result.GenerationDiagnostics = append(result.GenerationDiagnostics, diag)
		result.FinalScores = scores
		if m.cfg.Observer != nil {
			m.cfg.Observer(diag)
		}

		if m.cfg.FitnessGoal > 0 && diag.BestFitness >= m.cfg.FitnessGoal {
			result.Converged = true
			break
		}
		if gen == m.cfg.Generations {
			break
		}

		if err := prob.Validate(scores); err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %s produced unusable scores: %w", gen, m.cfg.Scape.Name(), err)
		}
		pop.Reproduce(scores, m.cfg.MutationRate, m.rng)
	}
	result.Reproductions = pop.Generations()
	return result, nil
}

func (m *Monitor[A, D]) evaluate(ctx context.Context, individuals []A) ([]float64, error) {
	scores := make([]float64, len(individuals))
	workers := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(min(m.cfg.Workers, len(individuals)))
	for i, individual := range individuals {
		workers.Go(func(ctx context.Context) error {
			fitness, err := m.cfg.Scape.Evaluate(ctx, individual)
			if err != nil {
				return fmt.Errorf("evaluate individual %d: %w", i, err)
			}
			scores[i] = fitness
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func summarizeGeneration(scores []float64, generation int) model.GenerationDiagnostics {
	if len(scores) == 0 {
		return model.GenerationDiagnostics{Generation: generation}
	}
	mean, std := stat.PopMeanStdDev(scores, nil)
	best := floats.MaxIdx(scores)
	return model.GenerationDiagnostics{
		Generation:    generation,
		BestFitness:   scores[best],
		MeanFitness:   mean,
		MinFitness:    floats.Min(scores),
		StdDevFitness: std,
		BestIndex:     best,
	}
}
