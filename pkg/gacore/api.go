package gacore

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"gacore/internal/agent"
	"gacore/internal/evo"
	"gacore/internal/gene"
	"gacore/internal/model"
	"gacore/internal/population"
	"gacore/internal/prob"
	"gacore/internal/scape"
	"gacore/internal/storage"
)

const defaultDBPath = "gacore.db"

type Options struct {
	StoreKind string
	DBPath    string
}

// Client runs vector-genome evolutions and reads their persisted results.
type Client struct {
	store       storage.Store
	initialized bool
}

type RunRequest struct {
	RunID        string
	Scape        string
	Population   int
	Dimensions   int
	Generations  int
	MutationRate float64
	Seed         uint64
	Workers      int
	FitnessGoal  float64
	Progress     func(model.GenerationDiagnostics)
}

type RunSummary struct {
	RunID            string
	BestByGeneration []float64
	FinalBestFitness float64
	Reproductions    int
	Converged        bool
}

type RunsRequest struct {
	Limit int
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type PopulationRequest struct {
	RunID  string
	Latest bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Scape == "" {
		req.Scape = "target"
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Dimensions <= 0 {
		req.Dimensions = 4
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	rate, err := prob.New(req.MutationRate)
	if err != nil {
		return RunSummary{}, fmt.Errorf("mutation rate: %w", err)
	}

	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}
	if _, exists, err := c.store.GetRun(ctx, req.RunID); err != nil {
		return RunSummary{}, err
	} else if exists {
		return RunSummary{}, fmt.Errorf("run id already exists: %s", req.RunID)
	}

	fitness, err := scape.Lookup[*agent.VectorAgent](req.Scape, req.Dimensions)
	if err != nil {
		return RunSummary{}, err
	}
	agents, err := agent.RandomVectorAgents(req.Population, req.Dimensions, rand.New(rand.NewPCG(req.Seed, req.Seed+1)))
	if err != nil {
		return RunSummary{}, err
	}
	pop := population.New[*agent.VectorAgent, gene.Vector](agents, population.WithWorkers(req.Workers))

	monitor, err := evo.NewMonitor[*agent.VectorAgent, gene.Vector](evo.MonitorConfig[*agent.VectorAgent]{
		Scape:        fitness,
		Generations:  req.Generations,
		MutationRate: rate,
		Workers:      req.Workers,
		Seed:         req.Seed,
		FitnessGoal:  req.FitnessGoal,
		Observer:     req.Progress,
	})
	if err != nil {
		return RunSummary{}, err
	}
	result, err := monitor.Run(ctx, pop)
	if err != nil {
		return RunSummary{}, err
	}

	finalBest := result.BestByGeneration[len(result.BestByGeneration)-1]
	run := model.RunRecord{
		VersionedRecord:  storage.CurrentVersion(),
		ID:               req.RunID,
		Scape:            fitness.Name(),
		PopulationSize:   req.Population,
		Dimensions:       req.Dimensions,
		Generations:      result.Reproductions,
		MutationRate:     req.MutationRate,
		Seed:             req.Seed,
		Workers:          req.Workers,
		FitnessGoal:      req.FitnessGoal,
		FinalBestFitness: finalBest,
		Converged:        result.Converged,
		CreatedAt:        time.Now().UTC(),
	}
	if err := c.persist(ctx, run, result, pop); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            req.RunID,
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		FinalBestFitness: finalBest,
		Reproductions:    result.Reproductions,
		Converged:        result.Converged,
	}, nil
}

func (c *Client) persist(ctx context.Context, run model.RunRecord, result evo.RunResult, pop *population.Population[*agent.VectorAgent, gene.Vector]) error {
	snapshot := model.PopulationSnapshot{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           run.ID,
		Generation:      pop.Generations(),
		Individuals:     make([]model.IndividualRecord, 0, pop.Len()),
	}
	for i, individual := range pop.Individuals() {
		snapshot.Individuals = append(snapshot.Individuals, model.IndividualRecord{
			ID:      individual.ID(),
			Genes:   individual.Genes(),
			Fitness: result.FinalScores[i],
		})
	}

	if err := c.store.SaveFitnessHistory(ctx, run.ID, result.BestByGeneration); err != nil {
		return fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, run.ID, result.GenerationDiagnostics); err != nil {
		return fmt.Errorf("save generation diagnostics: %w", err)
	}
	if err := c.store.SavePopulation(ctx, snapshot); err != nil {
		return fmt.Errorf("save population: %w", err)
	}
	// The run record goes last so listed runs always have their artifacts.
	if err := c.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// Runs lists persisted runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("generation diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) Population(ctx context.Context, req PopulationRequest) (model.PopulationSnapshot, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return model.PopulationSnapshot{}, err
	}
	snapshot, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil {
		return model.PopulationSnapshot{}, err
	}
	if !ok {
		return model.PopulationSnapshot{}, fmt.Errorf("population not found for run id: %s", runID)
	}
	return snapshot, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return "", errors.New("run id or latest is required")
	}
	if err := c.ensureInit(ctx); err != nil {
		return "", err
	}
	if runID != "" {
		return runID, nil
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[0].ID, nil
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
