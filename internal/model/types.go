package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one evolution run and its outcome.
type RunRecord struct {
	VersionedRecord
	ID               string    `json:"id"`
	Scape            string    `json:"scape"`
	PopulationSize   int       `json:"population_size"`
	Dimensions       int       `json:"dimensions"`
	Generations      int       `json:"generations"`
	MutationRate     float64   `json:"mutation_rate"`
	Seed             uint64    `json:"seed"`
	Workers          int       `json:"workers"`
	FitnessGoal      float64   `json:"fitness_goal,omitempty"`
	FinalBestFitness float64   `json:"final_best_fitness"`
	Converged        bool      `json:"converged"`
	CreatedAt        time.Time `json:"created_at"`
}

type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	BestFitness   float64 `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	MinFitness    float64 `json:"min_fitness"`
	StdDevFitness float64 `json:"std_dev_fitness"`
	BestIndex     int     `json:"best_index"`
}

type IndividualRecord struct {
	ID      string    `json:"id"`
	Genes   []float64 `json:"genes"`
	Fitness float64   `json:"fitness"`
}

// PopulationSnapshot is the final generation of a run.
type PopulationSnapshot struct {
	VersionedRecord
	RunID       string             `json:"run_id"`
	Generation  int                `json:"generation"`
	Individuals []IndividualRecord `json:"individuals"`
}
