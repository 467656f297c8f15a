package prob

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyScores       = errors.New("scores are empty")
	ErrDegenerateScores  = errors.New("scores must sum to a positive value")
	ErrNegativeScore     = errors.New("score must be a non-negative number")
	ErrNonFiniteScoreSum = errors.New("scores must sum to a finite value")
)

// Probabilities lazily maps each score to score/sum(scores). The sequence can
// be ranged over any number of times and reads scores on every pass.
//
// It panics while yielding if a ratio falls outside [0, 1], which happens when
// a score is negative or the scores do not sum to a positive finite value.
func Probabilities(scores []float64) iter.Seq[Probability] {
	return func(yield func(Probability) bool) {
		if len(scores) == 0 {
			return
		}
		sum := floats.Sum(scores)
		for _, score := range scores {
			if !yield(Must(score / sum)) {
				return
			}
		}
	}
}

// Normalize is the eager, error-returning form of Probabilities.
func Normalize(scores []float64) ([]Probability, error) {
	if err := Validate(scores); err != nil {
		return nil, err
	}
	sum := floats.Sum(scores)
	out := make([]Probability, 0, len(scores))
	for i, score := range scores {
		p, err := New(score / sum)
		if err != nil {
			return nil, fmt.Errorf("score %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Validate reports whether scores can be normalized into a distribution:
// non-empty, every score non-negative, and a positive finite sum.
func Validate(scores []float64) error {
	if len(scores) == 0 {
		return ErrEmptyScores
	}
	for i, score := range scores {
		if score < 0 || math.IsNaN(score) {
			return fmt.Errorf("score %d (%v): %w", i, score, ErrNegativeScore)
		}
	}
	sum := floats.Sum(scores)
	if sum <= 0 {
		return fmt.Errorf("%w: got %v", ErrDegenerateScores, sum)
	}
	if math.IsInf(sum, 0) {
		return fmt.Errorf("%w: got %v", ErrNonFiniteScoreSum, sum)
	}
	return nil
}
