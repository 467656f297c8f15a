package prob

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("probability out of range [0, 1]")

// Probability is a real number constrained to the closed interval [0, 1].
// The zero value is a valid probability of 0.
type Probability struct {
	v float64
}

// New returns v as a Probability, failing for negative values, values above
// one, NaN and infinities.
func New(v float64) (Probability, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return Probability{}, fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return Probability{v: v}, nil
}

// Must is New that panics on an out-of-range value.
func Must(v float64) Probability {
	p, err := New(v)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Probability) Value() float64 {
	return p.v
}

func (p Probability) String() string {
	return fmt.Sprintf("%g", p.v)
}
