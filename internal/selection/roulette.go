package selection

import "gacore/internal/prob"

// Source supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// SelectParent samples an index from probabilities with chance proportional
// to its weight. It panics on an empty distribution.
func SelectParent(probabilities []prob.Probability, src Source) int {
	if len(probabilities) == 0 {
		panic("selection: cannot select from an empty distribution")
	}
	return Pick(probabilities, src.Float64())
}

// Pick walks the cumulative distribution and returns the first index whose
// running sum exceeds dart. When rounding leaves the total at or below dart,
// the last index is returned.
func Pick(probabilities []prob.Probability, dart float64) int {
	if len(probabilities) == 0 {
		panic("selection: cannot select from an empty distribution")
	}
	cum := 0.0
	for i, p := range probabilities {
		cum += p.Value()
		if dart < cum {
			return i
		}
	}
	return len(probabilities) - 1
}
