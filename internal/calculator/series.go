package calculator

import (
	"errors"
	"math"
)

var errPeriod = errors.New("period must be positive")

// nanSeries returns n undefined values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// firstDefined returns the index of the first non-NaN value, or -1.
func firstDefined(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}
