package ift

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the costs of reached pixels
type Stats struct {
	// Reached is the number of finalized pixels
	Reached int

	// Roots is the number of finalized roots
	Roots int

	Min, Max     float64
	Mean, StdDev float64
}

// Stats computes cost statistics over the reached pixels. With no reached
// pixel every field is zero; with one the standard deviation is zero.
func (r *Result) Stats() Stats {
	costs := make([]float64, 0, len(r.Order))
	var s Stats
	for _, p := range r.Order {
		costs = append(costs, r.Cost[p])
		if r.Predecessor[p] == p {
			s.Roots++
		}
	}
	s.Reached = len(costs)
	if s.Reached == 0 {
		return s
	}

	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	for _, c := range costs {
		s.Min = math.Min(s.Min, c)
		s.Max = math.Max(s.Max, c)
	}
	if s.Reached == 1 {
		s.Mean = costs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(costs, nil)
	return s
}

// Matrix returns the cost map of a 2D result as a rows x cols matrix
// (rows along y). Unreached pixels keep MaxCost.
func (r *Result) Matrix() (*mat.Dense, error) {
	if r.Shape.NDims() != 2 {
		return nil, fmt.Errorf("%w: cost matrix needs a 2D result, got %d-D", ErrInvalidInput, r.Shape.NDims())
	}
	cols, rows := r.Shape.Dims[0], r.Shape.Dims[1]
	data := make([]float64, len(r.Cost))
	copy(data, r.Cost)
	return mat.NewDense(rows, cols, data), nil
}
