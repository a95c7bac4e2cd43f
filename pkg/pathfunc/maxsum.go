package pathfunc

import (
	"fmt"
	"math"
)

// DistanceUnit scales adjacency distances into cost units, so that with
// beta = 0 the costs are chamfer distances (10 per orthogonal step, 14 per
// diagonal step in 2D).
const DistanceUnit = 10

// MaxSumParams are the tunable parameters of MaxSum
type MaxSumParams struct {
	// Alpha biases paths by orientation: > 0 favors crossing from dark to
	// light, < 0 from light to dark
	Alpha float64 `validate:"gte=-1,lte=1"`

	// Beta weights the handicap against the geometric length of an arc
	Beta float64 `validate:"gte=0,lte=10"`
}

// MaxSum accumulates orientation-weighted handicaps along a path.
//
// The arc from p to q costs
//
//	arc = round(beta*(h[p]+h[q])/2*(1+of) + DistanceUnit*dist) + 1
//
// and the path through p offers q the cost value[p] + arc - 1. The +1/-1 pair
// keeps every arc strictly positive so no zero-cost loops exist.
//
// beta weights the handicap against the arc length: beta = 0 gives pure
// chamfer distances, larger values let the handicap dominate. Costs always
// add up along the path; there is no max term.
type MaxSum struct {
	intensity []float64
	handicap  []float64
	alpha     float64
	beta      float64
	maxH      float64
}

// NewMaxSum validates the parameters and builds the policy. intensity is the
// source image used for orientation, handicap the per-pixel base cost.
func NewMaxSum(intensity, handicap []float64, alpha, beta float64) (*MaxSum, error) {
	params := MaxSumParams{Alpha: alpha, Beta: beta}
	if err := validate.Struct(params); err != nil {
		return nil, validationError(err)
	}
	if len(intensity) != len(handicap) {
		return nil, fmt.Errorf("%w: intensity has %d pixels, handicap %d", ErrInvalidParameter, len(intensity), len(handicap))
	}
	for i, h := range handicap {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("%w: handicap[%d] = %v", ErrInvalidParameter, i, h)
		}
	}
	return &MaxSum{
		intensity: intensity,
		handicap:  handicap,
		alpha:     alpha,
		beta:      beta,
		maxH:      maxOf(handicap),
	}, nil
}

// Alpha returns the orientation bias
func (m *MaxSum) Alpha() float64 { return m.alpha }

// Beta returns the handicap weight
func (m *MaxSum) Beta() float64 { return m.beta }

// InitialCost queues seeds with their raw handicap
func (m *MaxSum) InitialCost(p int) float64 { return saturate(m.handicap[p]) }

// RemoveRoot gives a root its raw handicap rather than zero
func (m *MaxSum) RemoveRoot(p int, value []float64) {
	value[p] = saturate(m.handicap[p])
}

// Capable prunes relaxations that cannot improve q: costs never decrease
// along a path.
func (m *MaxSum) Capable(p, q int, value []float64) bool {
	return value[p] < value[q]
}

// Propagate commits value[q] when the path through p is strictly cheaper
func (m *MaxSum) Propagate(p, q int, dist float64, value []float64) bool {
	candidate := saturate(value[p] + m.arcWeight(p, q, dist) - 1)
	if candidate < value[q] {
		value[q] = candidate
		return true
	}
	return false
}

// Increasing is always true
func (m *MaxSum) Increasing() bool { return true }

// CostRange bounds the queued spread by the largest seed cost plus the
// largest arc.
func (m *MaxSum) CostRange(maxDistance float64) float64 {
	arc := math.Round(m.beta*m.maxH*(1+math.Abs(m.alpha))+DistanceUnit*maxDistance) + 1
	return saturate(m.maxH + arc)
}

func (m *MaxSum) arcWeight(p, q int, dist float64) float64 {
	mean := (m.handicap[p] + m.handicap[q]) / 2
	return math.Round(m.beta*mean*(1+m.orientation(p, q))+DistanceUnit*dist) + 1
}

// orientation returns -|alpha| for the favored crossing direction, +|alpha|
// for the opposite one and 0 across equal intensities
func (m *MaxSum) orientation(p, q int) float64 {
	if m.alpha == 0 {
		return 0
	}
	a := math.Abs(m.alpha)
	ip, iq := m.intensity[p], m.intensity[q]
	switch {
	case ip == iq:
		return 0
	case (ip < iq) == (m.alpha > 0):
		return -a
	default:
		return a
	}
}
