package pathfunc

import (
	"fmt"
	"math"
)

// LocalMax floods the largest handicap met so far along a path, without
// accumulating: the path through p offers q max(value[p], handicap[q]).
// It drives river-bed style boundary following.
type LocalMax struct {
	handicap []float64
	maxH     float64
}

// NewLocalMax builds the policy over a non-negative handicap image
func NewLocalMax(handicap []float64) (*LocalMax, error) {
	for i, h := range handicap {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("%w: handicap[%d] = %v", ErrInvalidParameter, i, h)
		}
	}
	return &LocalMax{handicap: handicap, maxH: maxOf(handicap)}, nil
}

// InitialCost queues seeds with their handicap
func (l *LocalMax) InitialCost(p int) float64 { return saturate(l.handicap[p]) }

// RemoveRoot keeps the seed cost
func (l *LocalMax) RemoveRoot(int, []float64) {}

// Capable lets every pixel that is still open be offered a path
func (l *LocalMax) Capable(int, int, []float64) bool { return true }

// Propagate commits value[q] when the path through p is strictly cheaper
func (l *LocalMax) Propagate(p, q int, _ float64, value []float64) bool {
	candidate := saturate(math.Max(value[p], l.handicap[q]))
	if candidate < value[q] {
		value[q] = candidate
		return true
	}
	return false
}

// Increasing is always true
func (l *LocalMax) Increasing() bool { return true }

// CostRange is the handicap range: no cost ever exceeds the largest handicap
func (l *LocalMax) CostRange(float64) float64 { return saturate(l.maxH) }
