// Package trace extracts optimum paths from IFT predecessor maps and keeps
// the state of an interactive, anchor-by-anchor boundary tracing session.
package trace

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when a predecessor chain does not reach a root
var ErrCycle = errors.New("predecessor chain does not terminate")

// ErrOutOfRange is returned for a pixel outside the predecessor map
var ErrOutOfRange = errors.New("pixel outside predecessor map")

// Path walks the predecessors of q up to the root (the first pixel pointing
// to itself) and returns the pixels ordered from the root to q.
//
// An unreached pixel points to itself and yields the single-element path [q].
// A chain longer than the map has a cycle and yields ErrCycle.
func Path(pred []int, q int) ([]int, error) {
	if q < 0 || q >= len(pred) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, q, len(pred))
	}

	path := []int{q}
	p := q
	for pred[p] != p {
		p = pred[p]
		if p < 0 || p >= len(pred) {
			return nil, fmt.Errorf("%w: predecessor %d not in [0,%d)", ErrOutOfRange, p, len(pred))
		}
		path = append(path, p)
		if len(path) > len(pred) {
			return nil, fmt.Errorf("%w: from pixel %d", ErrCycle, q)
		}
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
