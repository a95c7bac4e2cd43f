// Package ift implements the Image Foresting Transform: a Dijkstra-like
// forest growing over a pixel adjacency graph from a set of seed roots, with
// the path cost defined by a pluggable pathfunc.PathFunction.
package ift

import (
	"errors"
	"fmt"

	"iftseg/internal/models"
	"iftseg/pkg/adjacency"
	"iftseg/pkg/bucketqueue"
	"iftseg/pkg/pathfunc"
)

// MaxCost is the cost of pixels no seed reached
const MaxCost = pathfunc.MaxCost

// ErrInvalidInput is returned when buffers do not match the image shape
var ErrInvalidInput = errors.New("invalid IFT input")

// State is the lifecycle of a pixel during a run
type State uint8

const (
	NotVisited State = iota
	Inserted
	Removed
)

// Options tunes a run
type Options struct {
	// Mask excludes pixels (false entries) from the graph; nil keeps all
	Mask []bool

	// Delta is the bucket width of the priority queue; 0 means 1
	Delta float64

	// Labels requests a label map
	Labels bool
}

// Result is the forest computed by Run. Every buffer is owned by the result.
type Result struct {
	Shape models.Shape

	// Cost is the optimum path cost per pixel, MaxCost when unreached and 0
	// for masked pixels
	Cost []float64

	// Predecessor points to the upstream pixel on the optimum path; roots and
	// unvisited pixels point to themselves
	Predecessor []int

	// Label is the root number (1, 2, ... in removal order) per pixel, 0 when
	// unreached; nil unless Options.Labels was set
	Label []int

	// State is the final state of each pixel
	State []State

	// Order lists pixels in the order they were finalized
	Order []int

	// Delta is the bucket width the run used. It exceeds Options.Delta when
	// the cost range needed more than bucketqueue.MaxBuckets buckets; costs
	// within one bucket are then served first in, first out.
	Delta float64
}

// Run grows the optimum-path forest from seeds over shape. The policy is a
// type parameter so the inner loop calls it without dynamic dispatch.
//
// An empty seed set is valid and yields an all-unvisited result.
func Run[P pathfunc.PathFunction](shape models.Shape, adj *adjacency.Adjacency, seeds []bool, policy P, opts Options) (*Result, error) {
	n := shape.Size()
	if len(seeds) != n {
		return nil, fmt.Errorf("%w: %d seeds for %d pixels", ErrInvalidInput, len(seeds), n)
	}
	if opts.Mask != nil && len(opts.Mask) != n {
		return nil, fmt.Errorf("%w: mask has %d entries for %d pixels", ErrInvalidInput, len(opts.Mask), n)
	}
	if adj.Dims() != shape.NDims() {
		return nil, fmt.Errorf("%w: %d-D adjacency on %d-D image", ErrInvalidInput, adj.Dims(), shape.NDims())
	}
	if !policy.Increasing() {
		return nil, fmt.Errorf("%w: only increasing path functions are supported", ErrInvalidInput)
	}

	delta := opts.Delta
	if delta <= 0 {
		delta = 1
	}

	res := &Result{
		Shape:       shape,
		Cost:        make([]float64, n),
		Predecessor: make([]int, n),
		State:       make([]State, n),
		Order:       make([]int, 0, n),
	}
	if opts.Labels {
		res.Label = make([]int, n)
	}

	masked := func(p int) bool { return opts.Mask != nil && !opts.Mask[p] }

	queue := bucketqueue.New(n, policy.CostRange(adj.MaxDistance()), delta, true)
	res.Delta = queue.Delta()
	value := res.Cost
	pred := res.Predecessor
	state := res.State

	for p := 0; p < n; p++ {
		pred[p] = p
		switch {
		case masked(p):
			value[p] = 0
		case seeds[p]:
			value[p] = policy.InitialCost(p)
			state[p] = Inserted
			queue.Insert(p, value[p])
		default:
			value[p] = MaxCost
		}
	}

	// the label counter belongs to the run, not to the policy
	nextLabel := 1
	coords := make([]int, shape.NDims())

	for {
		p, ok := queue.Remove()
		if !ok {
			break
		}
		if pred[p] == p {
			policy.RemoveRoot(p, value)
			if res.Label != nil {
				res.Label[p] = nextLabel
				nextLabel++
			}
		} else if res.Label != nil {
			res.Label[p] = res.Label[pred[p]]
		}
		state[p] = Removed
		res.Order = append(res.Order, p)

		coords = shape.Coords(p, coords)
		for i := 1; i < adj.Size(); i++ {
			q, inside := adj.Neighbor(shape, coords, i)
			if !inside || state[q] == Removed || masked(q) {
				continue
			}
			if !policy.Capable(p, q, value) {
				continue
			}
			old := value[q]
			if !policy.Propagate(p, q, adj.Distance(i), value) {
				continue
			}
			pred[q] = p
			if state[q] == Inserted {
				queue.UpdateCost(q, old, value[q])
			} else {
				state[q] = Inserted
				queue.Insert(q, value[q])
			}
		}
	}

	return res, nil
}

// Reached reports whether p was finalized by the run
func (r *Result) Reached(p int) bool { return r.State[p] == Removed }

// IsRoot reports whether p was finalized as a root of the forest
func (r *Result) IsRoot(p int) bool { return r.State[p] == Removed && r.Predecessor[p] == p }

// HasPredecessor reports whether p hangs off another pixel
func (r *Result) HasPredecessor(p int) bool { return r.Predecessor[p] != p }

// Root follows predecessors from p to its root. The second return is false
// for unreached pixels.
func (r *Result) Root(p int) (int, bool) {
	if !r.Reached(p) {
		return p, false
	}
	for steps := 0; r.Predecessor[p] != p; steps++ {
		if steps > len(r.Predecessor) {
			panic(fmt.Sprintf("ift: predecessor cycle through pixel %d", p))
		}
		p = r.Predecessor[p]
	}
	return p, true
}
