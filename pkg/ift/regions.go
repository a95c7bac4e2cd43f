package ift

import (
	"fmt"

	"github.com/theodesp/unionfind"

	"iftseg/pkg/adjacency"
)

// Regions counts, for every label, the number of connected components its
// pixels form under adj. A partition produced by a single run has exactly one
// component per label.
func (r *Result) Regions(adj *adjacency.Adjacency) (map[int]int, error) {
	if r.Label == nil {
		return nil, fmt.Errorf("%w: result has no label map", ErrInvalidInput)
	}

	uf := unionfind.NewThreadSafeUnionFind(len(r.Label))
	coords := make([]int, r.Shape.NDims())
	for p, l := range r.Label {
		if l == 0 {
			continue
		}
		coords = r.Shape.Coords(p, coords)
		for i := 1; i < adj.Size(); i++ {
			q, ok := adj.Neighbor(r.Shape, coords, i)
			// each pair is seen from both ends; joining once is enough
			if !ok || q < p || r.Label[q] != l {
				continue
			}
			uf.Union(p, q)
		}
	}

	roots := make(map[int]bool)
	counts := make(map[int]int)
	for p, l := range r.Label {
		if l == 0 {
			continue
		}
		root := uf.Root(p)
		if !roots[root] {
			roots[root] = true
			counts[l]++
		}
	}
	return counts, nil
}
