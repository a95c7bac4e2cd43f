package trace

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// anchorPoint is an anchor position in pixel coordinates
type anchorPoint struct {
	Coords []float64
	Order  int // position in the anchor list
}

// Compare implements the kdtree.Comparable interface
func (p anchorPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(anchorPoint)
	return p.Coords[d] - q.Coords[d]
}

// Dims implements the kdtree.Comparable interface
func (p anchorPoint) Dims() int { return len(p.Coords) }

// Distance implements the kdtree.Comparable interface and returns the
// squared Euclidean distance
func (p anchorPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(anchorPoint)
	sum := 0.0
	for d := range p.Coords {
		diff := p.Coords[d] - q.Coords[d]
		sum += diff * diff
	}
	return sum
}

// anchorPoints satisfies kdtree.Interface
type anchorPoints []anchorPoint

func (p anchorPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p anchorPoints) Len() int                              { return len(p) }
func (p anchorPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p anchorPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(anchorPlane{anchorPoints: p, Dim: d}, kdtree.MedianOfRandoms(anchorPlane{anchorPoints: p, Dim: d}, 100))
}

// anchorPlane implements sort.Interface and kdtree.SortSlicer
type anchorPlane struct {
	anchorPoints
	kdtree.Dim
}

func (p anchorPlane) Less(i, j int) bool {
	return p.anchorPoints[i].Coords[p.Dim] < p.anchorPoints[j].Coords[p.Dim]
}

func (p anchorPlane) Slice(start, end int) kdtree.SortSlicer {
	return anchorPlane{anchorPoints: p.anchorPoints[start:end], Dim: p.Dim}
}

func (p anchorPlane) Swap(i, j int) {
	p.anchorPoints[i], p.anchorPoints[j] = p.anchorPoints[j], p.anchorPoints[i]
}

// anchorIndex answers nearest-anchor queries
type anchorIndex struct {
	tree *kdtree.Tree
}

func newAnchorIndex(points []anchorPoint) *anchorIndex {
	if len(points) == 0 {
		return &anchorIndex{}
	}
	cp := make(anchorPoints, len(points))
	copy(cp, points)
	return &anchorIndex{tree: kdtree.New(cp, false)}
}

// nearest returns the closest anchor and its squared distance
func (a *anchorIndex) nearest(q anchorPoint) (anchorPoint, float64, bool) {
	if a.tree == nil {
		return anchorPoint{}, 0, false
	}
	c, d := a.tree.Nearest(q)
	if c == nil {
		return anchorPoint{}, 0, false
	}
	return c.(anchorPoint), d, true
}
