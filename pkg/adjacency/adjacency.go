// Package adjacency enumerates the relative offsets that define which pixels
// are graph neighbors of one another in an N-dimensional image.
package adjacency

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"iftseg/internal/models"
)

// tolerance lets radii computed as square roots (math.Sqrt2, ...) include
// the offsets sitting exactly on the sphere.
const tolerance = 1e-9

// Adjacency is an immutable list of relative offsets within a radius.
// Element 0 is always the zero offset (the pixel itself).
type Adjacency struct {
	dims     int
	radius   float64
	offsets  [][]int
	distance []float64
}

// Build enumerates every integer offset of dims components whose Euclidean
// norm is at most radius. Offsets are ordered by distance, ties in raster order
// with the last dimension most significant.
//
// A radius <= 0 (or NaN) produces the degenerate self-only adjacency. dims < 1
// is treated as 1.
func Build(radius float64, dims int) *Adjacency {
	if dims < 1 {
		dims = 1
	}
	adj := &Adjacency{dims: dims, radius: radius}
	if !(radius > 0) {
		adj.offsets = [][]int{make([]int, dims)}
		adj.distance = []float64{0}
		return adj
	}

	r := int(math.Floor(radius + tolerance))
	limit := radius*radius + tolerance

	var candidates [][]int
	var squares []int
	cur := make([]int, dims)
	for i := range cur {
		cur[i] = -r
	}
	for {
		sq := 0
		for _, c := range cur {
			sq += c * c
		}
		if float64(sq) <= limit {
			candidates = append(candidates, append([]int(nil), cur...))
			squares = append(squares, sq)
		}
		// odometer increment, dimension 0 fastest
		d := 0
		for d < dims {
			cur[d]++
			if cur[d] <= r {
				break
			}
			cur[d] = -r
			d++
		}
		if d == dims {
			break
		}
	}

	norms := make([]float64, len(candidates))
	buf := make([]float64, dims)
	for i, c := range candidates {
		for d, v := range c {
			buf[d] = float64(v)
		}
		norms[i] = floats.Norm(buf, 2)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// candidates were generated in raster order, so a stable sort on the
	// squared norm keeps raster order among ties
	sort.SliceStable(order, func(a, b int) bool {
		return squares[order[a]] < squares[order[b]]
	})

	adj.offsets = make([][]int, len(order))
	adj.distance = make([]float64, len(order))
	for i, o := range order {
		adj.offsets[i] = candidates[o]
		adj.distance[i] = norms[o]
	}
	return adj
}

// Circular builds a 2D adjacency
func Circular(radius float64) *Adjacency { return Build(radius, 2) }

// Spherical builds a 3D adjacency
func Spherical(radius float64) *Adjacency { return Build(radius, 3) }

// Size returns the number of offsets, including the self offset
func (a *Adjacency) Size() int { return len(a.offsets) }

// Dims returns the number of components of each offset
func (a *Adjacency) Dims() int { return a.dims }

// Radius returns the radius the adjacency was built with
func (a *Adjacency) Radius() float64 { return a.radius }

// Offset returns component dim of offset i
func (a *Adjacency) Offset(i, dim int) int { return a.offsets[i][dim] }

// Distance returns the Euclidean length of offset i
func (a *Adjacency) Distance(i int) float64 { return a.distance[i] }

// Neighbor returns the linear index of coords displaced by offset i, and
// whether that pixel lies inside the shape. coords must have as many
// components as the shape; missing adjacency components are taken as zero.
func (a *Adjacency) Neighbor(shape models.Shape, coords []int, i int) (int, bool) {
	idx := 0
	stride := 1
	off := a.offsets[i]
	for d, c := range coords {
		if d < len(off) {
			c += off[d]
		}
		if c < 0 || c >= shape.Dims[d] {
			return -1, false
		}
		idx += c * stride
		stride *= shape.Dims[d]
	}
	return idx, true
}

// MaxDistance returns the largest offset length
func (a *Adjacency) MaxDistance() float64 {
	return a.distance[len(a.distance)-1]
}
