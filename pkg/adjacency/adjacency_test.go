package adjacency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iftseg/internal/models"
)

// TestBuildSizes checks the neighbourhood sizes for the radii used by the edge algorithms
func TestBuildSizes(t *testing.T) {
	cases := []struct {
		name   string
		radius float64
		dims   int
		size   int
	}{
		{"4-connected", 1.1, 2, 5},
		{"8-connected sqrt2", math.Sqrt2, 2, 9},
		{"8-connected 1.5", 1.5, 2, 9},
		{"8-connected 1.9", 1.9, 2, 9},
		{"radius 2", 2, 2, 13},
		{"6-connected", 1.0, 3, 7},
		{"18-connected", 1.5, 3, 19},
		{"26-connected", 1.9, 3, 27},
		{"1D", 1, 1, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adj := Build(tc.radius, tc.dims)
			assert.Equal(t, tc.size, adj.Size())
			assert.Equal(t, tc.dims, adj.Dims())
		})
	}
}

// TestSelfFirst verifies that element 0 is the zero offset and distances never decrease
func TestSelfFirst(t *testing.T) {
	adj := Build(2.5, 3)
	for d := 0; d < adj.Dims(); d++ {
		assert.Equal(t, 0, adj.Offset(0, d))
	}
	assert.Equal(t, 0.0, adj.Distance(0))

	for i := 1; i < adj.Size(); i++ {
		assert.GreaterOrEqual(t, adj.Distance(i), adj.Distance(i-1))
		assert.LessOrEqual(t, adj.Distance(i), 2.5+tolerance)
	}
	assert.InDelta(t, math.Sqrt(6), adj.MaxDistance(), 1e-12)
}

// TestDeterministicOrder pins the 8-neighbourhood ordering used by the engine
func TestDeterministicOrder(t *testing.T) {
	adj := Circular(1.9)
	want := [][2]int{
		{0, 0},
		{0, -1}, {-1, 0}, {1, 0}, {0, 1},
		{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
	}
	require.Equal(t, len(want), adj.Size())
	for i, w := range want {
		assert.Equal(t, w[0], adj.Offset(i, 0), "offset %d x", i)
		assert.Equal(t, w[1], adj.Offset(i, 1), "offset %d y", i)
	}
	assert.InDelta(t, 1.0, adj.Distance(1), 1e-12)
	assert.InDelta(t, math.Sqrt2, adj.Distance(5), 1e-12)
}

// TestDegenerateRadius documents the self-only boundary condition
func TestDegenerateRadius(t *testing.T) {
	for _, r := range []float64{0, -3, math.NaN()} {
		adj := Build(r, 2)
		require.Equal(t, 1, adj.Size())
		assert.Equal(t, 0, adj.Offset(0, 0))
		assert.Equal(t, 0, adj.Offset(0, 1))
		assert.Equal(t, 0.0, adj.MaxDistance())
	}
}

// TestNeighbor checks bounds handling on the image border
func TestNeighbor(t *testing.T) {
	shape, err := models.NewShape(3, 2)
	require.NoError(t, err)
	adj := Circular(1.1)

	// corner pixel (0,0): up and left fall outside
	coords := []int{0, 0}
	var inside []int
	for i := 1; i < adj.Size(); i++ {
		if idx, ok := adj.Neighbor(shape, coords, i); ok {
			inside = append(inside, idx)
		}
	}
	assert.Equal(t, []int{1, 3}, inside)

	idx, ok := adj.Neighbor(shape, []int{2, 1}, 0)
	assert.True(t, ok)
	assert.Equal(t, 5, idx)
}
