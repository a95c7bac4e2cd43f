package edge

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"iftseg/internal/lib/logger/slogdiscard"
	"iftseg/internal/models"
	"iftseg/pkg/ift"
	"iftseg/pkg/pathfunc"
)

// createTestImage builds a 2D image from a pattern function
func createTestImage(t *testing.T, width, height int, pattern func(x, y int) float64) *models.Image {
	img, err := models.NewImage(width, height)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(pattern(x, y), x, y)
		}
	}
	return img
}

// stepEdge is dark left of x = 4 and bright from x = 4 on
func stepEdge(x, _ int) float64 {
	if x < 4 {
		return 0
	}
	return 200
}

func seeds(t *testing.T, img *models.Image, points ...[]int) []bool {
	s, err := models.SeedsAt(img.Shape, points...)
	require.NoError(t, err)
	return s
}

// TestHandicap checks gradient, complement and rounding on a step edge
func TestHandicap(t *testing.T) {
	img := createTestImage(t, 9, 3, stepEdge)

	grad := Gradient(img, DefaultGradientRadius)
	assert.Equal(t, 200.0, grad[img.Index(3, 1)])
	assert.Equal(t, 200.0, grad[img.Index(4, 1)])
	assert.Equal(t, 0.0, grad[img.Index(0, 1)])

	h := Handicap(img, nil, 1, DefaultGradientRadius)
	assert.Equal(t, 0.0, h[img.Index(3, 1)])
	assert.Equal(t, 0.0, h[img.Index(4, 2)])
	assert.Equal(t, 200.0, h[img.Index(8, 0)])

	mask := make([]bool, img.Size())
	mask[img.Index(8, 0)] = true
	h = Handicap(img, mask, 1, DefaultGradientRadius)
	assert.Equal(t, 200.0, h[img.Index(8, 0)])
	assert.Equal(t, 0.0, h[img.Index(0, 0)])
}

// TestWeightMonotonicity: raising the weight never lowers the largest handicap
// and never raises any single one
func TestWeightMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	img := createTestImage(t, 16, 16, func(int, int) float64 { return float64(rng.Intn(256)) })

	prev := Handicap(img, nil, 1, DefaultGradientRadius)
	for _, w := range []float64{1.5, 2, 3, 5} {
		h := Handicap(img, nil, w, DefaultGradientRadius)
		assert.GreaterOrEqual(t, floats.Max(h), floats.Max(prev), "weight %v", w)
		for i := range h {
			assert.LessOrEqual(t, h[i], prev[i]+1, "weight %v pixel %d", w, i)
		}
		prev = h
	}
}

// TestLiveWireFollowsEdge prefers walking along the step edge
func TestLiveWireFollowsEdge(t *testing.T) {
	img := createTestImage(t, 9, 9, stepEdge)
	res, err := LiveWire(img, nil, seeds(t, img, []int{3, 0}), DefaultLiveWireParams())
	require.NoError(t, err)

	onEdge := res.Cost[img.Index(3, 8)]
	offEdge := res.Cost[img.Index(0, 8)]
	assert.Equal(t, 80.0, onEdge)
	assert.Greater(t, offEdge, onEdge)

	// the optimum path to (3,8) stays on the edge columns
	p := img.Index(3, 8)
	coords := make([]int, 2)
	for res.Predecessor[p] != p {
		coords = img.Coords(p, coords)
		assert.Contains(t, []int{3, 4}, coords[0])
		p = res.Predecessor[p]
	}
	assert.Equal(t, img.Index(3, 0), p)
}

// TestLiveWireFlatImage: a flat image carries no attraction, costs are distances
func TestLiveWireFlatImage(t *testing.T) {
	img := createTestImage(t, 5, 5, func(int, int) float64 { return 100 })
	res, err := LiveWire(img, nil, seeds(t, img, []int{0, 0}), DefaultLiveWireParams())
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Cost[img.Index(0, 0)])
	assert.Equal(t, 40.0, res.Cost[img.Index(4, 0)])
	assert.Equal(t, 56.0, res.Cost[img.Index(4, 4)])
	assert.Equal(t, 48.0, res.Cost[img.Index(4, 2)])
}

// TestLiveWireIdempotent: identical inputs give bit-identical outputs
func TestLiveWireIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	img := createTestImage(t, 32, 24, func(int, int) float64 { return float64(rng.Intn(1000)) })
	s := seeds(t, img, []int{2, 2}, []int{30, 20}, []int{16, 12})
	params := DefaultLiveWireParams()
	params.Weight = 2.5
	params.Alpha = 0.4

	a, err := LiveWire(img, nil, s, params)
	require.NoError(t, err)
	b, err := LiveWire(img, nil, s, params)
	require.NoError(t, err)

	assert.Equal(t, a.Cost, b.Cost)
	assert.Equal(t, a.Predecessor, b.Predecessor)
	assert.Equal(t, a.Label, b.Label)
	assert.Equal(t, a.Order, b.Order)
}

// TestScenarioC runs RiverBed with the image border masked out
func TestScenarioC(t *testing.T) {
	const w, h = 8, 7
	img := createTestImage(t, w, h, func(x, y int) float64 { return float64((x * 37) % 11 * y) })
	mask := createTestImage(t, w, h, func(x, y int) float64 {
		if x == 0 || y == 0 || x == w-1 || y == h-1 {
			return 0
		}
		return 1
	})
	// the border seed is outside the mask and must be dropped
	s := seeds(t, img, []int{3, 3}, []int{0, 0})

	res, err := RiverBed(img, mask, s, DefaultRiverBedParams())
	require.NoError(t, err)

	roots := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := img.Index(x, y)
			if mask.Data[p] == 0 {
				assert.Equal(t, p, res.Predecessor[p], "border pixel (%d,%d)", x, y)
				assert.Equal(t, 0.0, res.Cost[p])
				assert.Equal(t, ift.NotVisited, res.State[p])
				continue
			}
			assert.True(t, res.Reached(p), "inner pixel (%d,%d)", x, y)
			assert.Equal(t, 1, res.Label[p])
			if res.IsRoot(p) {
				roots++
			}
		}
	}
	assert.Equal(t, 1, roots)
}

// TestRiverBedLocalMax: costs are the largest handicap met on the best path
func TestRiverBedLocalMax(t *testing.T) {
	img := createTestImage(t, 9, 5, stepEdge)
	res, err := RiverBed(img, nil, seeds(t, img, []int{3, 2}), DefaultRiverBedParams())
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Cost[img.Index(3, 0)])
	assert.Equal(t, 0.0, res.Cost[img.Index(4, 4)])
	assert.Equal(t, 200.0, res.Cost[img.Index(0, 0)])
	assert.Equal(t, 200.0, res.Cost[img.Index(8, 4)])
}

// TestInputErrors covers the configuration error taxonomy
func TestInputErrors(t *testing.T) {
	img := createTestImage(t, 4, 4, stepEdge)
	wrongMask := createTestImage(t, 4, 3, stepEdge)

	_, err := LiveWire(img, wrongMask, make([]bool, 16), DefaultLiveWireParams())
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = RiverBed(img, nil, make([]bool, 15), DefaultRiverBedParams())
	assert.ErrorIs(t, err, ErrSeedLength)

	params := DefaultLiveWireParams()
	params.Alpha = 3
	_, err = LiveWire(img, nil, make([]bool, 16), params)
	assert.ErrorIs(t, err, pathfunc.ErrInvalidParameter)

	params = DefaultLiveWireParams()
	params.Weight = -1
	_, err = LiveWire(img, nil, make([]bool, 16), params)
	assert.ErrorIs(t, err, pathfunc.ErrInvalidParameter)

	_, err = Compute("watershed", img, nil, make([]bool, 16), params)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = Defaults("watershed")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

// TestEmptySeeds returns an all-unvisited result
func TestEmptySeeds(t *testing.T) {
	img := createTestImage(t, 4, 4, stepEdge)
	res, err := LiveWire(img, nil, make([]bool, 16), DefaultLiveWireParams())
	require.NoError(t, err)
	assert.Empty(t, res.Order)
	for p := range res.Cost {
		assert.Equal(t, ift.MaxCost, res.Cost[p])
	}
}

// TestRunBatch runs both algorithms concurrently with separate buffers
func TestRunBatch(t *testing.T) {
	img := createTestImage(t, 12, 12, stepEdge)
	s := seeds(t, img, []int{3, 0})
	jobs := []Job{
		{ID: "lw", Algorithm: LiveWireAlgorithm, Image: img, Seeds: s, Params: DefaultLiveWireParams()},
		{Algorithm: RiverBedAlgorithm, Image: img, Seeds: s, Params: DefaultRiverBedParams()},
		{Algorithm: LiveWireAlgorithm, Image: img, Seeds: s, Params: DefaultRiverBedParams()},
	}

	outcomes, err := RunBatch(context.Background(), slogdiscard.NewDiscardLogger(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "lw", outcomes[0].Job.ID)
	assert.NotEmpty(t, outcomes[1].Job.ID)
	assert.NotEqual(t, outcomes[1].Job.ID, outcomes[2].Job.ID)

	direct, err := LiveWire(img, nil, s, DefaultLiveWireParams())
	require.NoError(t, err)
	assert.Equal(t, direct.Cost, outcomes[0].Result.Cost)

	direct, err = RiverBed(img, nil, s, DefaultRiverBedParams())
	require.NoError(t, err)
	assert.Equal(t, direct.Predecessor, outcomes[1].Result.Predecessor)
}

// TestRunBatchErrors propagates run failures and cancellation
func TestRunBatchErrors(t *testing.T) {
	img := createTestImage(t, 4, 4, stepEdge)
	log := slogdiscard.NewDiscardLogger()

	_, err := RunBatch(context.Background(), log, []Job{{Algorithm: "nope", Image: img, Seeds: make([]bool, 16)}}, 0)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunBatch(ctx, log, []Job{{Algorithm: LiveWireAlgorithm, Image: img, Seeds: make([]bool, 16), Params: DefaultLiveWireParams()}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
