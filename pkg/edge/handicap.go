package edge

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"iftseg/internal/models"
	"iftseg/pkg/adjacency"
)

// Gradient computes the morphological gradient (dilation minus erosion) of
// img over an adjacency of the given radius.
func Gradient(img *models.Image, radius float64) []float64 {
	adj := adjacency.Build(radius, img.NDims())
	grad := make([]float64, len(img.Data))
	coords := make([]int, img.NDims())

	for p, v := range img.Data {
		lo, hi := v, v
		coords = img.Coords(p, coords)
		for i := 1; i < adj.Size(); i++ {
			q, ok := adj.Neighbor(img.Shape, coords, i)
			if !ok {
				continue
			}
			lo = math.Min(lo, img.Data[q])
			hi = math.Max(hi, img.Data[q])
		}
		grad[p] = hi - lo
	}
	return grad
}

// Handicap turns img into the per-pixel base cost of the edge algorithms:
//
//  1. morphological gradient;
//  2. complement (max - g), so strong edges become cheap to walk along;
//  3. for weight > 1, max*(v/max)^weight, bending the map towards its cheap end;
//  4. rounding to integer cost levels;
//  5. zero outside mask (nil mask keeps everything).
func Handicap(img *models.Image, mask []bool, weight, gradientRadius float64) []float64 {
	h := Gradient(img, gradientRadius)

	gmax := floats.Max(h)
	floats.Scale(-1, h)
	floats.AddConst(gmax, h)

	if hmax := floats.Max(h); weight > 1 && hmax > 0 {
		for i, v := range h {
			h[i] = hmax * math.Pow(v/hmax, weight)
		}
	}

	for i, v := range h {
		h[i] = math.Round(v)
		if mask != nil && !mask[i] {
			h[i] = 0
		}
	}
	return h
}
