// Package edge implements the LiveWire and RiverBed boundary tracing
// algorithms on top of the IFT engine.
//
// Both share the same preprocessing (gradient, complement, optional
// re-exponentiation, masking) and differ in the path-cost policy: LiveWire
// accumulates costs with pathfunc.MaxSum, RiverBed floods the largest obstacle
// with pathfunc.LocalMax.
package edge

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"iftseg/internal/models"
	"iftseg/pkg/adjacency"
	"iftseg/pkg/ift"
	"iftseg/pkg/pathfunc"
)

// Default adjacency radii. They differ on purpose: RiverBed follows
// 4-connected paths, LiveWire 8-connected ones, and result shapes depend on it.
const (
	DefaultLiveWireRadius = 1.9
	DefaultRiverBedRadius = 1.1
	DefaultGradientRadius = 1.5
)

var (
	// ErrDimensionMismatch is returned when image and mask shapes differ
	ErrDimensionMismatch = errors.New("image and mask dimensions differ")

	// ErrSeedLength is returned when the seed vector does not cover the image
	ErrSeedLength = errors.New("seed vector length differs from pixel count")

	// ErrUnknownAlgorithm is returned for an unsupported algorithm name
	ErrUnknownAlgorithm = errors.New("unknown edge algorithm")
)

// Algorithm names an edge algorithm
type Algorithm string

const (
	LiveWireAlgorithm Algorithm = "livewire"
	RiverBedAlgorithm Algorithm = "riverbed"
)

// Params configures an edge algorithm run
type Params struct {
	// Radius of the propagation adjacency
	Radius float64 `validate:"gte=0"`

	// Alpha is the MaxSum orientation bias (LiveWire only)
	Alpha float64

	// Beta is the MaxSum handicap weight (LiveWire only)
	Beta float64

	// Weight > 1 re-exponentiates the handicap
	Weight float64 `validate:"gte=0"`

	// Delta is the bucket width of the priority queue
	Delta float64 `validate:"gte=0"`

	// GradientRadius is the adjacency radius of the morphological gradient
	GradientRadius float64 `validate:"gte=0"`
}

// DefaultLiveWireParams returns the LiveWire defaults
func DefaultLiveWireParams() Params {
	return Params{
		Radius:         DefaultLiveWireRadius,
		Alpha:          0,
		Beta:           0.5,
		Weight:         1,
		Delta:          1,
		GradientRadius: DefaultGradientRadius,
	}
}

// DefaultRiverBedParams returns the RiverBed defaults
func DefaultRiverBedParams() Params {
	p := DefaultLiveWireParams()
	p.Radius = DefaultRiverBedRadius
	return p
}

// Defaults returns the default parameters of an algorithm
func Defaults(alg Algorithm) (Params, error) {
	switch alg {
	case LiveWireAlgorithm:
		return DefaultLiveWireParams(), nil
	case RiverBedAlgorithm:
		return DefaultRiverBedParams(), nil
	}
	return Params{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
}

var validate = validator.New()

// LiveWire traces optimum paths from seeds with the MaxSum policy and
// returns the cost and predecessor maps (plus labels).
func LiveWire(img, mask *models.Image, seeds []bool, params Params) (*ift.Result, error) {
	m, h, s, err := prepare(img, mask, seeds, params)
	if err != nil {
		return nil, err
	}
	policy, err := pathfunc.NewMaxSum(img.Data, h, params.Alpha, params.Beta)
	if err != nil {
		return nil, fmt.Errorf("livewire: %w", err)
	}
	return run(img, m, s, params, policy)
}

// RiverBed traces optimum paths from seeds with the LocalMax policy
func RiverBed(img, mask *models.Image, seeds []bool, params Params) (*ift.Result, error) {
	m, h, s, err := prepare(img, mask, seeds, params)
	if err != nil {
		return nil, err
	}
	policy, err := pathfunc.NewLocalMax(h)
	if err != nil {
		return nil, fmt.Errorf("riverbed: %w", err)
	}
	return run(img, m, s, params, policy)
}

// Compute dispatches to the named algorithm
func Compute(alg Algorithm, img, mask *models.Image, seeds []bool, params Params) (*ift.Result, error) {
	switch alg {
	case LiveWireAlgorithm:
		return LiveWire(img, mask, seeds, params)
	case RiverBedAlgorithm:
		return RiverBed(img, mask, seeds, params)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
}

// prepare validates the inputs and builds the mask vector, the handicap
// and the seed set restricted to the mask
func prepare(img, mask *models.Image, seeds []bool, params Params) ([]bool, []float64, []bool, error) {
	if img == nil || img.Size() == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty image", models.ErrShape)
	}
	if err := validate.Struct(params); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", pathfunc.ErrInvalidParameter, err)
	}
	if mask != nil && !mask.Shape.Equal(img.Shape) {
		return nil, nil, nil, fmt.Errorf("%w: image %v, mask %v", ErrDimensionMismatch, img.Dims, mask.Dims)
	}
	if len(seeds) != img.Size() {
		return nil, nil, nil, fmt.Errorf("%w: %d seeds for %d pixels", ErrSeedLength, len(seeds), img.Size())
	}

	m := mask.Mask()
	h := Handicap(img, m, params.Weight, params.GradientRadius)
	s := models.Seeds(seeds).Restrict(m)
	return m, h, s, nil
}

func run[P pathfunc.PathFunction](img *models.Image, mask []bool, seeds []bool, params Params, policy P) (*ift.Result, error) {
	adj := adjacency.Build(params.Radius, img.NDims())
	return ift.Run(img.Shape, adj, seeds, policy, ift.Options{
		Mask:   mask,
		Delta:  params.Delta,
		Labels: true,
	})
}
