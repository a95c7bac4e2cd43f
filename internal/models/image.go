package models

import (
	"errors"
	"fmt"
)

// ErrShape is returned when image dimensions are invalid or disagree
var ErrShape = errors.New("invalid image shape")

// Shape describes the per-dimension size of a dense image.
// Dimension 0 varies fastest in the flattened layout (x, then y, then z).
type Shape struct {
	// Dims holds the size of each dimension
	Dims []int
}

// NewShape creates a shape from per-dimension sizes
func NewShape(dims ...int) (Shape, error) {
	if len(dims) == 0 {
		return Shape{}, fmt.Errorf("%w: no dimensions", ErrShape)
	}
	for d, n := range dims {
		if n <= 0 {
			return Shape{}, fmt.Errorf("%w: dimension %d has size %d", ErrShape, d, n)
		}
	}
	cp := make([]int, len(dims))
	copy(cp, dims)
	return Shape{Dims: cp}, nil
}

// NDims returns the number of dimensions
func (s Shape) NDims() int { return len(s.Dims) }

// Size returns the total number of pixels
func (s Shape) Size() int {
	if len(s.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have identical dimensions
func (s Shape) Equal(o Shape) bool {
	if len(s.Dims) != len(o.Dims) {
		return false
	}
	for i := range s.Dims {
		if s.Dims[i] != o.Dims[i] {
			return false
		}
	}
	return true
}

// Index flattens a multi-index into a linear pixel index.
// The caller must ensure the coordinates are inside the shape.
func (s Shape) Index(coords ...int) int {
	idx := 0
	stride := 1
	for d, c := range coords {
		idx += c * stride
		stride *= s.Dims[d]
	}
	return idx
}

// Coords writes the multi-index of a linear index into dst and returns it.
// dst is reallocated when it is too short.
func (s Shape) Coords(idx int, dst []int) []int {
	if cap(dst) < len(s.Dims) {
		dst = make([]int, len(s.Dims))
	}
	dst = dst[:len(s.Dims)]
	for d, n := range s.Dims {
		dst[d] = idx % n
		idx /= n
	}
	return dst
}

// Contains reports whether coords lie inside the shape
func (s Shape) Contains(coords []int) bool {
	if len(coords) != len(s.Dims) {
		return false
	}
	for d, c := range coords {
		if c < 0 || c >= s.Dims[d] {
			return false
		}
	}
	return true
}

// Image is an N-dimensional dense array of scalar samples.
// Color images are reduced to a single intensity channel when loaded.
type Image struct {
	Shape

	// Data holds the samples in flattened order
	Data []float64

	// Spacing is the physical pixel size along each dimension (mm)
	Spacing []float64
}

// NewImage allocates a zero-filled image with unit spacing
func NewImage(dims ...int) (*Image, error) {
	shape, err := NewShape(dims...)
	if err != nil {
		return nil, err
	}
	spacing := make([]float64, len(dims))
	for i := range spacing {
		spacing[i] = 1
	}
	return &Image{
		Shape:   shape,
		Data:    make([]float64, shape.Size()),
		Spacing: spacing,
	}, nil
}

// FromData wraps existing samples; len(data) must match the shape
func FromData(data []float64, dims ...int) (*Image, error) {
	img, err := NewImage(dims...)
	if err != nil {
		return nil, err
	}
	if len(data) != img.Size() {
		return nil, fmt.Errorf("%w: %d samples for %v", ErrShape, len(data), dims)
	}
	img.Data = data
	return img, nil
}

// At returns the sample at the given coordinates
func (img *Image) At(coords ...int) float64 {
	return img.Data[img.Index(coords...)]
}

// Set stores a sample at the given coordinates
func (img *Image) Set(v float64, coords ...int) {
	img.Data[img.Index(coords...)] = v
}

// Clone returns a deep copy of the image
func (img *Image) Clone() *Image {
	out := &Image{
		Shape:   Shape{Dims: append([]int(nil), img.Dims...)},
		Data:    append([]float64(nil), img.Data...),
		Spacing: append([]float64(nil), img.Spacing...),
	}
	return out
}

// MinMax returns the smallest and largest samples
func (img *Image) MinMax() (lo, hi float64) {
	if len(img.Data) == 0 {
		return 0, 0
	}
	lo, hi = img.Data[0], img.Data[0]
	for _, v := range img.Data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Mask converts the image to a membership vector; nonzero samples are inside.
// A nil image yields a nil mask, meaning "everything inside".
func (img *Image) Mask() []bool {
	if img == nil {
		return nil
	}
	mask := make([]bool, len(img.Data))
	for i, v := range img.Data {
		mask[i] = v != 0
	}
	return mask
}
