package models

import "fmt"

// Seeds marks the pixels that are path roots, one entry per pixel
type Seeds []bool

// NewSeeds creates an empty seed set sized for the shape
func NewSeeds(shape Shape) Seeds {
	return make(Seeds, shape.Size())
}

// SeedsAt builds a seed set from 2D or 3D points
func SeedsAt(shape Shape, points ...[]int) (Seeds, error) {
	seeds := NewSeeds(shape)
	for _, p := range points {
		if !shape.Contains(p) {
			return nil, fmt.Errorf("%w: seed %v outside %v", ErrShape, p, shape.Dims)
		}
		seeds[shape.Index(p...)] = true
	}
	return seeds, nil
}

// Count returns the number of seed pixels
func (s Seeds) Count() int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

// Restrict returns a copy of the seeds with every pixel outside mask removed.
// A nil mask keeps all seeds.
func (s Seeds) Restrict(mask []bool) Seeds {
	out := make(Seeds, len(s))
	copy(out, s)
	if mask == nil {
		return out
	}
	for i := range out {
		if !mask[i] {
			out[i] = false
		}
	}
	return out
}
