// Package visualization renders images, cost maps and traced paths to disk.
package visualization

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"iftseg/internal/models"
	"iftseg/pkg/ift"
)

// PathColor is the default overlay color for traced paths
var PathColor = color.RGBA{R: 255, A: 255}

// Viewer extracts displayable slices from a 2D or 3D image. Samples are
// rescaled linearly from [min,max] to the 16-bit gray range.
type Viewer struct {
	img *models.Image

	// intensity window
	lo, hi float64

	// skip marks samples excluded from the window and drawn white
	skip func(v float64) bool
}

// NewViewer creates a viewer windowed on the image's own range
func NewViewer(img *models.Image) *Viewer {
	lo, hi := img.MinMax()
	return &Viewer{img: img, lo: lo, hi: hi}
}

// NewCostViewer creates a viewer over the cost map of a result. Unreached
// pixels (cost MaxCost) are left out of the window and drawn white.
func NewCostViewer(res *ift.Result) (*Viewer, error) {
	img, err := models.FromData(res.Cost, res.Shape.Dims...)
	if err != nil {
		return nil, err
	}
	skip := func(v float64) bool { return v >= ift.MaxCost }
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range res.Cost {
		if skip(c) {
			continue
		}
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}
	return &Viewer{img: img, lo: lo, hi: hi, skip: skip}, nil
}

func (v *Viewer) gray(val float64) color.Gray16 {
	if v.skip != nil && v.skip(val) {
		return color.Gray16{Y: math.MaxUint16}
	}
	if v.hi <= v.lo {
		return color.Gray16{}
	}
	n := (val - v.lo) / (v.hi - v.lo)
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, math.Round(n*65535))))}
}

// ExtractSlice extracts a 2D slice along the given axis. A 2D image has a
// single z slice at position 0.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	width, height, depth := v.img.Dims[0], 1, 1
	if v.img.NDims() > 1 {
		height = v.img.Dims[1]
	}
	if v.img.NDims() > 2 {
		depth = v.img.Dims[2]
	}
	if v.img.NDims() > 3 {
		return nil, fmt.Errorf("%w: cannot slice a %d-D image", models.ErrShape, v.img.NDims())
	}
	at := func(x, y, z int) float64 { return v.img.Data[z*width*height+y*width+x] }

	var img *image.Gray16
	switch strings.ToLower(axis) {
	case "x":
		// YZ plane
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img = image.NewGray16(image.Rect(0, 0, depth, height))
		for y := 0; y < height; y++ {
			for z := 0; z < depth; z++ {
				img.SetGray16(z, y, v.gray(at(position, y, z)))
			}
		}

	case "y":
		// XZ plane
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img = image.NewGray16(image.Rect(0, 0, width, depth))
		for z := 0; z < depth; z++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, z, v.gray(at(x, position, z)))
			}
		}

	case "z":
		// XY plane
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		img = image.NewGray16(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, y, v.gray(at(x, y, position)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// Overlay draws path (linear pixel indices) in c over z slice position of
// the image. Pixels of the path on other slices are skipped.
func (v *Viewer) Overlay(position int, path []int, c color.Color) (*image.RGBA, error) {
	base, err := v.ExtractSlice("z", position)
	if err != nil {
		return nil, err
	}
	b := base.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, base.At(x, y))
		}
	}

	plane := b.Dx() * b.Dy()
	for _, p := range path {
		if p < 0 || p >= v.img.Size() || p/plane != position {
			continue
		}
		q := p % plane
		out.Set(q%b.Dx(), q/b.Dx(), c)
	}
	return out, nil
}

// SaveSlice saves an image as PNG or JPEG depending on the file extension
func SaveSlice(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	case ".png":
		return png.Encode(file, img)
	}
	return fmt.Errorf("unsupported image format: %s", filename)
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch strings.ToLower(axis) {
	case "x":
		maxPos = v.img.Dims[0]
	case "y":
		maxPos = 1
		if v.img.NDims() > 1 {
			maxPos = v.img.Dims[1]
		}
	case "z":
		maxPos = 1
		if v.img.NDims() > 2 {
			maxPos = v.img.Dims[2]
		}
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// SaveRaw writes samples as little-endian float64
func SaveRaw(data []float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return binary.Write(file, binary.LittleEndian, data)
}
