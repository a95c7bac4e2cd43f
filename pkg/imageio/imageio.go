// Package imageio loads 2D images and slice stacks into models.Image.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"iftseg/internal/models"
)

// ErrNoImages is returned when a stack directory holds no readable slices
var ErrNoImages = errors.New("no images found")

// Load decodes a PNG or JPEG file into a 2D image of intensities
func Load(path string) (*models.Image, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// FromImage converts a decoded image into intensities. Gray images keep
// their sample values (8 or 16 bit); color images are reduced to CIE L*
// scaled to [0,255].
func FromImage(img image.Image) (*models.Image, error) {
	b := img.Bounds()
	out, err := models.NewImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(intensity(img.At(x, y)), x-b.Min.X, y-b.Min.Y)
		}
	}
	return out, nil
}

func intensity(c color.Color) float64 {
	switch v := c.(type) {
	case color.Gray:
		return float64(v.Y)
	case color.Gray16:
		return float64(v.Y)
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// fully transparent
		return 0
	}
	l, _, _ := cf.Lab()
	return math.Round(l * 255)
}

// LoadStack loads every PNG/JPEG in dir as one z slice of a 3D image. Files
// are ordered by the number in their name; all slices must share the size of
// the first one. sliceGap becomes the z spacing.
func LoadStack(dir string, sliceGap float64) (*models.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	// order slices by the number in their file name so anatomy stays in sequence
	sort.SliceStable(files, func(i, j int) bool {
		return extractNumber(files[i]) < extractNumber(files[j])
	})

	var vol *models.Image
	var width, height int
	for z, name := range files {
		slice, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", name, err)
		}
		if vol == nil {
			width, height = slice.Dims[0], slice.Dims[1]
			vol, err = models.NewImage(width, height, len(files))
			if err != nil {
				return nil, err
			}
			if sliceGap > 0 {
				vol.Spacing[2] = sliceGap
			}
		}
		if slice.Dims[0] != width || slice.Dims[1] != height {
			return nil, fmt.Errorf("%w: slice %s is %dx%d, expected %dx%d", models.ErrShape, name, slice.Dims[0], slice.Dims[1], width, height)
		}
		copy(vol.Data[z*width*height:], slice.Data)
	}
	return vol, nil
}

// extractNumber returns the last run of digits in a file name, or 0
func extractNumber(filename string) int {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	end := -1
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] >= '0' && base[i] <= '9' {
			if end < 0 {
				end = i + 1
			}
		} else if end >= 0 {
			n, _ := strconv.Atoi(base[i+1 : end])
			return n
		}
	}
	if end >= 0 {
		n, _ := strconv.Atoi(base[:end])
		return n
	}
	return 0
}

// loadImage decodes an image file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
