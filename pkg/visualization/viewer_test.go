package visualization

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"iftseg/internal/models"
	"iftseg/pkg/ift"
)

func newVolume(t *testing.T, width, height, depth int) *models.Image {
	t.Helper()
	img, err := models.NewImage(width, height, depth)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	return img
}

// TestExtractSlice verifies that slices are correctly extracted and windowed
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 10, 5
	vol := newVolume(t, width, height, depth)

	// each slice along Z has a unique value
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				vol.Set(float64(z), x, y, z)
			}
		}
	}

	viewer := NewViewer(vol)

	for z := 0; z < depth; z++ {
		img, err := viewer.ExtractSlice("z", z)
		if err != nil {
			t.Fatalf("Failed to extract Z slice at position %d: %v", z, err)
		}

		bounds := img.Bounds()
		if bounds.Dx() != width || bounds.Dy() != height {
			t.Errorf("Expected Z slice dimensions %dx%d, got %dx%d",
				width, height, bounds.Dx(), bounds.Dy())
		}

		expected := uint16(math.Round(float64(z) / float64(depth-1) * 65535))
		if got := img.Gray16At(width/2, height/2).Y; got != expected {
			t.Errorf("Expected Z slice value %d at center, got %d", expected, got)
		}
	}

	imgX, err := viewer.ExtractSlice("x", width/2)
	if err != nil {
		t.Fatalf("Failed to extract X slice: %v", err)
	}
	if b := imgX.Bounds(); b.Dx() != depth || b.Dy() != height {
		t.Errorf("Expected X slice dimensions %dx%d, got %dx%d", depth, height, b.Dx(), b.Dy())
	}

	imgY, err := viewer.ExtractSlice("Y", height/2)
	if err != nil {
		t.Fatalf("Failed to extract Y slice: %v", err)
	}
	if b := imgY.Bounds(); b.Dx() != width || b.Dy() != depth {
		t.Errorf("Expected Y slice dimensions %dx%d, got %dx%d", width, depth, b.Dx(), b.Dy())
	}

	if _, err := viewer.ExtractSlice("invalid", 0); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
	if _, err := viewer.ExtractSlice("z", depth+1); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
	if _, err := viewer.ExtractSlice("z", -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

// TestCostViewer draws unreached pixels white and windows the rest
func TestCostViewer(t *testing.T) {
	shape, err := models.NewShape(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	res := &ift.Result{
		Shape:       shape,
		Cost:        []float64{0, 10, ift.MaxCost},
		Predecessor: []int{0, 0, 2},
	}

	viewer, err := NewCostViewer(res)
	if err != nil {
		t.Fatalf("Failed to create cost viewer: %v", err)
	}
	img, err := viewer.ExtractSlice("z", 0)
	if err != nil {
		t.Fatalf("Failed to extract cost slice: %v", err)
	}

	want := []uint16{0, 65535, 65535}
	for x, w := range want {
		if got := img.Gray16At(x, 0).Y; got != w {
			t.Errorf("Expected cost pixel %d to be %d, got %d", x, w, got)
		}
	}
}

// TestOverlay paints path pixels over the base slice
func TestOverlay(t *testing.T) {
	img, err := models.NewImage(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	viewer := NewViewer(img)

	path := []int{img.Index(0, 0), img.Index(1, 1), img.Index(2, 2), 99}
	out, err := viewer.Overlay(0, path, PathColor)
	if err != nil {
		t.Fatalf("Failed to overlay path: %v", err)
	}

	for i := 0; i < 3; i++ {
		if got := out.RGBAAt(i, i); got != PathColor {
			t.Errorf("Expected path color at (%d,%d), got %v", i, i, got)
		}
	}
	if got := out.RGBAAt(3, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("Expected black background at (3,0), got %v", got)
	}

	if _, err := viewer.Overlay(1, path, PathColor); err == nil {
		t.Error("Expected error for missing slice, got nil")
	}
}

// TestSaveSlice verifies that slices can be saved to disk
func TestSaveSlice(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	tempDir := t.TempDir()
	img := image.NewGray16(image.Rect(0, 0, 5, 5))

	for _, name := range []string{"slice.png", "slice.jpg"} {
		filename := filepath.Join(tempDir, "out", name)
		if err := SaveSlice(img, filename); err != nil {
			t.Fatalf("Failed to save slice %s: %v", name, err)
		}
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			t.Errorf("Saved file does not exist: %s", filename)
		}
	}

	if err := SaveSlice(img, filepath.Join(tempDir, "slice.bmp")); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
}

// TestSaveSliceSequence verifies that a sequence of slices can be saved
func TestSaveSliceSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	depth := 3
	viewer := NewViewer(newVolume(t, 5, 5, depth))

	outputDir := filepath.Join(t.TempDir(), "slices")
	if err := viewer.SaveSliceSequence("z", outputDir); err != nil {
		t.Fatalf("Failed to save slice sequence: %v", err)
	}

	for z := 0; z < depth; z++ {
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_z_%03d.png", z))
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			t.Errorf("Expected slice file does not exist: %s", filename)
		}
	}

	if err := viewer.SaveSliceSequence("invalid", outputDir); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}

// TestSaveRaw verifies the little-endian float64 dump
func TestSaveRaw(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cost.raw")
	data := []float64{0, 1.5, ift.MaxCost}
	if err := SaveRaw(data, filename); err != nil {
		t.Fatalf("Failed to save raw data: %v", err)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got := make([]float64, len(data))
	if err := binary.Read(f, binary.LittleEndian, got); err != nil {
		t.Fatalf("Failed to read raw data: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("Expected raw value %f at %d, got %f", data[i], i, got[i])
		}
	}
}
