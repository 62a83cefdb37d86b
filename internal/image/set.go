// Package image provides image decoding, precomputed level-of-detail
// variants, and the variant selector used while drawing the board.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Variant maximum dimensions. Full keeps the source resolution.
const (
	LargeMax = 1024
	SmallMax = 512
)

// Set holds the precomputed variants of one anchor image. Large and Small
// stay nil until BuildVariants runs, or permanently when the source is
// already smaller than the variant cap; Select falls back to Full either way.
type Set struct {
	Path  string
	Full  image.Image
	Large image.Image
	Small image.Image
}

// Load reads and decodes an image file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// Decode decodes in-memory image data into a Set with only the full variant
// populated.
func Decode(data []byte) (*Set, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Set{Full: img}, nil
}

// Width returns the full variant's width in pixels.
func (s *Set) Width() int {
	if s == nil || s.Full == nil {
		return 0
	}
	return s.Full.Bounds().Dx()
}

// Height returns the full variant's height in pixels.
func (s *Set) Height() int {
	if s == nil || s.Full == nil {
		return 0
	}
	return s.Full.Bounds().Dy()
}

// AspectRatio returns width/height of the source image, or 1 for an empty set.
func (s *Set) AspectRatio() float64 {
	w, h := s.Width(), s.Height()
	if w == 0 || h == 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// SupportedFormats returns the image extensions the decoder accepts.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Placeholder builds the raster shown for an anchor whose source image could
// not be resolved: a dark panel with a light border and a diagonal cross.
func Placeholder(w, h int) image.Image {
	if w < 8 {
		w = 8
	}
	if h < 8 {
		h = 8
	}

	bg := color.RGBA{R: 58, G: 58, B: 66, A: 255}
	fg := color.RGBA{R: 170, G: 120, B: 120, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}

	for x := 0; x < w; x++ {
		img.SetRGBA(x, 0, fg)
		img.SetRGBA(x, h-1, fg)
	}
	for y := 0; y < h; y++ {
		img.SetRGBA(0, y, fg)
		img.SetRGBA(w-1, y, fg)
	}

	// Diagonal cross, thick enough to read at small sizes.
	for x := 0; x < w; x++ {
		y := x * (h - 1) / (w - 1)
		for d := -1; d <= 1; d++ {
			if y+d >= 0 && y+d < h {
				img.SetRGBA(x, y+d, fg)
				img.SetRGBA(x, h-1-y-d, fg)
			}
		}
	}
	return img
}
