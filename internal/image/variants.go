package image

import (
	"image"

	"golang.org/x/image/draw"
)

// BuildVariants fills in the downscaled variants from the full image. It is
// a no-op for the variants whose cap is at or above the source resolution;
// upscaling would only waste memory. Safe to call more than once.
func (s *Set) BuildVariants() {
	if s == nil || s.Full == nil {
		return
	}
	if s.Large == nil {
		s.Large = scaleToMax(s.Full, LargeMax)
	}
	if s.Small == nil {
		s.Small = scaleToMax(s.Full, SmallMax)
	}
}

// scaleToMax downscales img so its longer edge is maxDim, keeping aspect.
// Returns nil when the image already fits, signalling "use full".
func scaleToMax(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return nil
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
