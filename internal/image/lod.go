package image

import goimage "image"

// Mode controls how aggressively the selector trades fidelity for speed.
type Mode int

const (
	// ModeOptimized picks the smallest variant that still covers the
	// on-screen footprint.
	ModeOptimized Mode = iota
	// ModeHigh always draws the full-resolution image.
	ModeHigh
)

// Footprint thresholds, in device pixels, below which the next smaller
// variant is good enough. Slightly above the variant caps so a variant keeps
// being used through minor zoom jitter around its own size.
const (
	smallCutoff = 520
	largeCutoff = 1100
)

func (m Mode) String() string {
	if m == ModeHigh {
		return "high"
	}
	return "optimized"
}

// ParseMode maps a persisted render-mode string to a Mode, defaulting to
// optimized for anything unrecognized.
func ParseMode(s string) Mode {
	if s == "high" {
		return ModeHigh
	}
	return ModeOptimized
}

// Select returns the variant to draw for the given on-screen footprint
// (max(w,h) * zoom * devicePixelRatio). Missing variants fall back to full.
func (s *Set) Select(mode Mode, footprint float64) goimage.Image {
	if s == nil {
		return nil
	}
	if mode == ModeHigh {
		return s.Full
	}

	switch {
	case footprint <= smallCutoff && s.Small != nil:
		return s.Small
	case footprint <= largeCutoff && s.Large != nil:
		return s.Large
	default:
		return s.Full
	}
}
