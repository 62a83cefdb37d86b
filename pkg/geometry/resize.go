package geometry

import "math"

// ResizeFromFixedCorner computes an aspect-ratio-locked rectangle given one
// corner held fixed and the opposite corner dragged to a new point.
//
// Two candidate rectangles are derived: one clamps the horizontal extent
// first and derives the height from the aspect ratio, the other works from
// the vertical extent. Whichever candidate ends up with its free corner
// nearer to the drag point wins. The tie-break keeps near-diagonal drags
// from flapping between the two solutions.
//
// corner names the dragged corner; fixed is the position of its opposite.
// The result is integer-rounded.
func ResizeFromFixedCorner(fixed, dragged Point2D, corner Corner, ar, minW, minH, maxW, maxH float64) RectInt {
	if ar <= 0 {
		ar = 1
	}

	// Direction from the fixed corner toward the dragged corner.
	sx, sy := cornerSigns(corner)

	rawW := math.Abs(dragged.X - fixed.X)
	rawH := math.Abs(dragged.Y - fixed.Y)

	// Candidate 1: width-led.
	w1 := clamp(rawW, minW, maxW)
	h1 := w1 / ar
	if h1 < minH || h1 > maxH {
		h1 = clamp(h1, minH, maxH)
		w1 = h1 * ar
	}

	// Candidate 2: height-led.
	h2 := clamp(rawH, minH, maxH)
	w2 := h2 * ar
	if w2 < minW || w2 > maxW {
		w2 = clamp(w2, minW, maxW)
		h2 = w2 / ar
	}

	free1 := Point2D{X: fixed.X + sx*w1, Y: fixed.Y + sy*h1}
	free2 := Point2D{X: fixed.X + sx*w2, Y: fixed.Y + sy*h2}

	w, h := w1, h1
	if free2.DistanceSq(dragged) < free1.DistanceSq(dragged) {
		w, h = w2, h2
	}

	x := fixed.X
	if sx < 0 {
		x = fixed.X - w
	}
	y := fixed.Y
	if sy < 0 {
		y = fixed.Y - h
	}

	return RectInt{
		X:      int(math.Round(x)),
		Y:      int(math.Round(y)),
		Width:  int(math.Round(w)),
		Height: int(math.Round(h)),
	}
}

// cornerSigns returns the axis directions that lead from the fixed corner to
// the dragged one.
func cornerSigns(dragged Corner) (sx, sy float64) {
	switch dragged {
	case TopLeft:
		return -1, -1
	case TopRight:
		return 1, -1
	case BottomLeft:
		return -1, 1
	default:
		return 1, 1
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
