package geometry

// Viewport maps between world coordinates and screen coordinates:
// screen = world*zoom + pan.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	Pan  Point2D `json:"pan"`
}

// NewViewport returns an identity viewport.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// transform returns the world-to-screen affine transform.
func (v Viewport) transform() AffineTransform {
	return Translation(v.Pan.X, v.Pan.Y).Compose(Scaling(v.Zoom))
}

// WorldToScreen maps a world-space point onto the screen.
func (v Viewport) WorldToScreen(p Point2D) Point2D {
	return v.transform().Apply(p)
}

// ScreenToWorld maps a screen-space point into the world. A viewport with
// zero zoom maps everything to the origin rather than dividing by zero.
func (v Viewport) ScreenToWorld(p Point2D) Point2D {
	inv, ok := v.transform().Inverse()
	if !ok {
		return Point2D{}
	}
	return inv.Apply(p)
}

// RectToScreen maps a world-space rectangle onto the screen.
func (v Viewport) RectToScreen(r Rect) Rect {
	tl := v.WorldToScreen(Point2D{X: r.X, Y: r.Y})
	return Rect{
		X:      tl.X,
		Y:      tl.Y,
		Width:  r.Width * v.Zoom,
		Height: r.Height * v.Zoom,
	}
}
