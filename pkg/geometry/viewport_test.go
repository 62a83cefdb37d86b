package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportWorldToScreen(t *testing.T) {
	v := Viewport{Zoom: 2, Pan: NewPoint2D(10, -5)}

	got := v.WorldToScreen(NewPoint2D(3, 4))
	assert.InDelta(t, 16, got.X, 1e-9)
	assert.InDelta(t, 3, got.Y, 1e-9)
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Zoom: 0.25, Pan: NewPoint2D(-120.5, 431)}

	for _, p := range []Point2D{{0, 0}, {150, -90}, {-3.25, 7.75}, {99999, 12345}} {
		back := v.ScreenToWorld(v.WorldToScreen(p))
		assert.InDelta(t, p.X, back.X, 1e-6)
		assert.InDelta(t, p.Y, back.Y, 1e-6)
	}
}

func TestViewportRectToScreen(t *testing.T) {
	v := Viewport{Zoom: 2, Pan: NewPoint2D(100, 100)}

	r := v.RectToScreen(NewRect(10, 20, 30, 40))
	assert.Equal(t, NewRect(120, 140, 60, 80), r)
}

func TestViewportZeroZoom(t *testing.T) {
	v := Viewport{}
	assert.Equal(t, Point2D{}, v.ScreenToWorld(NewPoint2D(50, 50)))
}
