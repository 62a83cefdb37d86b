package boardcanvas

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"yarnboard/internal/app"
	"yarnboard/internal/store"
	"yarnboard/pkg/geometry"
)

func newTestWidget() (*BoardWidget, *app.State) {
	s := app.NewState(store.NewMemStore())
	return New(s), s
}

func mouseAt(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func TestDrawProducesFrame(t *testing.T) {
	w, s := newTestWidget()
	a1 := s.Board().AddAnchor("a", "")
	a2 := s.Board().AddAnchor("b", "")
	_, err := s.Board().Connect(a1.ID, a2.ID)
	require.NoError(t, err)
	s.Board().ShowLegend = true

	img := w.draw(800, 600)
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())
	assert.False(t, w.legendRect.Width == 0, "legend chrome region should be recorded")
}

func TestLegendChromeSwallowsPointerDown(t *testing.T) {
	w, s := newTestWidget()
	s.Board().ShowLegend = true
	w.draw(800, 600)
	require.NotZero(t, w.legendRect.Width)

	// A press inside the legend must not start a gesture.
	w.MouseDown(mouseAt(20, 20))
	assert.False(t, w.mouseDown)

	// Outside the legend, input flows to the machine.
	w.MouseDown(mouseAt(700, 500))
	assert.True(t, w.mouseDown)
	w.MouseUp(mouseAt(700, 500))
	assert.False(t, w.mouseDown)
}

func TestScrollZoomKeepsCursorPointFixed(t *testing.T) {
	w, s := newTestWidget()
	b := s.Board()
	b.SetPan(40, 25)

	cursor := geometry.Point2D{X: 300, Y: 200}
	before := b.Viewport.ScreenToWorld(cursor)

	w.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(300, 200)},
		Scrolled:   fyne.Delta{DY: 1},
	})

	after := b.Viewport.ScreenToWorld(cursor)
	assert.InDelta(t, before.X, after.X, 1e-6)
	assert.InDelta(t, before.Y, after.Y, 1e-6)
	assert.Greater(t, b.Viewport.Zoom, 1.0)
}

func TestScrollZoomClamped(t *testing.T) {
	w, s := newTestWidget()
	for i := 0; i < 100; i++ {
		w.Scrolled(&fyne.ScrollEvent{
			PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
			Scrolled:   fyne.Delta{DY: 1},
		})
	}
	assert.InDelta(t, 2.0, s.Board().Viewport.Zoom, 1e-9)

	for i := 0; i < 200; i++ {
		w.Scrolled(&fyne.ScrollEvent{
			PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
			Scrolled:   fyne.Delta{DY: -1},
		})
	}
	assert.InDelta(t, 0.25, s.Board().Viewport.Zoom, 1e-9)
}

func TestConcurrentFrameAndInput(t *testing.T) {
	w, s := newTestWidget()
	a1 := s.Board().AddAnchor("a", "")
	a2 := s.Board().AddAnchor("b", "")
	_, err := s.Board().Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			s.Tick(1.0 / 60)
		}
	}()

	// Pointer events and raster draws race against the ticking goroutine,
	// exactly as they do between fyne's event thread and the frame loop.
	for i := 0; i < 60; i++ {
		w.MouseDown(mouseAt(210, 90))
		w.MouseMoved(mouseAt(215, 93))
		w.MouseUp(mouseAt(215, 93))
		w.draw(400, 300)
	}
	<-done

	assert.Len(t, s.Board().Ropes(), 1)
	assert.Len(t, s.Board().Anchors(), 2)
}

func TestChainBounds(t *testing.T) {
	pts := []r2.Vec{{X: 3, Y: -2}, {X: -1, Y: 7}, {X: 5, Y: 0}}
	assert.Equal(t, geometry.Rect{X: -1, Y: -2, Width: 6, Height: 9}, chainBounds(pts))
}

func TestDrawLineStaysInBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	// Endpoints far outside the buffer must not panic.
	drawLine(img, -100, -100, 200, 300, color.RGBA{R: 255, A: 255}, 3)
	drawLine(img, 10, 10, 40, 20, color.RGBA{G: 255, A: 255}, 2)
	assert.Equal(t, uint8(255), img.RGBAAt(10, 10).G)
}

func TestDrawTextRendersGlyphs(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 20))
	drawText(img, "Lead 1", 2, 2, color.RGBA{R: 255, A: 255}, 1)

	lit := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			lit++
		}
	}
	assert.Greater(t, lit, 10)
}
