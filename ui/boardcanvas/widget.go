// Package boardcanvas provides the board widget: pointer events in, raster
// pixels out. All board mutation goes through the interaction machine.
package boardcanvas

import (
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"yarnboard/internal/app"
	"yarnboard/pkg/geometry"
)

const (
	frameInterval = 16 * time.Millisecond
	wheelZoomStep = 1.1
)

// BoardWidget renders the board and feeds pointer input to the interaction
// machine.
type BoardWidget struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	// DevicePixelRatio feeds the LOD footprint; 1 unless the window reports
	// a scaled canvas.
	DevicePixelRatio float64

	mouseDown bool

	// legendRect is the chrome region of the last frame in widget
	// coordinates. Pointer-downs inside it never reach the machine.
	legendRect geometry.Rect

	stopCh chan struct{}
}

// New creates the board widget over the application state.
func New(state *app.State) *BoardWidget {
	w := &BoardWidget{
		state:            state,
		DevicePixelRatio: 1,
	}
	w.raster = fynecanvas.NewRaster(w.draw)
	w.raster.ScaleMode = fynecanvas.ImageScalePixels
	w.raster.SetMinSize(fyne.NewSize(640, 480))
	w.ExtendBaseWidget(w)

	state.On(app.EventImageResolved, func(interface{}) { w.Refresh() })
	state.On(app.EventBoardLoaded, func(interface{}) { w.Refresh() })
	return w
}

// CreateRenderer implements fyne.Widget.
func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

// Start launches the frame loop. The loop steps the simulations and
// refreshes the raster only when something moved.
func (w *BoardWidget) Start() {
	w.stopCh = make(chan struct{})
	go w.frameLoop(w.stopCh)
}

// Stop ends the frame loop.
func (w *BoardWidget) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *BoardWidget) frameLoop(stop chan struct{}) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if w.state.Tick(dt) {
				w.Refresh()
			}
		}
	}
}

// Refresh redraws the raster.
func (w *BoardWidget) Refresh() {
	w.raster.Refresh()
	w.BaseWidget.Refresh()
}

// MouseDown implements desktop.Mouseable. Input handlers run on fyne's
// event goroutine while the frame loop ticks on its own, so each one holds
// the engine lock around its board and machine access.
func (w *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	p := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	w.state.LockEngine()
	if w.state.Board().ShowLegend && w.legendRect.Contains(p) {
		w.state.UnlockEngine()
		return
	}
	w.mouseDown = true
	w.state.Machine().PointerDown(p)
	w.state.UnlockEngine()
	w.Refresh()
}

// MouseUp implements desktop.Mouseable.
func (w *BoardWidget) MouseUp(ev *desktop.MouseEvent) {
	if !w.mouseDown {
		return
	}
	w.mouseDown = false
	w.state.LockEngine()
	w.state.Machine().PointerUp()
	w.state.UnlockEngine()
	w.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (w *BoardWidget) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable. Moves always reach the machine so
// the connect preview can track the pointer between clicks.
func (w *BoardWidget) MouseMoved(ev *desktop.MouseEvent) {
	p := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	w.state.LockEngine()
	if !w.mouseDown && w.state.Machine().ConnectPending() == "" {
		w.state.UnlockEngine()
		return
	}
	w.state.Machine().PointerMove(p)
	w.state.UnlockEngine()
	w.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (w *BoardWidget) MouseOut() {
	if w.mouseDown {
		w.mouseDown = false
		w.state.LockEngine()
		w.state.Machine().PointerUp()
		w.state.UnlockEngine()
	}
}

// Scrolled zooms around the pointer so the point under the cursor stays put.
func (w *BoardWidget) Scrolled(ev *fyne.ScrollEvent) {
	factor := wheelZoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / wheelZoomStep
	}
	cursor := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}

	w.state.LockEngine()
	b := w.state.Board()
	world := b.Viewport.ScreenToWorld(cursor)
	b.SetZoom(b.Viewport.Zoom * factor)
	b.SetPan(cursor.X-world.X*b.Viewport.Zoom, cursor.Y-world.Y*b.Viewport.Zoom)
	w.state.UnlockEngine()
	w.Refresh()
}

// CancelConnect forwards Escape from the window.
func (w *BoardWidget) CancelConnect() {
	w.state.LockEngine()
	w.state.Machine().CancelConnect()
	w.state.UnlockEngine()
	w.Refresh()
}
