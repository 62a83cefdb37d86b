package boardcanvas

import (
	"image"
	"image/color"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r2"

	"yarnboard/internal/board"
	"yarnboard/internal/export"
	yimage "yarnboard/internal/image"
	"yarnboard/pkg/geometry"
)

var (
	backgroundColor = color.RGBA{R: 0x2b, G: 0x26, B: 0x20, A: 0xff}
	frameColor      = color.RGBA{R: 0xf2, G: 0xec, B: 0xdf, A: 0xff}
	selectionColor  = color.RGBA{R: 0x4f, G: 0xa3, B: 0xe0, A: 0xff}
	pinColor        = color.RGBA{R: 0xaa, G: 0x33, B: 0x33, A: 0xff}
	legendBack      = color.RGBA{R: 0x1d, G: 0x1a, B: 0x16, A: 0xe0}
	fallbackRope    = color.RGBA{R: 0xd2, G: 0x39, B: 0x39, A: 0xff}
)

const (
	handleSizePx  = 8
	pinRadiusPx   = 5
	ropeThickness = 2
)

var (
	placeholderOnce sync.Once
	placeholderImg  image.Image
)

func placeholder() image.Image {
	placeholderOnce.Do(func() {
		placeholderImg = yimage.Placeholder(256, 192)
	})
	return placeholderImg
}

// draw composites one frame. Called by the fyne raster with the current
// widget size; holds the engine lock for the whole pass so the frame loop
// cannot step the sims mid-read.
func (w *BoardWidget) draw(width, height int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(output, backgroundColor)

	w.state.LockEngine()
	defer w.state.UnlockEngine()

	b := w.state.Board()
	m := w.state.Machine()

	for _, r := range b.Ropes() {
		w.drawChain(output, r.Sim.Points(), w.ropeColor(b, r), r.ID == m.SelectedRope())
	}
	if pv := m.Preview(); pv != nil {
		w.drawChain(output, pv.Points(), w.activeColor(b), false)
	}

	for _, a := range b.Anchors() {
		w.drawAnchor(output, b, a, a.ID == m.SelectedAnchor())
	}

	if b.ShowLegend {
		w.drawLegend(output, b)
	} else {
		w.legendRect = geometry.Rect{}
	}
	return output
}

func (w *BoardWidget) ropeColor(b *board.Board, r *board.Rope) color.RGBA {
	if k, ok := b.Key(r.ColorID); ok {
		if c, ok := export.ParseHexColor(k.Color); ok {
			return c
		}
	}
	return fallbackRope
}

func (w *BoardWidget) activeColor(b *board.Board) color.RGBA {
	if k, ok := b.Key(b.ActiveColorID); ok {
		if c, ok := export.ParseHexColor(k.Color); ok {
			return c
		}
	}
	return fallbackRope
}

// drawChain renders a rope's point chain in screen space. Chains whose
// bounding box misses the frame are skipped whole.
func (w *BoardWidget) drawChain(output *image.RGBA, pts []r2.Vec, col color.RGBA, selected bool) {
	if len(pts) < 2 {
		return
	}
	thickness := ropeThickness
	if selected {
		thickness = ropeThickness + 2
	}
	vp := &w.state.Board().Viewport
	frame := geometry.Rect{
		Width:  float64(output.Bounds().Dx()),
		Height: float64(output.Bounds().Dy()),
	}
	sb := vp.RectToScreen(chainBounds(pts))
	pad := float64(thickness)
	sb.X -= pad
	sb.Y -= pad
	sb.Width += 2 * pad
	sb.Height += 2 * pad
	if !sb.Intersects(frame) {
		return
	}
	prev := vp.WorldToScreen(geometry.Point2D{X: pts[0].X, Y: pts[0].Y})
	for _, p := range pts[1:] {
		cur := vp.WorldToScreen(geometry.Point2D{X: p.X, Y: p.Y})
		drawLine(output, int(prev.X), int(prev.Y), int(cur.X), int(cur.Y), col, thickness)
		prev = cur
	}
}

// chainBounds returns the world-space bounding box of a point chain.
func chainBounds(pts []r2.Vec) geometry.Rect {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return geometry.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (w *BoardWidget) drawAnchor(output *image.RGBA, b *board.Board, a *board.Anchor, selected bool) {
	vp := &b.Viewport
	sr := vp.RectToScreen(a.Rect)
	dst := image.Rect(int(sr.X), int(sr.Y), int(sr.X+sr.Width), int(sr.Y+sr.Height))
	if dst.Empty() || !dst.Overlaps(output.Bounds()) {
		return
	}

	src := w.anchorImage(b, a)
	xdraw.ApproxBiLinear.Scale(output, dst, src, src.Bounds(), xdraw.Over, nil)

	border := frameColor
	if selected {
		border = selectionColor
	}
	drawRect(output, dst, border, 2)

	// Pin.
	pin := vp.WorldToScreen(a.Pin())
	fillCircle(output, int(pin.X), int(pin.Y), pinRadiusPx, pinColor)

	if selected && !b.Locked {
		for _, c := range []geometry.Corner{
			geometry.TopLeft, geometry.TopRight, geometry.BottomLeft, geometry.BottomRight,
		} {
			p := vp.WorldToScreen(a.Rect.CornerPoint(c))
			fillSquare(output, int(p.X), int(p.Y), handleSizePx, selectionColor)
		}
	}

	if a.Name != "" {
		drawText(output, a.Name, dst.Min.X+2, dst.Max.Y+4, frameColor, 1)
	}
}

func (w *BoardWidget) anchorImage(b *board.Board, a *board.Anchor) image.Image {
	if a.Missing || a.Images == nil {
		return placeholder()
	}
	footprint := math.Max(a.Rect.Width, a.Rect.Height) * b.Viewport.Zoom * w.DevicePixelRatio
	if img := a.Images.Select(b.RenderMode, footprint); img != nil {
		return img
	}
	return placeholder()
}

func (w *BoardWidget) drawLegend(output *image.RGBA, b *board.Board) {
	keys := b.Keys()
	rowH := 16
	width := 170
	height := 14 + rowH*(len(keys)+1)
	x, y := 10, 10

	rect := image.Rect(x, y, x+width, y+height)
	fillRect(output, rect, legendBack)
	drawText(output, "COLOR KEY", x+8, y+6, frameColor, 1)

	for i, k := range keys {
		rowY := y + 14 + rowH*(i+1) - rowH/2
		c := fallbackRope
		if parsed, ok := export.ParseHexColor(k.Color); ok {
			c = parsed
		}
		fillRect(output, image.Rect(x+8, rowY, x+20, rowY+10), c)
		drawText(output, k.Name, x+26, rowY+2, frameColor, 1)
	}

	w.legendRect = geometry.Rect{
		X: float64(x), Y: float64(y),
		Width: float64(width), Height: float64(height),
	}
}
