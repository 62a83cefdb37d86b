// Package export renders a board to a PNG file, independent of any window.
package export

import (
	"fmt"
	goimage "image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"gonum.org/v1/gonum/spatial/r2"

	"yarnboard/internal/board"
	yimage "yarnboard/internal/image"
)

const (
	exportPadding = 60.0
	settleFrames  = 600
	labelSize     = 13.0
	legendSize    = 14.0
	ropeWidth     = 2.5
	frameWidth    = 3.0
	pinRadius     = 5.0
)

// WritePNG renders the whole board at the given scale and saves it to path.
// Ropes are settled first so the export shows them hanging, not mid-flight.
func WritePNG(b *board.Board, path string, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	anchors := b.Anchors()
	if len(anchors) == 0 {
		return fmt.Errorf("nothing to export")
	}

	settleRopes(b)

	minX, minY, maxX, maxY := contentBounds(b)
	minX -= exportPadding
	minY -= exportPadding
	maxX += exportPadding
	maxY += exportPadding

	w := int(math.Ceil((maxX - minX) * scale))
	h := int(math.Ceil((maxY - minY) * scale))
	if w < 1 || h < 1 {
		return fmt.Errorf("export area is empty")
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.RGBA{R: 0x2b, G: 0x26, B: 0x20, A: 0xff})
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-minX, -minY)

	face, err := loadFace(labelSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	for _, r := range b.Ropes() {
		drawRope(dc, b, r)
	}
	for _, a := range anchors {
		drawAnchor(dc, a)
	}
	if b.ShowLegend {
		legendFace, err := loadFace(legendSize)
		if err != nil {
			return err
		}
		drawLegend(dc, b, minX, minY, legendFace, face)
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

func loadFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// settleRopes lets every rope hang until it sleeps, bounded per rope.
func settleRopes(b *board.Board) {
	for _, r := range b.Ropes() {
		a1 := b.Anchor(r.AID)
		a2 := b.Anchor(r.BID)
		if a1 == nil || a2 == nil {
			continue
		}
		p1, p2 := a1.Pin(), a2.Pin()
		r.Sim.Settle(r2.Vec{X: p1.X, Y: p1.Y}, r2.Vec{X: p2.X, Y: p2.Y}, settleFrames)
	}
}

// contentBounds is the union of anchor rects and rope chains in world space.
func contentBounds(b *board.Board) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, a := range b.Anchors() {
		minX = math.Min(minX, a.Rect.X)
		minY = math.Min(minY, a.Rect.Y)
		maxX = math.Max(maxX, a.Rect.X+a.Rect.Width)
		maxY = math.Max(maxY, a.Rect.Y+a.Rect.Height)
	}
	for _, r := range b.Ropes() {
		for _, p := range r.Sim.Points() {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	return minX, minY, maxX, maxY
}

func drawRope(dc *gg.Context, b *board.Board, r *board.Rope) {
	c := ropeColor(b, r)
	dc.SetColor(c)
	dc.SetLineWidth(ropeWidth)
	pts := r.Sim.Points()
	if len(pts) < 2 {
		return
	}
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

func ropeColor(b *board.Board, r *board.Rope) color.Color {
	if k, ok := b.Key(r.ColorID); ok {
		if c, ok := ParseHexColor(k.Color); ok {
			return c
		}
	}
	return color.RGBA{R: 0xd2, G: 0x39, B: 0x39, A: 0xff}
}

func drawAnchor(dc *gg.Context, a *board.Anchor) {
	rect := a.Rect

	img := anchorImage(a)
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw > 0 && ih > 0 {
		dc.Push()
		dc.Translate(rect.X, rect.Y)
		dc.Scale(rect.Width/float64(iw), rect.Height/float64(ih))
		dc.DrawImage(img, 0, 0)
		dc.Pop()
	}

	// Frame and pin.
	dc.SetColor(color.RGBA{R: 0xf2, G: 0xec, B: 0xdf, A: 0xff})
	dc.SetLineWidth(frameWidth)
	dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	dc.Stroke()

	pin := a.Pin()
	dc.SetColor(color.RGBA{R: 0xaa, G: 0x33, B: 0x33, A: 0xff})
	dc.DrawCircle(pin.X, pin.Y, pinRadius)
	dc.Fill()

	if a.Name != "" {
		dc.SetColor(color.RGBA{R: 0xf2, G: 0xec, B: 0xdf, A: 0xff})
		dc.DrawStringAnchored(a.Name, rect.X+rect.Width/2, rect.Y+rect.Height+14, 0.5, 0.5)
	}
}

func anchorImage(a *board.Anchor) goimage.Image {
	if a.Images != nil && a.Images.Full != nil {
		return a.Images.Full
	}
	return yimage.Placeholder(int(a.Rect.Width), int(a.Rect.Height))
}

func drawLegend(dc *gg.Context, b *board.Board, minX, minY float64, titleFace, itemFace font.Face) {
	keys := b.Keys()
	x := minX + 20
	y := minY + 20
	rowH := 22.0
	boxW := 190.0
	boxH := 16 + rowH*float64(len(keys)+1)

	dc.SetColor(color.RGBA{R: 0x1d, G: 0x1a, B: 0x16, A: 0xe0})
	dc.DrawRectangle(x, y, boxW, boxH)
	dc.Fill()

	dc.SetFontFace(titleFace)
	dc.SetColor(color.RGBA{R: 0xf2, G: 0xec, B: 0xdf, A: 0xff})
	dc.DrawString("Color Key", x+12, y+rowH)

	dc.SetFontFace(itemFace)
	for i, k := range keys {
		rowY := y + rowH*float64(i+2)
		if c, ok := ParseHexColor(k.Color); ok {
			dc.SetColor(c)
		} else {
			dc.SetColor(color.White)
		}
		dc.DrawRectangle(x+12, rowY-10, 14, 14)
		dc.Fill()
		dc.SetColor(color.RGBA{R: 0xf2, G: 0xec, B: 0xdf, A: 0xff})
		dc.DrawString(k.Name, x+34, rowY+2)
	}
}

// ParseHexColor reads a #rrggbb string.
func ParseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
}
