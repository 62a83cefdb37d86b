package boardcanvas

import (
	"image"
	"image/color"
)

func fill(output *image.RGBA, col color.RGBA) {
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = col.R
		output.Pix[i+1] = col.G
		output.Pix[i+2] = col.B
		output.Pix[i+3] = col.A
	}
}

func fillRect(output *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(output.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			output.SetRGBA(x, y, col)
		}
	}
}

// drawRect strokes the rectangle border with the given thickness, growing
// inward.
func drawRect(output *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		inner := image.Rect(r.Min.X+t, r.Min.Y+t, r.Max.X-t, r.Max.Y-t)
		if inner.Empty() {
			return
		}
		for x := inner.Min.X; x < inner.Max.X; x++ {
			setPixel(output, x, inner.Min.Y, col)
			setPixel(output, x, inner.Max.Y-1, col)
		}
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			setPixel(output, inner.Min.X, y, col)
			setPixel(output, inner.Max.X-1, y, col)
		}
	}
}

// drawLine draws a thick line using integer Bresenham stepping.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	half := thickness / 2
	x, y := x1, y1
	for {
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				setPixel(output, x+tx, y+ty, col)
			}
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func fillCircle(output *image.RGBA, cx, cy, radius int, col color.RGBA) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				setPixel(output, cx+x, cy+y, col)
			}
		}
	}
}

// fillSquare draws a size x size square centered on (cx, cy).
func fillSquare(output *image.RGBA, cx, cy, size int, col color.RGBA) {
	half := size / 2
	fillRect(output, image.Rect(cx-half, cy-half, cx-half+size, cy-half+size), col)
}

func setPixel(output *image.RGBA, x, y int, col color.RGBA) {
	if !image.Pt(x, y).In(output.Bounds()) {
		return
	}
	output.SetRGBA(x, y, col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// glyphPatterns holds 3x5 pixel patterns, one row per 3-bit value, for the
// characters the canvas labels use.
var glyphPatterns = map[rune][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

func glyph(ch rune) [5]uint8 {
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := glyphPatterns[ch]; ok {
		return pattern
	}
	return glyphPatterns['.']
}

// drawText renders a short label with the 3x5 bitmap font at the given
// integer scale.
func drawText(output *image.RGBA, text string, x, y int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	cx := x
	for _, ch := range text {
		pattern := glyph(ch)
		for row := 0; row < 5; row++ {
			for bit := 0; bit < 3; bit++ {
				if pattern[row]&(1<<(2-bit)) == 0 {
					continue
				}
				for sy := 0; sy < scale; sy++ {
					for sx := 0; sx < scale; sx++ {
						setPixel(output, cx+bit*scale+sx, y+row*scale+sy, col)
					}
				}
			}
		}
		cx += 4 * scale
	}
}
