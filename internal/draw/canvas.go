package draw

import (
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
)

// black is the colour a cleared canvas holds.
var black = color.RGBA{A: 0xff}

// cell is the pair of sub-pixels one terminal cell shows.
type cell struct {
	top, bottom color.RGBA
}

// Canvas is a truecolor raster with 2x vertical resolution using half-block characters.
// Callers draw in logical coordinates; the canvas scales them to terminal pixels.
type Canvas struct {
	termWidth      int          // Terminal columns used by the canvas
	termHeight     int          // Terminal rows used by the canvas
	subPixelHeight int          // termHeight * 2
	pixels         []color.RGBA // Flat slice: [y * termWidth + x]
	shown          []cell       // What the terminal currently displays; nil forces a full redraw

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets used to centre the canvas.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte
}

// NewCanvas creates a canvas with a 1:1 mapping between logical units and pixels.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	c.Clear()
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
// It reports whether the pixel geometry changed.
func (c *Canvas) Resize(termWidth, termHeight int) bool {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)

	changed := termWidth != c.termWidth || termHeight != c.termHeight
	if changed {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]color.RGBA, c.subPixelHeight*termWidth)
		c.shown = nil
	}

	c.scaleX = float64(c.termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
	return changed
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.shown = nil
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render repaint every cell.
func (c *Canvas) ForceRedraw() {
	c.shown = nil
}

// Clear paints every pixel black.
func (c *Canvas) Clear() {
	for i := range c.pixels {
		c.pixels[i] = black
	}
}

// Pixel returns the colour at terminal pixel (x, y), or black when out of range.
func (c *Canvas) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return black
	}
	return c.pixels[y*c.termWidth+x]
}

// Cell returns the top and bottom colours of a terminal cell.
func (c *Canvas) Cell(col, row int) (top, bottom color.RGBA) {
	return c.Pixel(col, row*2), c.Pixel(col, row*2+1)
}

// SetFloat paints the pixel under logical point (x, y).
func (c *Canvas) SetFloat(x, y float64, col color.RGBA) {
	px := int(math.Floor(x * c.scaleX))
	py := int(math.Floor(y * c.scaleY))
	if px >= 0 && px < c.termWidth && py >= 0 && py < c.subPixelHeight {
		c.pixels[py*c.termWidth+px] = col
	}
}

// Blit stretches the sprite over the whole logical area.
func (c *Canvas) Blit(s *Sprite) {
	if s.Empty() {
		return
	}
	sw, sh := s.Size()
	for py := 0; py < c.subPixelHeight; py++ {
		ly := (float64(py) + 0.5) / c.scaleY
		sy := int(ly * float64(sh) / c.logicalHeight)
		row := py * c.termWidth
		for px := 0; px < c.termWidth; px++ {
			lx := (float64(px) + 0.5) / c.scaleX
			sx := int(lx * float64(sw) / c.logicalWidth)
			c.pixels[row+px] = blend(c.pixels[row+px], s.At(sx, sy))
		}
	}
}

// BlitRotated draws the sprite scaled into dst and rotated clockwise on screen by
// angle degrees around the centre of dst.
func (c *Canvas) BlitRotated(s *Sprite, dst Rect, angle float64, flip Flip) {
	if s.Empty() || dst.W <= 0 || dst.H <= 0 {
		return
	}
	sw, sh := s.Size()
	cx, cy := dst.Center()
	halfW, halfH := float64(dst.W)/2, float64(dst.H)/2
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	// Bounding box of the rotated rectangle in pixel space.
	reach := math.Hypot(halfW, halfH)
	x0 := max(int(math.Floor((cx-reach)*c.scaleX)), 0)
	x1 := min(int(math.Ceil((cx+reach)*c.scaleX)), c.termWidth)
	y0 := max(int(math.Floor((cy-reach)*c.scaleY)), 0)
	y1 := min(int(math.Ceil((cy+reach)*c.scaleY)), c.subPixelHeight)

	for py := y0; py < y1; py++ {
		dy := (float64(py)+0.5)/c.scaleY - cy
		for px := x0; px < x1; px++ {
			dx := (float64(px)+0.5)/c.scaleX - cx

			// Inverse rotation back into the unrotated destination rectangle.
			u := dx*cos + dy*sin + halfW
			v := -dx*sin + dy*cos + halfH
			if u < 0 || v < 0 || u >= float64(dst.W) || v >= float64(dst.H) {
				continue
			}
			switch flip {
			case FlipHorizontal:
				u = float64(dst.W) - u
			case FlipVertical:
				v = float64(dst.H) - v
			}

			sx := int(u * float64(sw) / float64(dst.W))
			sy := int(v * float64(sh) / float64(dst.H))
			i := py*c.termWidth + px
			c.pixels[i] = blend(c.pixels[i], s.At(sx, sy))
		}
	}
}

// Render writes the cells that changed since the last Render as half-block
// characters with 24-bit foreground (top) and background (bottom) colours.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()

	full := len(c.shown) != c.termWidth*c.termHeight
	if full {
		c.shown = make([]cell, c.termWidth*c.termHeight)
		c.renderBuf.Grow(c.termWidth * c.termHeight * 24) // Estimate ~24 bytes per cell
	}

	var fg, bg color.RGBA
	styled := false
	lastRow, lastCol := -1, -1

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !full && c.shown[idx] == cur {
				continue
			}
			c.shown[idx] = cur

			if row != lastRow || col != lastCol+1 {
				c.moveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			}
			if !styled || cur.top != fg {
				c.writeColor(38, cur.top)
				fg = cur.top
			}
			if !styled || cur.bottom != bg {
				c.writeColor(48, cur.bottom)
				bg = cur.bottom
			}
			styled = true
			c.renderBuf.WriteRune(BlockUpperHalf)
			lastRow, lastCol = row, col
		}
	}

	if !styled {
		return nil
	}
	c.renderBuf.WriteString("\033[0m")
	_, err := io.WriteString(w, c.renderBuf.String())
	return err
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

// writeColor appends an SGR truecolor sequence; layer is 38 (fg) or 48 (bg).
func (c *Canvas) writeColor(layer int, col color.RGBA) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(layer), 10))
	c.renderBuf.WriteString(";2;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.R), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.G), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.B), 10))
	c.renderBuf.WriteByte('m')
}

// RenderBorder draws a box border around the canvas area when the terminal
// is larger than the canvas on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return nil
	}

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*6 + c.termHeight*2*12)
	line := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			buf.WriteString(cursorTo(left, top) + "┌" + line + "┐")
			buf.WriteString(cursorTo(left, bottom) + "└" + line + "┘")
		} else {
			buf.WriteString(cursorTo(c.offsetCol+1, top) + line)
			buf.WriteString(cursorTo(c.offsetCol+1, bottom) + line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			// No horizontal borders, side bars span full canvas height
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			buf.WriteString(cursorTo(left, row) + "│" + cursorTo(right, row) + "│")
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func cursorTo(col, row int) string {
	return "\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H"
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the terminal column count used by the canvas.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the terminal row count used by the canvas.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// FitTerm sizes a canvas for a terminal so the logical area keeps its aspect
// ratio (one cell is one pixel wide and two pixels tall). maxCols and maxRows
// cap the render area when positive. The canvas is centred; offsets are 0-based.
func FitTerm(termWidth, termHeight, maxCols, maxRows int, logicalWidth, logicalHeight float64) (cols, rows, offsetCol, offsetRow int) {
	availW, availH := termWidth, termHeight
	if maxCols > 0 {
		availW = min(availW, maxCols)
	}
	if maxRows > 0 {
		availH = min(availH, maxRows)
	}
	if availW < 1 || availH < 1 || logicalWidth <= 0 || logicalHeight <= 0 {
		return 1, 1, 0, 0
	}

	scale := math.Min(float64(availW)/logicalWidth, float64(availH*2)/logicalHeight)
	cols = max(int(logicalWidth*scale), 1)
	rows = max(int(math.Ceil(logicalHeight*scale/2)), 1)
	offsetCol = max((termWidth-cols)/2, 0)
	offsetRow = max((termHeight-rows)/2, 0)
	return cols, rows, offsetCol, offsetRow
}
