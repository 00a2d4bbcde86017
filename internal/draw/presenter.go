package draw

import (
	"image/color"
	"io"

	"github.com/gdamore/tcell/v2"
)

// Presenter puts a finished canvas on a terminal.
type Presenter interface {
	// Present shows the canvas.
	Present(c *Canvas) error
	// Reset is called after the canvas geometry changed.
	Reset()
}

// ANSIPresenter writes the canvas as ANSI escape sequences. It is used for raw
// local terminals and SSH sessions, where nothing else owns the screen.
type ANSIPresenter struct {
	cw    *ChunkWriter
	reset bool
}

// NewANSIPresenter creates a presenter writing to w.
func NewANSIPresenter(w io.Writer) *ANSIPresenter {
	return &ANSIPresenter{cw: NewChunkWriter(w), reset: true}
}

// Reset schedules a clear screen and full repaint for the next frame.
func (p *ANSIPresenter) Reset() {
	p.reset = true
}

// Present writes the changed cells and flushes them in network-sized chunks.
func (p *ANSIPresenter) Present(c *Canvas) error {
	if p.reset {
		ClearScreen(p.cw)
		c.ForceRedraw()
		if err := c.RenderBorder(p.cw); err != nil {
			return err
		}
		p.reset = false
	}
	if err := c.Render(p.cw); err != nil {
		return err
	}
	return p.cw.Flush()
}

// TcellPresenter copies the canvas into a tcell screen.
type TcellPresenter struct {
	screen tcell.Screen
}

// NewTcellPresenter creates a presenter for an initialised screen.
func NewTcellPresenter(screen tcell.Screen) *TcellPresenter {
	return &TcellPresenter{screen: screen}
}

// Reset clears the screen so stale cells outside the canvas disappear.
func (p *TcellPresenter) Reset() {
	p.screen.Clear()
}

// Present sets every canvas cell as an upper half block and shows the screen.
func (p *TcellPresenter) Present(c *Canvas) error {
	offCol, offRow := c.OffsetCol(), c.OffsetRow()
	for row := 0; row < c.TerminalHeight(); row++ {
		for col := 0; col < c.TerminalWidth(); col++ {
			top, bottom := c.Cell(col, row)
			style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bottom))
			p.screen.SetContent(col+offCol, row+offRow, BlockUpperHalf, nil, style)
		}
	}
	p.screen.Show()
	return nil
}

// TcellSizeFunc reports the size of a tcell screen.
func TcellSizeFunc(screen tcell.Screen) TermSizeFunc {
	return func() (int, int, error) {
		w, h := screen.Size()
		return w, h, nil
	}
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
