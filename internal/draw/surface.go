package draw

import "fmt"

// Surface is the drawing target of a race: a canvas sized to the terminal and a
// presenter that shows it. It re-fits the canvas on every Clear so terminal
// resizes take effect on the next frame.
type Surface struct {
	canvas    *Canvas
	presenter Presenter
	sizeFunc  TermSizeFunc
	maxCols   int
	maxRows   int
}

// SurfaceOptions configures a Surface.
type SurfaceOptions struct {
	LogicalWidth  int
	LogicalHeight int
	MaxCols       int // 0 means no cap
	MaxRows       int // 0 means no cap
	TermSizeFunc  TermSizeFunc
}

// NewSurface creates a surface drawing logical coordinates onto the terminal.
// It fails when the terminal size cannot be read, since nothing would be drawn.
func NewSurface(p Presenter, opts SurfaceOptions) (*Surface, error) {
	sizeFunc := opts.TermSizeFunc
	if sizeFunc == nil {
		sizeFunc = DefaultTermSizeFunc
	}
	s := &Surface{
		canvas:    NewScaledCanvas(1, 1, float64(opts.LogicalWidth), float64(opts.LogicalHeight)),
		presenter: p,
		sizeFunc:  sizeFunc,
		maxCols:   opts.MaxCols,
		maxRows:   opts.MaxRows,
	}
	if err := s.fit(); err != nil {
		return nil, fmt.Errorf("draw: reading terminal size: %w", err)
	}
	return s, nil
}

// Canvas exposes the underlying raster.
func (s *Surface) Canvas() *Canvas {
	return s.canvas
}

// fit resizes the canvas to the current terminal, keeping the logical aspect
// ratio. On error the canvas keeps its previous geometry.
func (s *Surface) fit() error {
	termWidth, termHeight, err := s.sizeFunc()
	if err != nil {
		return err
	}
	cols, rows, offsetCol, offsetRow := FitTerm(termWidth, termHeight, s.maxCols, s.maxRows,
		s.canvas.LogicalWidth(), s.canvas.LogicalHeight())

	resized := s.canvas.Resize(cols, rows)
	moved := offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow()
	s.canvas.SetOffset(offsetCol, offsetRow)
	if resized || moved {
		s.presenter.Reset()
	}
	return nil
}

// Clear starts a frame: fits the canvas to the terminal and paints it black.
func (s *Surface) Clear() {
	_ = s.fit()
	s.canvas.Clear()
}

// Blit stretches a sprite over the whole surface.
func (s *Surface) Blit(sprite *Sprite) {
	s.canvas.Blit(sprite)
}

// BlitRotated draws a sprite into dst rotated clockwise by angle degrees.
func (s *Surface) BlitRotated(sprite *Sprite, dst Rect, angle float64, flip Flip) {
	s.canvas.BlitRotated(sprite, dst, angle, flip)
}

// Present shows the frame.
func (s *Surface) Present() error {
	return s.presenter.Present(s.canvas)
}
