// Package draw renders sprites into a scaled terminal raster and presents it
// either as raw ANSI output or through a tcell screen.
package draw

import (
	"errors"
	"image"
	"image/color"
	imagedraw "image/draw"
)

// BlockUpperHalf is drawn in every cell: the foreground colour paints the top
// pixel and the background colour the bottom one.
const BlockUpperHalf = '▀'

// ErrEmptySprite is returned when an image has no pixels to draw.
var ErrEmptySprite = errors.New("draw: sprite has no pixels")

// Rect is a destination rectangle in logical coordinates.
type Rect struct {
	X, Y int
	W, H int
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// Flip mirrors a sprite while blitting.
type Flip int

const (
	FlipNone Flip = iota
	FlipHorizontal
	FlipVertical
)

// Sprite is a decoded, immutable image ready for blitting.
type Sprite struct {
	img *image.NRGBA
}

// NewSprite copies img into a sprite. Images without pixels are rejected.
func NewSprite(img image.Image) (*Sprite, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptySprite
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	imagedraw.Draw(dst, dst.Bounds(), img, b.Min, imagedraw.Src)
	return &Sprite{img: dst}, nil
}

// Size returns the sprite's intrinsic width and height.
func (s *Sprite) Size() (w, h int) {
	if s == nil || s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Empty reports whether the sprite cannot be drawn.
func (s *Sprite) Empty() bool {
	w, h := s.Size()
	return w == 0 || h == 0
}

// At returns the pixel at (x, y), clamped to the sprite bounds.
func (s *Sprite) At(x, y int) color.NRGBA {
	w, h := s.Size()
	x = clampInt(x, 0, w-1)
	y = clampInt(y, 0, h-1)
	return s.img.NRGBAAt(x, y)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// blend mixes src over dst using src alpha.
func blend(dst color.RGBA, src color.NRGBA) color.RGBA {
	switch src.A {
	case 0:
		return dst
	case 0xff:
		return color.RGBA{R: src.R, G: src.G, B: src.B, A: 0xff}
	}
	a := uint32(src.A)
	mix := func(d, s uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(0xff-a)) / 0xff)
	}
	return color.RGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 0xff}
}
