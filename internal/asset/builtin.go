package asset

import (
	"image"
	"image/color"
)

var (
	grass       = color.NRGBA{R: 46, G: 125, B: 50, A: 255}
	asphalt     = color.NRGBA{R: 84, G: 84, B: 90, A: 255}
	kerbRed     = color.NRGBA{R: 200, G: 40, B: 40, A: 255}
	white       = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	black       = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	windows     = color.NRGBA{R: 150, G: 210, B: 240, A: 255}
	transparent = color.NRGBA{}
	carPaint    = []color.NRGBA{
		{R: 220, G: 30, B: 30, A: 255},
		{R: 30, G: 90, B: 220, A: 255},
	}
)

// Oval circuit proportions, as fractions of the surface.
const (
	outerRX = 0.45
	outerRY = 0.42
	innerRX = 0.28
	innerRY = 0.22
	kerb    = 0.04 // ring width drawn as kerb on each edge, in normalised radius
)

// Track draws an oval circuit on grass with red and white kerbs and a
// chequered start line on the left straight.
func Track(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	cx, cy := float64(width)/2, float64(height)/2
	ox, oy := outerRX*float64(width), outerRY*float64(height)
	ix, iy := innerRX*float64(width), innerRY*float64(height)
	stripe := max(width/64, 1)
	startX := int(float64(width) * 0.27)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			outer := (dx*dx)/(ox*ox) + (dy*dy)/(oy*oy)
			inner := (dx*dx)/(ix*ix) + (dy*dy)/(iy*iy)

			c := grass
			switch {
			case outer > 1 || inner < 1:
			case outer > 1-kerb || inner < 1+kerb:
				if ((x+y)/stripe)%2 == 0 {
					c = kerbRed
				} else {
					c = white
				}
			case dy > 0 && x >= startX && x < startX+2*stripe:
				if ((x-startX)/stripe+y/stripe)%2 == 0 {
					c = white
				} else {
					c = black
				}
			default:
				c = asphalt
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Kart draws a top-down kart sized for a surface of the given width. The
// nose points left, the direction a kart moves at heading zero under throttle.
// player selects the paint colour.
func Kart(surfaceWidth, player int) *image.NRGBA {
	w := max(surfaceWidth/24, 8)
	h := max(surfaceWidth/48, 4)
	paint := carPaint[player%len(carPaint)]

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	wheelW, wheelH := max(w/5, 1), max(h/4, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inWheelCol := x < wheelW+w/10 && x >= w/10 || x >= w-wheelW-w/10 && x < w-w/10
			inWheelRow := y < wheelH || y >= h-wheelH

			c := transparent
			switch {
			case inWheelCol && inWheelRow:
				c = black
			case inWheelRow:
			case x >= w/4 && x < w/4+w/6:
				c = windows
			case x < w/16:
				c = white
			default:
				c = paint
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
