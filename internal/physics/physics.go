// Package physics provides the screen-space motion law shared by vehicles.
package physics

import "math"

// Vec2 is a point or offset in screen space (+y points down).
type Vec2 struct {
	X, Y float64
}

// Add returns v translated by o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale multiplies each axis independently.
func (v Vec2) Scale(sx, sy float64) Vec2 {
	return Vec2{X: v.X * sx, Y: v.Y * sy}
}

// ScreenRadians converts a heading in degrees to the angle used for motion on a
// +y-down screen. The sign flip makes a growing heading turn counter-clockwise
// as seen by the player.
func ScreenRadians(heading float64) float64 {
	return heading * math.Pi / -180.0
}

// Displacement returns how far a body at the given heading travels in one step
// at the given signed speed. The explicit conversions keep the products rounded
// so callers adding the result never get a fused multiply-add.
func Displacement(heading, speed float64) Vec2 {
	radians := ScreenRadians(heading)
	return Vec2{
		X: float64(speed * math.Cos(radians)),
		Y: float64(speed * math.Sin(radians)),
	}
}
