package object

import (
	"math"

	"github.com/tomz197/kartrace/internal/draw"
	"github.com/tomz197/kartrace/internal/physics"
)

const (
	// forwardScale multiplies both the forward acceleration and the forward
	// speed cap. Reverse uses neither, so forward tops out at 2*TopSpeed while
	// reverse stops at TopSpeed/2.
	forwardScale = 2.0
	coastFactor  = 0.9
)

// Vehicle is a player-controlled kart. Forward motion is encoded as negative speed.
type Vehicle struct {
	Pos     physics.Vec2 // Top-left corner of the sprite, logical pixels
	Heading float64      // Degrees, 0 = +x, counter-clockwise on screen
	Speed   float64      // Signed; negative moves forward

	topSpeed  float64
	turnRate  float64
	accelRate float64

	sprite *draw.Sprite // Owned by the asset set
}

// NewVehicle places a stopped vehicle at pos facing +x.
func NewVehicle(sprite *draw.Sprite, pos physics.Vec2, t Tuning) (*Vehicle, error) {
	if sprite.Empty() {
		return nil, ErrInvalidSprite
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Vehicle{
		Pos:       pos,
		topSpeed:  t.TopSpeed,
		turnRate:  t.TurnRate,
		accelRate: t.AccelRate,
		sprite:    sprite,
	}, nil
}

// Tuning returns the constants the vehicle was built with.
func (v *Vehicle) Tuning() Tuning {
	return Tuning{TopSpeed: v.topSpeed, TurnRate: v.turnRate, AccelRate: v.accelRate}
}

// Sprite returns the borrowed sprite.
func (v *Vehicle) Sprite() *draw.Sprite {
	return v.sprite
}

// Turn rotates left and/or right by the turn rate. Both at once cancel out.
func (v *Vehicle) Turn(left, right bool) {
	if left {
		v.Heading += v.turnRate
	}
	if right {
		v.Heading -= v.turnRate
	}
}

// AccelerateForward pushes speed towards -TopSpeed*2 and moves.
func (v *Vehicle) AccelerateForward() {
	v.Speed = math.Max(v.Speed-v.accelRate*forwardScale, -v.topSpeed*forwardScale)
	v.IntegratePosition()
}

// AccelerateBackward pushes speed towards +TopSpeed/2 and moves.
func (v *Vehicle) AccelerateBackward() {
	v.Speed = math.Min(v.Speed+v.accelRate, v.topSpeed/2)
	v.IntegratePosition()
}

// Coast decays speed by 10% and moves. Speed approaches zero but never snaps to it.
func (v *Vehicle) Coast() {
	v.Speed *= coastFactor
	v.IntegratePosition()
}

// IntegratePosition advances the position by one frame at the current speed and heading.
func (v *Vehicle) IntegratePosition() {
	d := physics.Displacement(v.Heading, v.Speed)
	v.Pos.X += d.X
	v.Pos.Y += d.Y
}

// Rect returns where the sprite is drawn this frame.
func (v *Vehicle) Rect() draw.Rect {
	w, h := v.sprite.Size()
	return draw.Rect{
		X: int(math.Round(v.Pos.X)),
		Y: int(math.Round(v.Pos.Y)),
		W: w,
		H: h,
	}
}

// Render draws the sprite at its position, rotated to the heading.
func (v *Vehicle) Render(r Renderer) {
	r.BlitRotated(v.sprite, v.Rect(), -v.Heading, draw.FlipNone)
}
