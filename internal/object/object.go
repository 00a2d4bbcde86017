// Package object holds the race entities and their per-frame kinematics.
package object

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomz197/kartrace/internal/draw"
)

// Renderer is the part of a drawing surface an object needs to draw itself.
type Renderer interface {
	BlitRotated(sprite *draw.Sprite, dst draw.Rect, angle float64, flip draw.Flip)
}

var (
	// ErrInvalidSprite is returned when a vehicle is built without a drawable sprite.
	ErrInvalidSprite = errors.New("object: vehicle sprite is missing or empty")
	// ErrInvalidTuning is returned for non-finite or non-positive tuning values.
	ErrInvalidTuning = errors.New("object: invalid vehicle tuning")
)

// Tuning holds the constants a vehicle is built with.
type Tuning struct {
	TopSpeed  float64 // Forward reference speed in logical pixels per frame
	TurnRate  float64 // Degrees per frame while a turn key is held
	AccelRate float64 // Speed change per frame while a throttle key is held
}

// DefaultTuning returns the stock kart handling.
func DefaultTuning() Tuning {
	return Tuning{
		TopSpeed:  3.0,
		TurnRate:  4.0,
		AccelRate: 0.1,
	}
}

// Validate checks that every value is finite, speeds are positive and the turn rate is not negative.
func (t Tuning) Validate() error {
	for name, v := range map[string]float64{"top speed": t.TopSpeed, "turn rate": t.TurnRate, "accel rate": t.AccelRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidTuning, name, v)
		}
	}
	if t.TopSpeed <= 0 || t.AccelRate <= 0 || t.TurnRate < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidTuning, t)
	}
	return nil
}
