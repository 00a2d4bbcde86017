// Package audio plays an engine tone per kart whose pitch follows its speed.
package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/kartrace/internal/object"
)

const (
	SampleRate = beep.SampleRate(44100)

	idleHz  = 55.0  // Pitch at rest
	rangeHz = 165.0 // Added pitch at full forward speed
	idleAmp = 0.25  // Loudness at rest, relative to full speed
)

// Engine is a beep.Streamer mixing one sawtooth per kart. Player 1 is panned
// left and player 2 right. Speeds are published from the frame loop and read
// on the speaker goroutine.
type Engine struct {
	rate     beep.SampleRate
	maxSpeed float64
	speeds   []atomic.Uint64 // float64 bits of |speed|
	phases   []float64

	mu      sync.Mutex
	started bool
}

// NewEngine returns an engine for players karts. maxSpeed maps to the top of
// the pitch range.
func NewEngine(rate beep.SampleRate, players int, maxSpeed float64) *Engine {
	return &Engine{
		rate:     rate,
		maxSpeed: maxSpeed,
		speeds:   make([]atomic.Uint64, players),
		phases:   make([]float64, players),
	}
}

// ObserveFrame publishes the vehicles' current speeds.
func (e *Engine) ObserveFrame(vehicles []*object.Vehicle) {
	for i, v := range vehicles {
		if i >= len(e.speeds) {
			break
		}
		e.speeds[i].Store(math.Float64bits(math.Abs(v.Speed)))
	}
}

// throttle returns player i's speed as a fraction of maxSpeed, clamped to [0, 1].
func (e *Engine) throttle(i int) float64 {
	if e.maxSpeed <= 0 {
		return 0
	}
	return math.Min(math.Float64frombits(e.speeds[i].Load())/e.maxSpeed, 1)
}

// Stream fills samples with the mixed engine tones. It never ends.
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	n = len(e.phases)
	for i := range samples {
		samples[i] = [2]float64{}
	}
	if n == 0 {
		return len(samples), true
	}

	for p := range e.phases {
		t := e.throttle(p)
		freq := idleHz + rangeHz*t
		amp := (idleAmp + (1-idleAmp)*t) / float64(n)
		left, right := amp, amp
		if n > 1 {
			if p == 0 {
				right *= 0.4
			} else {
				left *= 0.4
			}
		}

		phase := e.phases[p]
		step := freq / float64(e.rate)
		for i := range samples {
			val := 2.0 * (phase - 0.5)
			samples[i][0] += val * left
			samples[i][1] += val * right
			phase += step
			phase -= math.Floor(phase)
		}
		e.phases[p] = phase
	}
	return len(samples), true
}

// Err always returns nil.
func (e *Engine) Err() error { return nil }

// Start initialises the speaker and begins playback at volume (a base-2
// exponent, 0 is unchanged). Failure leaves the engine usable as a silent observer.
func (e *Engine) Start(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	if err := speaker.Init(e.rate, e.rate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(&effects.Volume{
		Streamer: e,
		Base:     2,
		Volume:   volume,
	})
	e.started = true
	return nil
}

// Close stops playback and releases the speaker.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}
	speaker.Clear()
	speaker.Close()
	e.started = false
}
