// Package loop provides the fixed-timestep frame loop that drives the race.
package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/kartrace/internal/draw"
	"github.com/tomz197/kartrace/internal/input"
	"github.com/tomz197/kartrace/internal/object"
)

var (
	// ErrNoSurface is returned when a game is built without a drawing target.
	ErrNoSurface = errors.New("loop: surface is required")
	// ErrNoInput is returned when a game is built without an input source.
	ErrNoInput = errors.New("loop: input source is required")
	// ErrNoBackground is returned when the track sprite is missing.
	ErrNoBackground = errors.New("loop: background sprite is required")
	// ErrPlayerCount is returned for fewer than MinPlayers or more than MaxPlayers players.
	ErrPlayerCount = errors.New("loop: unsupported number of players")
	// ErrNoVehicle is returned when a player is given a nil vehicle.
	ErrNoVehicle = errors.New("loop: player has no vehicle")
)

// Surface is the render target the loop draws each frame onto.
type Surface interface {
	object.Renderer
	Clear()
	Blit(sprite *draw.Sprite)
	Present() error
}

// Input supplies discrete events and the held-key snapshot.
type Input interface {
	Events() []input.Event
	State() input.KeySet
}

// FrameObserver is notified after every presented frame.
type FrameObserver interface {
	ObserveFrame(vehicles []*object.Vehicle)
}

// Player pairs a vehicle with the keys that drive it.
type Player struct {
	Vehicle *object.Vehicle
	Binding Binding
}

// Options configures a Game. Clock defaults to SystemClock and FrameInterval
// to the 60 FPS interval.
type Options struct {
	Surface       Surface
	Input         Input
	Clock         Clock
	Background    *draw.Sprite
	Players       []Player
	FrameInterval time.Duration
	Observer      FrameObserver
}

// Game runs the Input -> Update -> Draw cycle for up to two vehicles.
type Game struct {
	surface    Surface
	input      Input
	clock      Clock
	background *draw.Sprite
	players    []Player
	vehicles   []*object.Vehicle
	interval   time.Duration
	observer   FrameObserver
	metrics    *frameMetrics

	state     State
	lastFrame time.Time
	frames    uint64
}

// New validates opts and returns a Game ready to Run.
func New(opts Options) (*Game, error) {
	if opts.Surface == nil {
		return nil, ErrNoSurface
	}
	if opts.Input == nil {
		return nil, ErrNoInput
	}
	if opts.Background == nil || opts.Background.Empty() {
		return nil, ErrNoBackground
	}
	if n := len(opts.Players); n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("%w: %d", ErrPlayerCount, n)
	}

	bindings := make([]Binding, len(opts.Players))
	vehicles := make([]*object.Vehicle, len(opts.Players))
	for i, p := range opts.Players {
		if p.Vehicle == nil {
			return nil, fmt.Errorf("%w: player %d", ErrNoVehicle, i+1)
		}
		bindings[i] = p.Binding
		vehicles[i] = p.Vehicle
	}
	if err := ValidateBindings(bindings); err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = FrameInterval
	}

	metrics, err := newFrameMetrics()
	if err != nil {
		return nil, err
	}

	return &Game{
		surface:    opts.Surface,
		input:      opts.Input,
		clock:      clock,
		background: opts.Background,
		players:    append([]Player(nil), opts.Players...),
		vehicles:   vehicles,
		interval:   interval,
		observer:   opts.Observer,
		metrics:    metrics,
		state:      StateRunning,
	}, nil
}

// State reports whether the loop is running or has stopped.
func (g *Game) State() State {
	return g.state
}

// Frames returns the number of frames presented so far.
func (g *Game) Frames() uint64 {
	return g.frames
}

// Vehicles returns the vehicles in player order.
func (g *Game) Vehicles() []*object.Vehicle {
	return g.vehicles
}

// Run iterates frames until a quit is observed or presenting fails.
// A stopped game cannot be restarted.
func (g *Game) Run() error {
	g.lastFrame = g.clock.Now()
	for g.state == StateRunning {
		if err := g.iterate(); err != nil {
			g.state = StateStopped
			return err
		}
	}
	return nil
}

func (g *Game) iterate() error {
	// ===== TIMING =====
	now := g.clock.Now()
	elapsed := now.Sub(g.lastFrame)
	if elapsed < g.interval {
		g.metrics.frameThrottled()
		g.clock.Sleep(g.interval - elapsed)
		return nil
	}
	g.lastFrame = now

	// ===== INPUT =====
	if g.quitRequested() {
		g.state = StateStopped
		return nil
	}
	keys := g.input.State()

	// ===== UPDATE =====
	g.update(keys)

	// ===== DRAW =====
	return g.drawFrame()
}

// quitRequested drains every pending event and reports whether any asked to quit.
func (g *Game) quitRequested() bool {
	quit := false
	for _, ev := range g.input.Events() {
		switch {
		case ev.Type == input.EventQuit:
			quit = true
		case ev.Type == input.EventKeyDown && ev.Key == input.KeyEscape:
			quit = true
		}
	}
	return quit
}

// update maps held keys onto vehicle operations. Vehicles without throttle coast.
func (g *Game) update(keys input.KeySet) {
	for _, p := range g.players {
		b, v := p.Binding, p.Vehicle

		left, right := keys.Held(b.Left), keys.Held(b.Right)
		if left || right {
			v.Turn(left, right)
		}

		throttle := false
		if keys.Held(b.Forward) {
			v.AccelerateForward()
			throttle = true
		}
		if keys.Held(b.Backward) {
			v.AccelerateBackward()
			throttle = true
		}
		if !throttle {
			v.Coast()
		}
	}
}

func (g *Game) drawFrame() error {
	g.surface.Clear()
	g.surface.Blit(g.background)
	for _, v := range g.vehicles {
		v.Render(g.surface)
	}
	if err := g.surface.Present(); err != nil {
		return fmt.Errorf("presenting frame %d: %w", g.frames+1, err)
	}

	g.frames++
	g.metrics.framePresented()
	if g.observer != nil {
		g.observer.ObserveFrame(g.vehicles)
	}
	return nil
}
