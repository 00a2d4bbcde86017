// Package session wires one race to one terminal: a raw byte stream (local
// terminal or SSH channel) or a tcell screen.
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/tomz197/kartrace/internal/asset"
	"github.com/tomz197/kartrace/internal/config"
	"github.com/tomz197/kartrace/internal/draw"
	"github.com/tomz197/kartrace/internal/input"
	"github.com/tomz197/kartrace/internal/loop"
	"github.com/tomz197/kartrace/internal/object"
)

// ErrNoAssets is returned when a session is built without images.
var ErrNoAssets = errors.New("session: assets are required")

// Options configures a session.
type Options struct {
	Settings     config.Settings
	Resolution   config.Resolution
	Assets       *asset.Set
	Logger       *log.Logger
	TermSizeFunc draw.TermSizeFunc // ANSI sessions only; nil reads the local terminal
	Observer     loop.FrameObserver
	IdleTimeout  time.Duration // 0 disables
	Clock        loop.Clock
	Username     string
}

// Session runs one race until the player quits, idles out or the terminal goes away.
type Session struct {
	game     *loop.Game
	writer   io.Writer    // ANSI sessions
	screen   tcell.Screen // tcell sessions
	logger   *log.Logger
	username string
	stop     func() // stops the input reader
}

// NewANSI creates a session reading keys from r and drawing escape sequences to w.
func NewANSI(r io.Reader, w io.Writer, opts Options) (*Session, error) {
	surface, err := draw.NewSurface(draw.NewANSIPresenter(w), surfaceOptions(opts, opts.TermSizeFunc))
	if err != nil {
		return nil, err
	}
	stream := input.StartStream(r, opts.Settings.HoldDuration)

	s, err := newSession(surface, stream, opts)
	if err != nil {
		stream.Close()
		return nil, err
	}
	s.writer = w
	s.stop = stream.Close
	return s, nil
}

// NewTcell creates a session on an initialised tcell screen. The caller owns
// the screen and finalises it after Run.
func NewTcell(screen tcell.Screen, opts Options) (*Session, error) {
	surface, err := draw.NewSurface(draw.NewTcellPresenter(screen), surfaceOptions(opts, draw.TcellSizeFunc(screen)))
	if err != nil {
		return nil, err
	}
	source := input.StartTcell(screen, opts.Settings.HoldDuration)

	s, err := newSession(surface, source, opts)
	if err != nil {
		source.Close()
		return nil, err
	}
	s.screen = screen
	s.stop = source.Close
	return s, nil
}

func surfaceOptions(opts Options, size draw.TermSizeFunc) draw.SurfaceOptions {
	return draw.SurfaceOptions{
		LogicalWidth:  opts.Resolution.Width,
		LogicalHeight: opts.Resolution.Height,
		MaxCols:       opts.Settings.MaxCols,
		MaxRows:       opts.Settings.MaxRows,
		TermSizeFunc:  size,
	}
}

func newSession(surface loop.Surface, in loop.Input, opts Options) (*Session, error) {
	if opts.Assets == nil {
		return nil, ErrNoAssets
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = loop.SystemClock{}
	}

	players, err := NewPlayers(opts.Settings, opts.Resolution, opts.Assets)
	if err != nil {
		return nil, err
	}
	if opts.IdleTimeout > 0 {
		in = newIdleInput(in, clock, opts.IdleTimeout, logger)
	}

	game, err := loop.New(loop.Options{
		Surface:    surface,
		Input:      in,
		Clock:      clock,
		Background: opts.Assets.Track,
		Players:    players,
		Observer:   opts.Observer,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		game:     game,
		logger:   logger,
		username: opts.Username,
	}, nil
}

// NewPlayers places one vehicle per configured player on its start point.
func NewPlayers(s config.Settings, res config.Resolution, assets *asset.Set) ([]loop.Player, error) {
	bindings, err := s.Bindings()
	if err != nil {
		return nil, err
	}
	if len(assets.Cars) < len(bindings) {
		return nil, fmt.Errorf("%d car sprites for %d players", len(assets.Cars), len(bindings))
	}

	starts := config.StartPositions(res, len(bindings))
	players := make([]loop.Player, len(bindings))
	for i, b := range bindings {
		v, err := object.NewVehicle(assets.Cars[i], starts[i], s.Tuning())
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		players[i] = loop.Player{Vehicle: v, Binding: b}
	}
	return players, nil
}

// Game exposes the running loop.
func (s *Session) Game() *loop.Game {
	return s.game
}

// Run blocks until the race stops. The input reader is stopped on return.
func (s *Session) Run() error {
	if s.stop != nil {
		defer s.stop()
	}
	if s.writer != nil {
		draw.HideCursor(s.writer)
		defer draw.ShowCursor(s.writer)
		defer draw.ClearScreen(s.writer)
	}
	if s.screen != nil {
		s.screen.HideCursor()
	}

	s.logger.Info("race started", "user", s.username, "players", len(s.game.Vehicles()))
	err := s.game.Run()
	if err != nil {
		s.logger.Error("race aborted", "user", s.username, "frames", s.game.Frames(), "err", err)
		return err
	}
	s.logger.Info("race finished", "user", s.username, "frames", s.game.Frames())
	return nil
}
