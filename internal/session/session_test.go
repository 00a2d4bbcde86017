package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/kartrace/internal/asset"
	"github.com/tomz197/kartrace/internal/config"
	"github.com/tomz197/kartrace/internal/input"
	"github.com/tomz197/kartrace/internal/loop"
	"github.com/tomz197/kartrace/internal/physics"
)

func testSettings(players int) config.Settings {
	return config.Settings{
		Players:      players,
		Backend:      config.BackendANSI,
		LogLevel:     "info",
		HoldDuration: input.DefaultHoldDuration,
		Assets:       config.AssetSettings{Cars: []string{"", ""}},
		Vehicle:      config.VehicleSettings{TopSpeed: 3, TurnRate: 4, AccelRate: 0.1},
		Keys: []config.KeySettings{
			{Left: "a", Right: "d", Forward: "w", Backward: "s"},
			{Left: "left", Right: "right", Forward: "up", Backward: "down"},
		},
	}
}

func testAssets(t *testing.T, res config.Resolution) *asset.Set {
	t.Helper()
	set, err := asset.Load(asset.Options{CarPaths: []string{"", ""}, Width: res.Width, Height: res.Height})
	require.NoError(t, err)
	return set
}

func fixedSize() (int, int, error) { return 80, 24, nil }

func TestNewPlayersPlacesKartsOnStartLine(t *testing.T) {
	res := config.Presets[0]
	players, err := NewPlayers(testSettings(2), res, testAssets(t, res))
	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.Equal(t, physics.Vec2{X: 345, Y: 480}, players[0].Vehicle.Pos)
	assert.Equal(t, physics.Vec2{X: 345, Y: 520}, players[1].Vehicle.Pos)
	assert.Equal(t, loop.DefaultBindings()[0], players[0].Binding)
	assert.Equal(t, loop.DefaultBindings()[1], players[1].Binding)
	assert.Equal(t, 3.0, players[0].Vehicle.Tuning().TopSpeed)
}

func TestNewPlayersSinglePlayer(t *testing.T) {
	res := config.Presets[0]
	players, err := NewPlayers(testSettings(1), res, testAssets(t, res))
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestNewPlayersNeedsSprites(t *testing.T) {
	res := config.Presets[0]
	set := testAssets(t, res)
	set.Cars = set.Cars[:1]

	_, err := NewPlayers(testSettings(2), res, set)
	assert.Error(t, err)
}

func TestNewANSIRequiresAssets(t *testing.T) {
	_, err := NewANSI(strings.NewReader(""), &bytes.Buffer{}, Options{
		Settings:     testSettings(2),
		Resolution:   config.Presets[0],
		TermSizeFunc: fixedSize,
	})
	assert.ErrorIs(t, err, ErrNoAssets)
}

func TestNewANSIFailsWithoutTerminalSize(t *testing.T) {
	res := config.Presets[0]
	var out bytes.Buffer
	noTTY := errors.New("not a terminal")

	_, err := NewANSI(strings.NewReader(""), &out, Options{
		Settings:     testSettings(2),
		Resolution:   res,
		Assets:       testAssets(t, res),
		TermSizeFunc: func() (int, int, error) { return 0, 0, noTTY },
	})
	assert.ErrorIs(t, err, noTTY)
	assert.Empty(t, out.String(), "nothing is drawn")
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type queuedInput struct{ batches [][]input.Event }

func (q *queuedInput) Events() []input.Event {
	if len(q.batches) == 0 {
		return nil
	}
	ev := q.batches[0]
	q.batches = q.batches[1:]
	return ev
}

func (q *queuedInput) State() input.KeySet { return input.KeySet{} }

func TestIdleInputQuitsAfterTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	keyDown := []input.Event{{Type: input.EventKeyDown, Key: input.KeyUp}}
	q := &queuedInput{batches: [][]input.Event{nil, keyDown, nil, nil}}
	idle := newIdleInput(q, clock, time.Minute, log.New(&bytes.Buffer{}))

	clock.now = clock.now.Add(30 * time.Second)
	assert.Empty(t, idle.Events())

	clock.now = clock.now.Add(40 * time.Second)
	assert.Equal(t, keyDown, idle.Events(), "a key resets the idle timer")

	clock.now = clock.now.Add(59 * time.Second)
	assert.Empty(t, idle.Events())

	clock.now = clock.now.Add(2 * time.Second)
	assert.Equal(t, []input.Event{{Type: input.EventQuit}}, idle.Events())
}

func TestIdleTimeoutStopsRace(t *testing.T) {
	res := config.Presets[0]
	clock := &fakeClock{now: time.Unix(0, 0)}
	var out bytes.Buffer

	s, err := newSession(&nullSurface{}, &queuedInput{}, Options{
		Settings:    testSettings(1),
		Resolution:  res,
		Assets:      testAssets(t, res),
		Clock:       clock,
		IdleTimeout: time.Second,
	})
	require.NoError(t, err)
	s.writer = &out

	require.NoError(t, s.Run())

	// One frame per interval until the idle second has passed.
	assert.InDelta(t, float64(loop.TargetFPS), float64(s.Game().Frames()), 1)
}
