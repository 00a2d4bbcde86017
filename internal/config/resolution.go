package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tomz197/kartrace/internal/physics"
)

// ErrNoResolution is returned when the prompt's input ends before a valid choice.
var ErrNoResolution = errors.New("config: no resolution selected")

// Resolution is the logical size of the race surface.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Presets offered by the prompt, in menu order.
var Presets = []Resolution{
	{Width: 1280, Height: 720},
	{Width: 1600, Height: 900},
	{Width: 1920, Height: 1080},
	{Width: 2560, Height: 1440},
}

// DefaultResolution is used when nothing is configured and no prompt runs.
var DefaultResolution = Presets[0]

// Start points tuned on two presets. Others scale the first.
var (
	startHD     = physics.Vec2{X: 345, Y: 480}
	startFullHD = physics.Vec2{X: 580, Y: 785}
)

const playerSpacing = 40.0

// ParseResolution accepts a preset number ("1".."4") or "WIDTHxHEIGHT".
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(Presets) {
			return Resolution{}, fmt.Errorf("resolution preset %d out of range 1-%d", n, len(Presets))
		}
		return Presets[n-1], nil
	}

	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, fmt.Errorf("malformed resolution %q", s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("malformed resolution %q", s)
	}
	return Resolution{Width: width, Height: height}, nil
}

// PromptResolution prints the preset menu to w and reads a choice from r,
// asking again until a valid preset number is entered.
func PromptResolution(r io.Reader, w io.Writer) (Resolution, error) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintln(w, "Select resolution:")
		for i, p := range Presets {
			fmt.Fprintf(w, "  %d) %s\n", i+1, p)
		}
		fmt.Fprint(w, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return Resolution{}, fmt.Errorf("%w: %w", ErrNoResolution, err)
			}
			return Resolution{}, ErrNoResolution
		}

		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && n >= 1 && n <= len(Presets) {
			return Presets[n-1], nil
		}
		fmt.Fprintf(w, "Invalid choice %q, enter a number from 1 to %d.\n", scanner.Text(), len(Presets))
	}
}

// StartPositions returns the top-left start point of each player.
// Player 2 lines up below player 1.
func StartPositions(res Resolution, players int) []physics.Vec2 {
	first := startHD.Scale(float64(res.Width)/1280, float64(res.Height)/720)
	switch res {
	case Presets[0]:
		first = startHD
	case Presets[2]:
		first = startFullHD
	}

	gap := playerSpacing * float64(res.Height) / 720
	positions := make([]physics.Vec2, players)
	for i := range positions {
		positions[i] = first.Add(physics.Vec2{Y: gap * float64(i)})
	}
	return positions
}
