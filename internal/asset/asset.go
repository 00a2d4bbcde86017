// Package asset loads and owns the images a race is drawn with.
package asset

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"github.com/tomz197/kartrace/internal/draw"
)

var (
	ErrDecode    = errors.New("asset: cannot decode image")
	ErrNoCars    = errors.New("asset: no car images requested")
	ErrBadBounds = errors.New("asset: surface size must be positive")
)

// Options names the images to load. Empty paths select builtin images drawn
// for a Width x Height surface.
type Options struct {
	TrackPath string
	CarPaths  []string
	Width     int
	Height    int
}

// Set owns the track and one sprite per car for the life of the process.
type Set struct {
	Track *draw.Sprite
	Cars  []*draw.Sprite
}

// Load resolves every image in opts. Any unreadable, undecodable or empty
// image fails the whole set.
func Load(opts Options) (*Set, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadBounds, opts.Width, opts.Height)
	}
	if len(opts.CarPaths) == 0 {
		return nil, ErrNoCars
	}

	set := &Set{Cars: make([]*draw.Sprite, len(opts.CarPaths))}

	var err error
	if opts.TrackPath == "" {
		set.Track, err = draw.NewSprite(Track(opts.Width, opts.Height))
	} else {
		set.Track, err = LoadFile(opts.TrackPath)
	}
	if err != nil {
		return nil, fmt.Errorf("track: %w", err)
	}

	for i, path := range opts.CarPaths {
		if path == "" {
			set.Cars[i], err = draw.NewSprite(Kart(opts.Width, i))
		} else {
			set.Cars[i], err = LoadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("car %d: %w", i+1, err)
		}
	}
	return set, nil
}

// LoadFile decodes a PNG, JPEG or GIF file into a sprite.
func LoadFile(path string) (*draw.Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads one image from r.
func Decode(r io.Reader) (*draw.Sprite, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	s, err := draw.NewSprite(img)
	if err != nil {
		return nil, fmt.Errorf("%s image: %w", format, err)
	}
	return s, nil
}
