package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/tomz197/kartrace/internal/asset"
	"github.com/tomz197/kartrace/internal/audio"
	"github.com/tomz197/kartrace/internal/config"
	"github.com/tomz197/kartrace/internal/logging"
	"github.com/tomz197/kartrace/internal/loop"
	"github.com/tomz197/kartrace/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "race error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load(config.GetEnv("KARTRACE_CONFIG", ""))
	if err != nil {
		return err
	}

	// Log to a file so messages do not tear the frame.
	logger := logging.New(io.Discard, settings.Level())
	if settings.LogFile != "" {
		var f *os.File
		logger, f, err = logging.NewFile(settings.LogFile, settings.Level())
		if err != nil {
			return err
		}
		defer f.Close()
	}

	res, err := resolution(settings)
	if err != nil {
		return err
	}
	logger.Info("settings loaded", "players", settings.Players, "backend", settings.Backend, "resolution", res)

	assets, err := asset.Load(asset.Options{
		TrackPath: settings.Assets.Track,
		CarPaths:  settings.Assets.Cars[:settings.Players],
		Width:     res.Width,
		Height:    res.Height,
	})
	if err != nil {
		return fmt.Errorf("loading assets: %w", err)
	}

	opts := session.Options{
		Settings:   settings,
		Resolution: res,
		Assets:     assets,
		Logger:     logger,
	}

	if settings.Audio {
		engine := audio.NewEngine(audio.SampleRate, settings.Players, settings.Tuning().TopSpeed*2)
		if err := engine.Start(-1); err != nil {
			// Non-fatal, the race runs without sound
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer engine.Close()
			opts.Observer = engine
		}
	}

	switch settings.Backend {
	case config.BackendTcell:
		return runTcell(opts)
	default:
		return runANSI(opts)
	}
}

// resolution uses the configured size, prompts in two-player mode, and
// otherwise falls back to the smallest preset.
func resolution(s config.Settings) (config.Resolution, error) {
	switch {
	case s.Resolution != "":
		return config.ParseResolution(s.Resolution)
	case s.Players == loop.MaxPlayers:
		return config.PromptResolution(os.Stdin, os.Stdout)
	default:
		return config.DefaultResolution, nil
	}
}

func runANSI(opts session.Options) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	s, err := session.NewANSI(os.Stdin, os.Stdout, opts)
	if err != nil {
		return err
	}
	return s.Run()
}

func runTcell(opts session.Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising screen: %w", err)
	}
	defer screen.Fini()

	s, err := session.NewTcell(screen, opts)
	if err != nil {
		return err
	}
	return s.Run()
}
