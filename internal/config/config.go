package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/tomz197/kartrace/internal/input"
	"github.com/tomz197/kartrace/internal/loop"
	"github.com/tomz197/kartrace/internal/object"
)

// Backends the local binary can draw with.
const (
	BackendANSI  = "ansi"
	BackendTcell = "tcell"
)

const (
	configName = "kartrace"
	envPrefix  = "KARTRACE"
)

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("config: invalid settings")

// Settings is the typed view of kartrace.yaml plus KARTRACE_* overrides.
type Settings struct {
	Players      int             `mapstructure:"players"`
	Backend      string          `mapstructure:"backend"`
	Resolution   string          `mapstructure:"resolution"`
	LogFile      string          `mapstructure:"logFile"`
	LogLevel     string          `mapstructure:"logLevel"`
	Audio        bool            `mapstructure:"audio"`
	HoldDuration time.Duration   `mapstructure:"holdDuration"`
	MaxCols      int             `mapstructure:"maxCols"`
	MaxRows      int             `mapstructure:"maxRows"`
	Assets       AssetSettings   `mapstructure:"assets"`
	Vehicle      VehicleSettings `mapstructure:"vehicle"`
	Keys         []KeySettings   `mapstructure:"keys"`
}

// AssetSettings holds image paths. Empty paths select the builtin images.
type AssetSettings struct {
	Track string   `mapstructure:"track"`
	Cars  []string `mapstructure:"cars"`
}

// VehicleSettings mirrors object.Tuning.
type VehicleSettings struct {
	TopSpeed  float64 `mapstructure:"topSpeed"`
	TurnRate  float64 `mapstructure:"turnRate"`
	AccelRate float64 `mapstructure:"accelRate"`
}

// KeySettings names one player's keys.
type KeySettings struct {
	Left     string `mapstructure:"left"`
	Right    string `mapstructure:"right"`
	Forward  string `mapstructure:"forward"`
	Backward string `mapstructure:"backward"`
}

func setDefaults(v *viper.Viper) {
	tuning := object.DefaultTuning()

	v.SetDefault("players", 2)
	v.SetDefault("backend", BackendANSI)
	v.SetDefault("resolution", "")
	v.SetDefault("logFile", "kartrace.log")
	v.SetDefault("logLevel", "info")
	v.SetDefault("audio", true)
	v.SetDefault("holdDuration", input.DefaultHoldDuration)
	v.SetDefault("maxCols", 0)
	v.SetDefault("maxRows", 0)

	v.SetDefault("assets.track", "")
	v.SetDefault("assets.cars", []string{"", ""})

	v.SetDefault("vehicle.topSpeed", tuning.TopSpeed)
	v.SetDefault("vehicle.turnRate", tuning.TurnRate)
	v.SetDefault("vehicle.accelRate", tuning.AccelRate)

	defaults := loop.DefaultBindings()
	keys := make([]map[string]any, len(defaults))
	for i, b := range defaults {
		keys[i] = map[string]any{
			"left":     b.Left.String(),
			"right":    b.Right.String(),
			"forward":  b.Forward.String(),
			"backward": b.Backward.String(),
		}
	}
	v.SetDefault("keys", keys)
}

// Load reads settings from path, or from kartrace.yaml in the working directory
// or $HOME/.config/kartrace when path is empty. A missing search-path file is
// not an error; a missing explicit path is.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kartrace")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings without touching the filesystem.
func (s Settings) Validate() error {
	if s.Players < loop.MinPlayers || s.Players > loop.MaxPlayers {
		return fmt.Errorf("%w: players must be %d or %d, got %d", ErrInvalidSettings, loop.MinPlayers, loop.MaxPlayers, s.Players)
	}
	switch s.Backend {
	case BackendANSI, BackendTcell:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidSettings, s.Backend)
	}
	if s.Resolution != "" {
		if _, err := ParseResolution(s.Resolution); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if s.HoldDuration <= 0 {
		return fmt.Errorf("%w: holdDuration must be positive", ErrInvalidSettings)
	}
	if s.MaxCols < 0 || s.MaxRows < 0 {
		return fmt.Errorf("%w: maxCols and maxRows must not be negative", ErrInvalidSettings)
	}
	if len(s.Assets.Cars) < s.Players {
		return fmt.Errorf("%w: %d car images for %d players", ErrInvalidSettings, len(s.Assets.Cars), s.Players)
	}
	if err := s.Tuning().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if _, err := s.Bindings(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// Tuning returns the vehicle constants.
func (s Settings) Tuning() object.Tuning {
	return object.Tuning{
		TopSpeed:  s.Vehicle.TopSpeed,
		TurnRate:  s.Vehicle.TurnRate,
		AccelRate: s.Vehicle.AccelRate,
	}
}

// Bindings resolves the key names of the first Players entries.
func (s Settings) Bindings() ([]loop.Binding, error) {
	if len(s.Keys) < s.Players {
		return nil, fmt.Errorf("%d key bindings for %d players", len(s.Keys), s.Players)
	}
	bindings := make([]loop.Binding, s.Players)
	for i := range bindings {
		ks := s.Keys[i]
		b := &bindings[i]
		for _, f := range []struct {
			name string
			dst  *input.Key
		}{
			{ks.Left, &b.Left},
			{ks.Right, &b.Right},
			{ks.Forward, &b.Forward},
			{ks.Backward, &b.Backward},
		} {
			k, err := input.ParseKey(f.name)
			if err != nil {
				return nil, fmt.Errorf("player %d: %w", i+1, err)
			}
			*f.dst = k
		}
	}
	if err := loop.ValidateBindings(bindings); err != nil {
		return nil, err
	}
	return bindings, nil
}

// Level returns the parsed log level, falling back to info.
func (s Settings) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
