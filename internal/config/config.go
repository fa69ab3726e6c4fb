// Package config provides Viper-based configuration loading for the fight
// simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the frame clock and tuning source settings.
type SimulationConfig struct {
	// FrameInterval is the tick cadence for headless drivers.
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	// MaxFrameDelta caps the simulation time charged for a single frame,
	// so stalls slow the fight down instead of teleporting it forward.
	MaxFrameDelta time.Duration `mapstructure:"max_frame_delta"`
	// Preset names the built-in base tuning: "default" or "relaxed".
	Preset string `mapstructure:"preset"`
	// TuningDir is an optional directory of tuning overlay files applied
	// over the preset in name order. Empty means the preset alone.
	TuningDir string `mapstructure:"tuning_dir"`
	// WatchTuning reloads the overlays when files in TuningDir change.
	WatchTuning bool `mapstructure:"watch_tuning"`
	// Seed seeds the randomness source for reproducible fights; 0 draws
	// from the crypto source instead.
	Seed int64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Default returns the built-in configuration used when no file is given.
//
// Postcondition: the returned Config validates.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Simulation: SimulationConfig{
			FrameInterval: 16 * time.Millisecond,
			MaxFrameDelta: 250 * time.Millisecond,
			Preset:        "default",
		},
	}
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.FrameInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.frame_interval must be > 0, got %s", s.FrameInterval))
	}
	if s.MaxFrameDelta < s.FrameInterval {
		errs = append(errs, fmt.Sprintf("simulation.max_frame_delta (%s) must be >= simulation.frame_interval (%s)",
			s.MaxFrameDelta, s.FrameInterval))
	}
	validPresets := map[string]bool{"default": true, "relaxed": true}
	if !validPresets[s.Preset] {
		errs = append(errs, fmt.Sprintf("simulation.preset must be one of [default, relaxed], got %q", s.Preset))
	}
	if s.WatchTuning && s.TuningDir == "" {
		errs = append(errs, "simulation.watch_tuning requires simulation.tuning_dir")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with REVENANT_ prefix
	v.SetEnvPrefix("REVENANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.frame_interval", "16ms")
	v.SetDefault("simulation.max_frame_delta", "250ms")
	v.SetDefault("simulation.preset", "default")
	v.SetDefault("simulation.tuning_dir", "")
	v.SetDefault("simulation.watch_tuning", false)
	v.SetDefault("simulation.seed", 0)
}
