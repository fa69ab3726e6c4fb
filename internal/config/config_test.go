package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
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

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
simulation:
  frame_interval: 33ms
  max_frame_delta: 500ms
  preset: relaxed
  tuning_dir: ./tuning
  watch_tuning: true
  seed: 42
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 33*time.Millisecond, cfg.Simulation.FrameInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.MaxFrameDelta)
	assert.Equal(t, "relaxed", cfg.Simulation.Preset)
	assert.Equal(t, "./tuning", cfg.Simulation.TuningDir)
	assert.True(t, cfg.Simulation.WatchTuning)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sparse.yaml")
	err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 16*time.Millisecond, cfg.Simulation.FrameInterval)
	assert.Equal(t, "default", cfg.Simulation.Preset)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644)
	require.NoError(t, err)

	t.Setenv("REVENANT_LOGGING_LEVEL", "error")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("logging.format", "console")
	v.Set("simulation.preset", "relaxed")

	cfg, err := LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "relaxed", cfg.Simulation.Preset)

	v.Set("logging.level", "trace")
	_, err = LoadFromViper(v)
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateFrameInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.FrameInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Simulation.FrameInterval = -time.Millisecond
	assert.Error(t, cfg.Validate())
}

func TestValidateMaxFrameDeltaCoversInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.MaxFrameDelta = cfg.Simulation.FrameInterval - time.Millisecond
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Simulation.MaxFrameDelta = cfg.Simulation.FrameInterval
	assert.NoError(t, cfg.Validate())
}

func TestValidatePreset(t *testing.T) {
	for _, preset := range []string{"default", "relaxed"} {
		cfg := validConfig()
		cfg.Simulation.Preset = preset
		assert.NoError(t, cfg.Validate(), "preset %q should be valid", preset)
	}
	cfg := validConfig()
	cfg.Simulation.Preset = "nightmare"
	assert.Error(t, cfg.Validate())
}

func TestValidateWatchRequiresTuningDir(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.WatchTuning = true
	cfg.Simulation.TuningDir = ""
	assert.Error(t, cfg.Validate())

	cfg.Simulation.TuningDir = "./tuning"
	assert.NoError(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidFrameIntervals(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		intervalMS := rapid.Int64Range(1, 1000).Draw(t, "intervalMS")
		slackMS := rapid.Int64Range(0, 1000).Draw(t, "slackMS")
		cfg := validConfig()
		cfg.Simulation.FrameInterval = time.Duration(intervalMS) * time.Millisecond
		cfg.Simulation.MaxFrameDelta = time.Duration(intervalMS+slackMS) * time.Millisecond
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid frame clock %dms/%dms rejected: %v", intervalMS, intervalMS+slackMS, err)
		}
	})
}

func TestPropertyDeltaBelowIntervalRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		intervalMS := rapid.Int64Range(2, 1000).Draw(t, "intervalMS")
		deltaMS := rapid.Int64Range(1, intervalMS-1).Draw(t, "deltaMS")
		cfg := validConfig()
		cfg.Simulation.FrameInterval = time.Duration(intervalMS) * time.Millisecond
		cfg.Simulation.MaxFrameDelta = time.Duration(deltaMS) * time.Millisecond
		if cfg.Validate() == nil {
			t.Fatalf("max_frame_delta %dms below interval %dms accepted", deltaMS, intervalMS)
		}
	})
}
