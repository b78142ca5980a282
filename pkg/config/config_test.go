package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termrast.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.Resolve(Flags{})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 45.0, cfg.FOV)
	assert.Equal(t, 3, cfg.StatusRows)
	assert.Equal(t, [3]uint8{20, 20, 30}, cfg.Background)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
model = "teapot.obj"
texture = "teapot.png"
fps = 60
binning = true
background = [0, 0, 0]
light = [0.0, 1.0, 0.0]
fov = 60.0
screenshot_format = "webp"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "teapot.obj", cfg.Model)
	assert.Equal(t, "teapot.png", cfg.Texture)
	assert.Equal(t, 60, cfg.FPS)
	assert.True(t, cfg.Binning)
	assert.Equal(t, [3]uint8{}, cfg.Background)
	assert.Equal(t, [3]float64{0, 1, 0}, cfg.Light)
	assert.Equal(t, 60.0, cfg.FOV)
	assert.Equal(t, "webp", cfg.ScreenshotFormat)

	// Keys missing from the file keep their defaults.
	assert.Equal(t, 100.0, cfg.Far)
	assert.Equal(t, 16, cfg.TileSize)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "fps = 30\nshading = \"flat\"\n"},
		{"wrong type", "fps = \"fast\"\n"},
		{"syntax", "fps = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config: parse")
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Model = "file.obj"
	cfg.FPS = 24
	cfg.ScreenshotDir = ""

	cfg.Resolve(Flags{
		Model:   "flag.glb",
		Binning: true,
		Format:  ".BMP",
	})

	assert.Equal(t, "flag.glb", cfg.Model, "flag overrides file")
	assert.Equal(t, 24, cfg.FPS, "zero flag keeps file value")
	assert.True(t, cfg.Binning)
	assert.Equal(t, "bmp", cfg.ScreenshotFormat)
	assert.Equal(t, ".", cfg.ScreenshotDir)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"fov too wide", func(c *Config) { c.FOV = 180 }},
		{"near behind far", func(c *Config) { c.Near, c.Far = 10, 1 }},
		{"zero near", func(c *Config) { c.Near = 0 }},
		{"negative status rows", func(c *Config) { c.StatusRows = -1 }},
		{"negative texture size", func(c *Config) { c.MaxTextureSize = -5 }},
		{"zero light", func(c *Config) { c.Light = [3]float64{} }},
		{"gif screenshots", func(c *Config) { c.ScreenshotFormat = "gif" }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
