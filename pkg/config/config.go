// Package config loads termrast settings from a TOML file and merges them
// with command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("config: invalid value")

// Asset paths used when neither the file nor the command line names one.
const (
	DefaultModel   = "assets/vokselia_spawn/vokselia_spawn.obj"
	DefaultTexture = "assets/vokselia_spawn/vokselia_spawn.png"
)

// Screenshot formats accepted by screenshot_format.
var screenshotFormats = []string{"png", "bmp", "webp"}

// Config holds viewer, renderer and asset settings.
type Config struct {
	// Assets
	Model          string `toml:"model"`
	Texture        string `toml:"texture"`
	MaxTextureSize int    `toml:"max_texture_size"`
	Watch          bool   `toml:"watch"`

	// Renderer
	FPS        int        `toml:"fps"`
	Workers    int        `toml:"workers"`
	TileSize   int        `toml:"tile_size"`
	Binning    bool       `toml:"binning"`
	Background [3]uint8   `toml:"background"`
	Light      [3]float64 `toml:"light"`

	// Camera
	FOV         float64 `toml:"fov"`
	Near        float64 `toml:"near"`
	Far         float64 `toml:"far"`
	MoveSpeed   float64 `toml:"move_speed"`
	RotateSpeed float64 `toml:"rotate_speed"`

	// Display
	StatusRows       int    `toml:"status_rows"`
	ScreenshotFormat string `toml:"screenshot_format"`
	ScreenshotDir    string `toml:"screenshot_dir"`

	// Logging
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// Default returns the settings used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Model:            DefaultModel,
		Texture:          DefaultTexture,
		FPS:              30,
		TileSize:         16,
		Background:       [3]uint8{20, 20, 30},
		Light:            [3]float64{0.5, 1, 0.8},
		FOV:              45,
		Near:             0.1,
		Far:              100,
		MoveSpeed:        0.15,
		RotateSpeed:      0.06,
		StatusRows:       3,
		ScreenshotFormat: "png",
		ScreenshotDir:    ".",
		LogLevel:         "info",
	}
}

// Load reads a TOML config file on top of Default.
// Keys that do not map to a Config field are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Model    string
	Texture  string
	FPS      int
	Workers  int
	TileSize int
	Binning  bool
	Watch    bool
	LogFile  string
	LogLevel string
	Format   string
}

// Resolve applies CLI flags and fills in values that depend on the host.
// Flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.TileSize > 0 {
		c.TileSize = flags.TileSize
	}
	if flags.Binning {
		c.Binning = true
	}
	if flags.Watch {
		c.Watch = true
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Format != "" {
		c.ScreenshotFormat = flags.Format
	}

	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
	c.ScreenshotFormat = strings.ToLower(strings.TrimPrefix(c.ScreenshotFormat, "."))
}

// Validate reports the first setting that the viewer cannot run with.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile_size must be positive, got %d", ErrInvalid, c.TileSize)
	case c.FOV <= 0 || c.FOV >= 180:
		return fmt.Errorf("%w: fov must be in (0, 180), got %g", ErrInvalid, c.FOV)
	case c.Near <= 0 || c.Far <= c.Near:
		return fmt.Errorf("%w: need 0 < near < far, got near=%g far=%g", ErrInvalid, c.Near, c.Far)
	case c.StatusRows < 0:
		return fmt.Errorf("%w: status_rows must not be negative, got %d", ErrInvalid, c.StatusRows)
	case c.MaxTextureSize < 0:
		return fmt.Errorf("%w: max_texture_size must not be negative, got %d", ErrInvalid, c.MaxTextureSize)
	case c.Light == [3]float64{}:
		return fmt.Errorf("%w: light direction must be non-zero", ErrInvalid)
	}

	if !slices.Contains(screenshotFormats, c.ScreenshotFormat) {
		return fmt.Errorf("%w: screenshot_format %q (want one of %s)",
			ErrInvalid, c.ScreenshotFormat, strings.Join(screenshotFormats, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
