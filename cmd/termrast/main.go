// termrast - Terminal Software Rasterizer
// Renders a textured, lit OBJ or GLB mesh on the CPU and shows it in the
// terminal with half-block characters.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Q/E         - Move down/up
//	I/K, ↑/↓    - Look up/down
//	J/L, ←/→    - Look left/right
//	R           - Reset camera
//	P           - Save screenshot
//	Esc, Ctrl+C - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/termrast/pkg/assets"
	"github.com/taigrr/termrast/pkg/config"
	"github.com/taigrr/termrast/pkg/math3d"
	"github.com/taigrr/termrast/pkg/parallel"
	"github.com/taigrr/termrast/pkg/render"
)

var (
	configPath  = flag.String("config", "", "Path to TOML config file")
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG/BMP/TGA/WebP)")
	targetFPS   = flag.Int("fps", 0, "Target FPS (default 30)")
	workers     = flag.Int("workers", 0, "Render worker count (default GOMAXPROCS)")
	tileSize    = flag.Int("tile", 0, "Tile size in pixels (default 16)")
	binning     = flag.Bool("bin", false, "Bin triangles per tile row before rasterizing")
	watch       = flag.Bool("watch", false, "Reload model and texture when they change on disk")
	logFile     = flag.String("log", "", "Write logs to this file")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	shotFormat  = flag.String("format", "", "Screenshot format: png, bmp or webp")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "termrast - Terminal Software Rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termrast [options] [model.obj|model.glb] [texture]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Move and strafe\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Move down/up\n")
		fmt.Fprintf(os.Stderr, "  I/J/K/L     - Look around (arrow keys too)\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  P           - Save screenshot\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file and the command line.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	flags := config.Flags{
		Texture:  *texturePath,
		FPS:      *targetFPS,
		Workers:  *workers,
		TileSize: *tileSize,
		Binning:  *binning,
		Watch:    *watch,
		LogFile:  *logFile,
		LogLevel: *logLevel,
		Format:   *shotFormat,
	}
	if flag.NArg() >= 1 {
		flags.Model = flag.Arg(0)
	}
	if flag.NArg() >= 2 {
		flags.Texture = flag.Arg(1)
	}
	cfg.Resolve(flags)

	return cfg, cfg.Validate()
}

// setupLogging points the render logger at the configured file. Without
// one, logs are discarded so they never draw over the image.
func setupLogging(cfg config.Config) (func(), error) {
	if cfg.LogFile == "" {
		return func() {}, nil
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	render.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() {
		render.SetLogger(nil)
		f.Close()
	}, nil
}

func assetOptions(cfg config.Config) assets.Options {
	return assets.Options{
		Model:          cfg.Model,
		Texture:        cfg.Texture,
		MaxTextureSize: cfg.MaxTextureSize,
	}
}

func run(cfg config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log := render.Logger()

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	bundle, err := assets.Load(ctx, assetOptions(cfg))
	if err != nil {
		return err
	}

	var watcher *assets.Watcher
	if cfg.Watch {
		watcher, err = assets.NewWatcher(cfg.Model, cfg.Texture)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	// Create renderer
	pool := parallel.NewPool(cfg.Workers)
	defer pool.Close()

	fbWidth, fbHeight := render.TerminalSize(width, height, cfg.StatusRows)
	bg := render.RGB(cfg.Background[0], cfg.Background[1], cfg.Background[2])
	fb := render.NewFramebufferWithBackground(fbWidth, fbHeight, bg)
	renderer := render.NewRenderer(fb,
		render.WithPool(pool),
		render.WithTileSize(cfg.TileSize),
		render.WithBinning(cfg.Binning),
	)
	defer renderer.Close()
	renderer.SetTexture(bundle.Texture)
	renderer.SetLightDir(math3d.V3(cfg.Light[0], cfg.Light[1], cfg.Light[2]))

	// Create camera
	camera := render.NewCamera()
	camera.SetFOV(math3d.Radians(cfg.FOV))
	camera.SetClipPlanes(cfg.Near, cfg.Far)
	camera.SetViewport(fbWidth, fbHeight)

	controller := NewController(camera, cfg.FPS, cfg.MoveSpeed, cfg.RotateSpeed)

	// Events are read on their own goroutine and handled between frames, so
	// the render loop owns every piece of viewer state.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	status := Status{Vertices: bundle.Mesh.VertexCount()}
	shots := 0
	frame := NewFrameState(time.Now())
	targetDuration := time.Second / time.Duration(cfg.FPS)

	resize := func(w, h int) {
		width, height = max(1, w), max(1, h)
		term.Erase()
		term.Resize(width, height)
		fbWidth, fbHeight = render.TerminalSize(width, height, cfg.StatusRows)
		renderer.Resize(fbWidth, fbHeight)
		camera.SetViewport(fbWidth, fbHeight)
	}

	screenshot := func() {
		name := fmt.Sprintf("screenshot_%03d.%s", shots, cfg.ScreenshotFormat)
		path := filepath.Join(cfg.ScreenshotDir, name)
		if err := fb.SaveImage(path); err != nil {
			log.Error("save screenshot", "path", path, "err", err)
			status.Message, status.Warning = fmt.Sprintf("Screenshot failed: %v", err), true
			return
		}
		shots++
		log.Info("saved screenshot", "path", path)
		status.Message, status.Warning = "Saved: "+path, false
	}

	reload := func(changed []string) {
		b, err := assets.Load(ctx, assetOptions(cfg))
		if err != nil {
			log.Warn("reload failed", "changed", changed, "err", err)
			status.Message, status.Warning = fmt.Sprintf("Reload failed: %v", err), true
			return
		}
		bundle = b
		renderer.SetTexture(bundle.Texture)
		status.Vertices = bundle.Mesh.VertexCount()
		status.Message, status.Warning = fmt.Sprintf("Reloaded in %s", b.LoadTime.Round(time.Millisecond)), false
	}

	for {
		now := time.Now()

		// Handle input
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					resize(ev.Width, ev.Height)
				case uv.KeyPressEvent:
					switch a := actionFor(ev); a {
					case ActionQuit:
						cancel()
						return nil
					case ActionScreenshot:
						screenshot()
					default:
						controller.Apply(a)
					}
				}
			default:
				break drain
			}
		}

		if watcher != nil {
			if changed := watcher.Drain(); len(changed) > 0 {
				reload(changed)
			}
		}

		controller.Update()

		// Render
		model := bundle.Mesh.ModelMatrix()
		view := camera.ViewMatrix()
		modelView := view.Mul(model)
		renderer.RenderMesh(bundle.Mesh, camera.ProjectionMatrix().Mul(modelView), modelView)

		// Display
		imageRows := fbHeight / 2
		fb.Draw(term, uv.Rect(0, 0, width, imageRows))
		status.FPS = frame.FPS
		status.Width, status.Height = fbWidth, fbHeight
		status.Position = camera.Position
		DrawStatus(term, uv.Rect(0, imageRows, width, height-imageRows), status)

		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		frame.Tick(time.Now())

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(targetDuration - elapsed):
			}
		}
	}
}
