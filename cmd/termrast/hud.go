package main

import (
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/taigrr/termrast/pkg/math3d"
	"github.com/taigrr/termrast/pkg/render"
)

const keyHelp = "[WASD] Move  [QE] Up/Down  [IJKL] Look  [R] Reset  [P] Screenshot  [Esc] Quit"

var (
	hudForeground = render.RGB(220, 220, 220)
	hudDim        = render.RGB(130, 130, 150)
	hudWarn       = render.RGB(230, 180, 80)
)

// Status is what the status rows report about the current frame.
type Status struct {
	FPS      float64
	Vertices int
	Width    int // Framebuffer pixels
	Height   int
	Position math3d.Vec3
	Message  string // Last screenshot or reload result
	Warning  bool   // Message reports a failure
}

// StatusLines formats the status rows: frame info, key help and the last
// message. Lines never exceed cols cells.
func StatusLines(s Status, cols int) []string {
	lines := []string{
		fmt.Sprintf("FPS: %d  Vertices: %d  Res: %dx%d  Pos: (%.1f, %.1f, %.1f)",
			int(s.FPS), s.Vertices, s.Width, s.Height, s.Position.X, s.Position.Y, s.Position.Z),
		keyHelp,
		s.Message,
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, max(cols, 0), "…")
	}
	return lines
}

// DrawStatus paints the status lines into area, one per row, clearing the
// rest of each row. Rows that do not fit are dropped.
func DrawStatus(scr uv.Screen, area uv.Rectangle, s Status) {
	lines := StatusLines(s, area.Max.X-area.Min.X)
	for i := 0; area.Min.Y+i < area.Max.Y; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		fg := hudForeground
		switch {
		case i == 1:
			fg = hudDim
		case i == 2 && s.Warning:
			fg = hudWarn
		}
		drawLine(scr, area.Min.X, area.Max.X, area.Min.Y+i, line, fg)
	}
}

func drawLine(scr uv.Screen, minX, maxX, y int, line string, fg render.Color) {
	style := uv.Style{Fg: fg, Bg: render.Black}
	x := minX
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		scr.SetCell(x, y, &uv.Cell{Content: string(r), Width: w, Style: style})
		x += w
	}
	for ; x < maxX; x++ {
		scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1, Style: style})
	}
}
