package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/termrast/pkg/math3d"
)

func TestStatusLines(t *testing.T) {
	s := Status{
		FPS:      59.7,
		Vertices: 1234,
		Width:    80,
		Height:   42,
		Position: math3d.V3(0, 1, 3),
		Message:  "Saved: screenshot_000.png",
	}

	lines := StatusLines(s, 200)
	require.Len(t, lines, 3)
	assert.Equal(t, "FPS: 59  Vertices: 1234  Res: 80x42  Pos: (0.0, 1.0, 3.0)", lines[0])
	assert.Equal(t, keyHelp, lines[1])
	assert.Equal(t, "Saved: screenshot_000.png", lines[2])
}

func TestStatusLinesTruncate(t *testing.T) {
	lines := StatusLines(Status{Message: strings.Repeat("x", 50)}, 20)
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(l), 20, l)
	}
	assert.True(t, strings.HasSuffix(lines[1], "…"))
}
