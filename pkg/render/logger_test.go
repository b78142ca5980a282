package render

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	l := Logger()
	assert.NotNil(t, l)
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	r := NewRenderer(NewFramebuffer(4, 4))
	defer r.Close()
	r.Resize(8, 8)
	r.Render(nil)

	assert.Contains(t, buf.String(), "resize framebuffer")
	assert.Contains(t, buf.String(), "msg=frame")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := NewRenderer(NewFramebuffer(4, 4), WithLogger(l))
	defer r.Close()
	r.Render(nil)

	assert.Contains(t, buf.String(), "triangles=0")
}
