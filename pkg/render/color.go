package render

import (
	"github.com/chewxy/math32"
)

// Color is an opaque 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

var (
	// Background is the clear color NewFramebuffer uses. Set
	// Framebuffer.Background or use WithBackground for another one.
	Background = RGB(20, 20, 30)
	// NeutralGray is what an unloaded texture samples to.
	NeutralGray = RGB(200, 200, 200)
	// Black fills the unpaired half of the last terminal row.
	Black = RGB(0, 0, 0)
)

// RGB creates a color from its channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Scale multiplies every channel by f, saturating to [0, 255].
func (c Color) Scale(f float32) Color {
	return Color{
		R: scaleChannel(c.R, f),
		G: scaleChannel(c.G, f),
		B: scaleChannel(c.B, f),
	}
}

// Add sums two colors channel-wise, saturating at 255.
func (c Color) Add(o Color) Color {
	return Color{
		R: addChannel(c.R, o.R),
		G: addChannel(c.G, o.G),
		B: addChannel(c.B, o.B),
	}
}

// RGBA implements color.Color. Colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func scaleChannel(c uint8, f float32) uint8 {
	v := float32(c) * f
	if !(v > 0) {
		return 0
	}
	return uint8(math32.Min(v, 255))
}

func addChannel(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}
