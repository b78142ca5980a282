package render

import (
	"fmt"
	"image"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// Texture holds decoded RGB texels for sampling. A nil *Texture is valid and
// samples as NeutralGray.
type Texture struct {
	Width  int
	Height int
	Pix    []byte // Interleaved RGB, row-major, 3*Width*Height bytes
}

// TextureOption configures texture loading.
type TextureOption func(*textureConfig)

type textureConfig struct {
	maxSize int
}

// WithMaxSize downscales images whose longer edge exceeds n texels. Zero
// keeps the original size.
func WithMaxSize(n int) TextureOption {
	return func(c *textureConfig) {
		c.maxSize = n
	}
}

// NewTexture creates a black texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pix:    make([]byte, 3*width*height),
	}
}

// LoadTexture decodes an image file. PNG, JPEG, GIF, BMP, TIFF, WebP and
// TGA are supported.
func LoadTexture(path string, opts ...TextureOption) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}

	img, _, err := DecodeImage(data, path)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img, opts...), nil
}

// TextureFromImage flattens an image into RGB texels. Alpha is dropped.
func TextureFromImage(img image.Image, opts ...TextureOption) *Texture {
	var cfg textureConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if cfg.maxSize > 0 && max(w, h) > cfg.maxSize {
		w, h = fitWithin(w, h, cfg.maxSize)
	}

	// Drawing into an RGBA of the target size both converts the pixel
	// format and resamples when the size differs.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	tex := NewTexture(w, h)
	for i := 0; i < w*h; i++ {
		copy(tex.Pix[i*3:i*3+3], dst.Pix[i*4:i*4+3])
	}
	return tex
}

func fitWithin(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a texel. Out-of-range coordinates are ignored.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	o := (y*t.Width + x) * 3
	t.Pix[o], t.Pix[o+1], t.Pix[o+2] = c.R, c.G, c.B
}

// Loaded reports whether the texture has texels to sample.
func (t *Texture) Loaded() bool {
	return t != nil && t.Width > 0 && t.Height > 0 && len(t.Pix) >= 3*t.Width*t.Height
}

// Sample returns the nearest texel at (u, v). Coordinates wrap, and v grows
// upward while image rows grow downward.
func (t *Texture) Sample(u, v float64) Color {
	if !t.Loaded() {
		return NeutralGray
	}

	u -= math.Floor(u)
	v -= math.Floor(v)

	x := clampInt(int(u*float64(t.Width-1)), 0, t.Width-1)
	y := clampInt(int((1-v)*float64(t.Height-1)), 0, t.Height-1)

	o := (y*t.Width + x) * 3
	return Color{R: t.Pix[o], G: t.Pix[o+1], B: t.Pix[o+2]}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
