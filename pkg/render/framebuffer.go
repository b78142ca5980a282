// Package render implements the software rasterizer: the pixel buffer,
// texture sampling, triangle preparation, the tile-parallel frame renderer
// and half-block terminal output.
package render

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"

	"github.com/taigrr/termrast/pkg/parallel"
)

// MaxDepth is the depth a cleared pixel holds.
const MaxDepth = math.MaxFloat32

// clearBand is the number of rows one ClearParallel unit handles.
const clearBand = 16

// Index is a row-major cell index into a Framebuffer.
type Index int

// Framebuffer is a color and depth grid. The height is in pixels, which is
// twice the number of terminal rows used to show it.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color   // Row-major color data
	Depth  []float32 // Row-major depth, smaller is nearer

	// Background is the clear color, also returned for out-of-bounds reads.
	Background Color
}

// NewFramebuffer creates a framebuffer cleared to the default Background.
func NewFramebuffer(width, height int) *Framebuffer {
	return NewFramebufferWithBackground(width, height, Background)
}

// NewFramebufferWithBackground creates a framebuffer cleared to bg.
func NewFramebufferWithBackground(width, height int, bg Color) *Framebuffer {
	fb := &Framebuffer{Background: bg}
	fb.alloc(width, height)
	fb.Clear()
	return fb
}

func (fb *Framebuffer) alloc(width, height int) {
	fb.Width = width
	fb.Height = height
	fb.Pixels = make([]Color, width*height)
	fb.Depth = make([]float32, width*height)
}

// reshape sets the dimensions, reusing the backing arrays when they are
// large enough. Contents are left undefined.
func (fb *Framebuffer) reshape(width, height int) {
	n := width * height
	if cap(fb.Pixels) < n || cap(fb.Depth) < n {
		fb.alloc(width, height)
		return
	}
	fb.Width = width
	fb.Height = height
	fb.Pixels = fb.Pixels[:n]
	fb.Depth = fb.Depth[:n]
}

// Index returns the cell index of (x, y) and whether it lies in the buffer.
func (fb *Framebuffer) Index(x, y int) (Index, bool) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0, false
	}
	return Index(y*fb.Width + x), true
}

// Clear resets every pixel to fb.Background and every depth to MaxDepth.
func (fb *Framebuffer) Clear() {
	fillRange(fb.Pixels, fb.Depth, fb.Background, 0, len(fb.Pixels))
}

// ClearParallel does what Clear does, splitting the buffer into row bands
// that run on the pool.
func (fb *Framebuffer) ClearParallel(pool *parallel.Pool) {
	bands := (fb.Height + clearBand - 1) / clearBand
	pool.For(bands, func(i int) {
		start := i * clearBand * fb.Width
		end := min(start+clearBand*fb.Width, len(fb.Pixels))
		fillRange(fb.Pixels, fb.Depth, fb.Background, start, end)
	})
}

func fillRange(pixels []Color, depth []float32, bg Color, start, end int) {
	for i := start; i < end; i++ {
		pixels[i] = bg
		depth[i] = MaxDepth
	}
}

// Write stores c at (x, y) if depth is strictly nearer than what the pixel
// holds. Out-of-bounds coordinates are ignored. It reports whether the pixel
// was written.
func (fb *Framebuffer) Write(x, y int, c Color, depth float32) bool {
	i, ok := fb.Index(x, y)
	if !ok || !(depth < fb.Depth[i]) {
		return false
	}
	fb.Pixels[i] = c
	fb.Depth[i] = depth
	return true
}

// Read returns the color at (x, y), or fb.Background when out of bounds.
func (fb *Framebuffer) Read(x, y int) Color {
	i, ok := fb.Index(x, y)
	if !ok {
		return fb.Background
	}
	return fb.Pixels[i]
}

// DepthAt returns the depth at (x, y), or MaxDepth when out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float32 {
	i, ok := fb.Index(x, y)
	if !ok {
		return MaxDepth
	}
	return fb.Depth[i]
}

// Export returns the colors as interleaved RGB bytes, row-major.
func (fb *Framebuffer) Export() []byte {
	out := make([]byte, 0, 3*len(fb.Pixels))
	for _, c := range fb.Pixels {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// Resize reallocates and clears the buffer. It does nothing when the size is
// unchanged.
func (fb *Framebuffer) Resize(width, height int) {
	if width == fb.Width && height == fb.Height {
		return
	}
	fb.alloc(width, height)
	fb.Clear()
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Pixels {
		o := i * 4
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 0xff
	}
	return img
}

// SaveImage writes the framebuffer to path. The format follows the
// extension: .png, .bmp or .webp.
func (fb *Framebuffer) SaveImage(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".bmp", ".webp":
	default:
		return fmt.Errorf("save image %s: unsupported format %q", path, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	img := fb.ToImage()
	switch ext {
	case ".png":
		err = png.Encode(w, img)
	case ".bmp":
		err = bmp.Encode(w, img)
	case ".webp":
		err = nativewebp.Encode(w, img, nil)
	}
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return f.Close()
}
