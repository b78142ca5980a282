package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// tgaBytes builds an uncompressed 24-bit true-color TGA of one row.
func tgaBytes(pixels ...Color) []byte {
	hdr := make([]byte, 18)
	hdr[2] = 2 // uncompressed true-color
	hdr[12] = byte(len(pixels))
	hdr[14] = 1
	hdr[16] = 24
	hdr[17] = 0x20 // top-left origin
	for _, p := range pixels {
		hdr = append(hdr, p.B, p.G, p.R)
	}
	return hdr
}

func TestDecodeImage(t *testing.T) {
	src := solidImage(4, 3, color.RGBA{R: 255, A: 255})

	tests := []struct {
		name   string
		file   string
		encode func(io.Writer, image.Image) error
	}{
		{"png", "tex.png", png.Encode},
		{"jpeg", "tex.jpg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 100}) }},
		{"gif", "tex.gif", func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }},
		{"bmp", "tex.bmp", bmp.Encode},
		{"tiff", "tex.tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
		{"webp", "tex.webp", func(w io.Writer, m image.Image) error { return nativewebp.Encode(w, m, nil) }},
		// A TGA name does not override PNG magic bytes.
		{"png", "misnamed.tga", png.Encode},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, src))

			img, format, err := DecodeImage(buf.Bytes(), tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.name, format)
			assert.Equal(t, src.Bounds(), img.Bounds())

			r, g, b, _ := img.At(1, 1).RGBA()
			assert.InDelta(t, 255, r>>8, 16)
			assert.InDelta(t, 0, g>>8, 16)
			assert.InDelta(t, 0, b>>8, 16)
		})
	}
}

func TestDecodeImageTGA(t *testing.T) {
	data := tgaBytes(RGB(255, 0, 0), RGB(0, 0, 255))

	img, format, err := DecodeImage(data, "tex.TGA")
	require.NoError(t, err)
	assert.Equal(t, "tga", format)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())

	tex := TextureFromImage(img)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 255}, tex.Pix)
}

func TestDecodeImageUnknown(t *testing.T) {
	_, _, err := DecodeImage([]byte("definitely not an image"), "notes.txt")
	assert.True(t, errors.Is(err, ErrUnknownImage))
}

func TestDecodeImageCorruptPNG(t *testing.T) {
	data := []byte("\x89PNG\r\n\x1a\n truncated")
	_, format, err := DecodeImage(data, "tex.png")
	require.Error(t, err)
	assert.Equal(t, "png", format)
}
