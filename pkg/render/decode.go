package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnknownImage is returned when data matches no supported image format.
var ErrUnknownImage = errors.New("unknown image format")

// The tga package registers itself with image.RegisterFormat under an empty
// magic string, which matches any input. image.Decode would hand every file
// to it, so decoders are picked here instead of through the registry.
var imageFormats = []struct {
	name   string
	match  func(b []byte) bool
	decode func(r io.Reader) (image.Image, error)
}{
	{"png", hasPrefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", hasPrefix("\xff\xd8"), jpeg.Decode},
	{"gif", hasPrefix("GIF87a", "GIF89a"), gif.Decode},
	{"bmp", hasPrefix("BM"), bmp.Decode},
	{"tiff", hasPrefix("II*\x00", "MM\x00*"), tiff.Decode},
	{"webp", isWebP, webp.Decode},
}

func hasPrefix(magics ...string) func([]byte) bool {
	return func(b []byte) bool {
		for _, m := range magics {
			if bytes.HasPrefix(b, []byte(m)) {
				return true
			}
		}
		return false
	}
}

func isWebP(b []byte) bool {
	return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP"
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF, WebP or TGA data and
// returns the format name. Formats are recognized by their magic bytes.
// TGA has none: it is tried first when name ends in ".tga" and last for
// anything else.
func DecodeImage(data []byte, name string) (image.Image, string, error) {
	isTGA := strings.EqualFold(filepath.Ext(name), ".tga")
	if isTGA {
		if img, err := tga.Decode(bytes.NewReader(data)); err == nil {
			return img, "tga", nil
		}
	}

	for _, f := range imageFormats {
		if !f.match(data) {
			continue
		}
		img, err := f.decode(bytes.NewReader(data))
		if err != nil {
			return nil, f.name, fmt.Errorf("decode %s: %w", f.name, err)
		}
		return img, f.name, nil
	}

	if !isTGA {
		if img, err := tga.Decode(bytes.NewReader(data)); err == nil {
			return img, "tga", nil
		}
	}
	return nil, "", ErrUnknownImage
}
