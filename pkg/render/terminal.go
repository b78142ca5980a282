package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// HalfBlock is the upper half block glyph; its foreground paints the top
// pixel of a cell and its background the bottom one.
const HalfBlock = "▀"

// Draw paints the framebuffer onto scr, two pixel rows per terminal row,
// starting at the top-left corner of area. When the framebuffer has an odd
// height the bottom half of the last row is black.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		if (row-area.Min.Y)*2 >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}

			top, bottom := fb.HalfBlockAt(x, row-area.Min.Y)
			scr.SetCell(col, row, &uv.Cell{
				Content: HalfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: top,
					Bg: bottom,
				},
			})
		}
	}
}

// HalfBlockAt returns the two pixel colors shown by the cell at column x of
// terminal row row.
func (fb *Framebuffer) HalfBlockAt(x, row int) (top, bottom Color) {
	topY := row * 2
	if topY+1 >= fb.Height {
		return fb.Read(x, topY), Black
	}
	return fb.Read(x, topY), fb.Read(x, topY+1)
}

// TerminalSize returns the framebuffer size that fills a terminal of cols x
// rows cells, leaving statusRows rows free at the bottom. Both dimensions are
// at least 1 pixel wide and 2 pixels tall.
func TerminalSize(cols, rows, statusRows int) (width, height int) {
	return max(1, cols), 2 * max(1, rows-statusRows)
}
