package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/termrast/pkg/math3d"
)

// TileSize is the default tile edge in pixels.
const TileSize = 16

// Rect is an inclusive pixel rectangle.
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Width returns the number of columns in r.
func (r Rect) Width() int { return r.MaxX - r.MinX + 1 }

// Height returns the number of rows in r.
func (r Rect) Height() int { return r.MaxY - r.MinY + 1 }

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool { return r.MaxX < r.MinX || r.MaxY < r.MinY }

// Overlaps reports whether r and o share a pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Empty() && !o.Empty() &&
		r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Intersect returns the pixels common to r and o.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// TileGrid partitions a width x height buffer into square tiles. Tiles on
// the right and bottom edges are clipped to the buffer.
type TileGrid struct {
	Width, Height int
	Size          int
	Cols, Rows    int
}

// NewTileGrid creates the tile grid of a buffer.
func NewTileGrid(width, height, size int) TileGrid {
	if size <= 0 {
		size = TileSize
	}
	return TileGrid{
		Width:  width,
		Height: height,
		Size:   size,
		Cols:   (width + size - 1) / size,
		Rows:   (height + size - 1) / size,
	}
}

// Len returns the number of tiles.
func (g TileGrid) Len() int { return g.Cols * g.Rows }

// Tile returns the rectangle of tile i, numbered row-major.
func (g TileGrid) Tile(i int) Rect {
	col, row := i%g.Cols, i/g.Cols
	x0, y0 := col*g.Size, row*g.Size
	return Rect{
		MinX: x0,
		MinY: y0,
		MaxX: min(x0+g.Size-1, g.Width-1),
		MaxY: min(y0+g.Size-1, g.Height-1),
	}
}

// Span returns the inclusive tile columns and rows that r touches.
func (g TileGrid) Span(r Rect) (c0, r0, c1, r1 int) {
	return r.MinX / g.Size, r.MinY / g.Size, r.MaxX / g.Size, r.MaxY / g.Size
}

// Shader turns interpolated attributes into a pixel color.
type Shader struct {
	Texture  *Texture    // nil samples NeutralGray
	LightDir math3d.Vec3 // Unit vector towards the light
}

// Shade samples the texture at uv and applies ambient plus diffuse lighting
// for the unit normal n.
func (s *Shader) Shade(uv math3d.Vec2, n math3d.Vec3) Color {
	base := s.Texture.Sample(uv.X, uv.Y)
	ndotl := math32.Max(0, float32(n.Dot(s.LightDir)))
	return base.Scale(0.3 + 0.7*ndotl)
}

// target is a framebuffer holding the pixels of rect. Cell (0, 0) of fb is
// pixel (rect.MinX, rect.MinY) of the frame.
type target struct {
	fb   *Framebuffer
	rect Rect
}

// rasterize draws tri into the part of dst it covers. Pixels keep the
// nearest fragment; a fragment at equal depth does not replace the earlier
// one.
func rasterize(tri *PreparedTriangle, dst target, sh *Shader) {
	if !tri.Valid || !tri.Bounds.Overlaps(dst.rect) {
		return
	}
	r := tri.Bounds.Intersect(dst.rect)

	s0, s1, s2 := tri.Screen[0], tri.Screen[1], tri.Screen[2]
	invArea := 1 / tri.Area
	invW0, invW1, invW2 := 1/tri.ClipW[0], 1/tri.ClipW[1], 1/tri.ClipW[2]

	for y := r.MinY; y <= r.MaxY; y++ {
		py := float64(y) + 0.5
		for x := r.MinX; x <= r.MaxX; x++ {
			px := float64(x) + 0.5

			w0 := edge(s1, s2, px, py)
			w1 := edge(s2, s0, px, py)
			w2 := edge(s0, s1, px, py)

			// Either winding counts as inside
			inside := (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0)
			if !inside {
				continue
			}

			w0 *= invArea
			w1 *= invArea
			w2 *= invArea

			depth := w0*s0.Z + w1*s1.Z + w2*s2.Z
			if depth < -1 || depth > 1 {
				continue
			}

			i, ok := dst.fb.Index(x-dst.rect.MinX, y-dst.rect.MinY)
			if !ok {
				continue
			}
			z := float32(depth)
			if !(z < dst.fb.Depth[i]) {
				continue
			}
			dst.fb.Depth[i] = z

			// Perspective-correct attributes
			p0, p1, p2 := w0*invW0, w1*invW1, w2*invW2
			corr := 1 / (p0 + p1 + p2)

			uv := math3d.Vec2{
				X: (p0*tri.UV[0].X + p1*tri.UV[1].X + p2*tri.UV[2].X) * corr,
				Y: (p0*tri.UV[0].Y + p1*tri.UV[1].Y + p2*tri.UV[2].Y) * corr,
			}
			n := tri.Normal[0].Scale(p0).
				Add(tri.Normal[1].Scale(p1)).
				Add(tri.Normal[2].Scale(p2)).
				Scale(corr).
				Normalize()

			dst.fb.Pixels[i] = sh.Shade(uv, n)
		}
	}
}
