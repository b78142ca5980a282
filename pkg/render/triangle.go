package render

import (
	"math"

	"github.com/taigrr/termrast/pkg/math3d"
)

const (
	// minClipW rejects triangles with a vertex at or behind the eye plane.
	minClipW = 0.001
	// minArea rejects degenerate triangles, in squared pixels.
	minArea = 0.001
)

// ClipTriangle is a triangle after the model-view-projection transform,
// before the perspective divide.
type ClipTriangle struct {
	Clip   [3]math3d.Vec4
	UV     [3]math3d.Vec2
	Normal [3]math3d.Vec3
}

// PreparedTriangle is a ClipTriangle mapped to screen space. It is read-only
// once Prepare returns it.
type PreparedTriangle struct {
	Screen [3]math3d.Vec3 // Pixel x, y and NDC depth
	ClipW  [3]float64     // Clip-space w, for perspective correction
	UV     [3]math3d.Vec2
	Normal [3]math3d.Vec3
	Bounds Rect    // Pixel bounding box, clamped to the buffer
	Area   float64 // Signed, twice the screen area
	Valid  bool
}

// Prepare maps a clip-space triangle onto a width x height pixel grid.
// The result is invalid when a vertex has w <= 0.001 or the screen area is
// below 0.001; invalid triangles are skipped by the rasterizer.
func Prepare(ct ClipTriangle, width, height int) PreparedTriangle {
	tri := PreparedTriangle{
		UV:     ct.UV,
		Normal: ct.Normal,
	}

	for i, c := range ct.Clip {
		if c.W <= minClipW {
			return tri
		}
		ndc := c.PerspectiveDivide()
		tri.Screen[i] = math3d.Vec3{
			X: (ndc.X + 1) * 0.5 * float64(width),
			Y: (1 - ndc.Y) * 0.5 * float64(height), // Y flipped
			Z: ndc.Z,
		}
		tri.ClipW[i] = c.W
	}

	s := tri.Screen
	tri.Bounds = Rect{
		MinX: max(0, int(math.Floor(min(s[0].X, s[1].X, s[2].X)))),
		MinY: max(0, int(math.Floor(min(s[0].Y, s[1].Y, s[2].Y)))),
		MaxX: min(width-1, int(math.Ceil(max(s[0].X, s[1].X, s[2].X)))),
		MaxY: min(height-1, int(math.Ceil(max(s[0].Y, s[1].Y, s[2].Y)))),
	}

	tri.Area = edge(s[0], s[1], s[2].X, s[2].Y)
	tri.Valid = math.Abs(tri.Area) >= minArea
	return tri
}

// edge is the signed edge function of p against the directed edge a->b.
func edge(a, b math3d.Vec3, px, py float64) float64 {
	return (px-a.X)*(b.Y-a.Y) - (py-a.Y)*(b.X-a.X)
}
