package render

import (
	"github.com/taigrr/termrast/pkg/math3d"
)

// cullEpsilon keeps boxes that touch a plane within rounding error.
const cullEpsilon = 1e-9

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Distance returns the signed distance from the plane to p. Positive is
// inside.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}

// Frustum is the region -w <= x, y, z <= w of clip space, expressed in the
// space the matrix it was extracted from maps out of. Normals point inward.
type Frustum struct {
	Planes [6]Plane // Left, right, bottom, top, near, far
}

// NewFrustum extracts the frustum of a (model-)view-projection matrix with
// the Gribb/Hartmann method.
func NewFrustum(m math3d.Mat4) Frustum {
	// Row i of the column-major m is m[i], m[i+4], m[i+8], m[i+12]
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	n3, d3 := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		f.Planes[axis*2] = Plane{Normal: n3.Add(n), D: d3 + d}.normalized()
		f.Planes[axis*2+1] = Plane{Normal: n3.Sub(n), D: d3 - d}.normalized()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Intersects reports whether any part of box may lie inside the frustum.
// It tests the corner furthest along each plane normal, so it never rejects
// a visible box but may accept a few invisible ones.
func (f Frustum) Intersects(box AABB) bool {
	for _, p := range f.Planes {
		corner := math3d.V3(
			pick(p.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(p.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(p.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if p.Distance(corner) < -cullEpsilon {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
