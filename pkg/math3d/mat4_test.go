package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestMat4MulIdentity(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(ScaleUniform(2))
	if got := Identity().Mul(m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m*I = %v, want %v", got, m)
	}
}

func TestMulVec3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"translate", Translate(V3(1, 2, 3)), V3(1, 1, 1), V3(2, 3, 4)},
		{"scale", Scale(V3(2, 3, 4)), V3(1, 1, 1), V3(2, 3, 4)},
		{"scale then translate", Translate(V3(1, 0, 0)).Mul(ScaleUniform(2)), V3(1, 1, 1), V3(3, 2, 2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.m.MulVec3(tc.in)
			if !near(got.X, tc.want.X) || !near(got.Y, tc.want.Y) || !near(got.Z, tc.want.Z) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMulVec3DirIgnoresTranslation(t *testing.T) {
	got := Translate(V3(5, 5, 5)).MulVec3Dir(V3(0, 0, 1))
	if got != V3(0, 0, 1) {
		t.Errorf("got %v, want (0,0,1)", got)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := V3(0, 1, 3)
	view := LookAt(eye, V3(0, 1, 2), Up())

	got := view.MulVec3(eye)
	if !near(got.Len(), 0) {
		t.Errorf("eye in view space = %v, want origin", got)
	}

	// A point straight ahead lands on -Z.
	ahead := view.MulVec3(V3(0, 1, 0))
	if !near(ahead.X, 0) || !near(ahead.Y, 0) || !near(ahead.Z, -3) {
		t.Errorf("point ahead = %v, want (0,0,-3)", ahead)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	const n, f = 0.1, 100.0
	p := Perspective(Radians(45), 1, n, f)

	tests := []struct {
		name string
		z    float64
		want float64
	}{
		{"near plane", -n, -1},
		{"far plane", -f, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clip := p.MulVec4(V4(0, 0, tc.z, 1))
			ndc := clip.PerspectiveDivide()
			if math.Abs(ndc.Z-tc.want) > 1e-6 {
				t.Errorf("ndc z = %v, want %v", ndc.Z, tc.want)
			}
			if !near(clip.W, -tc.z) {
				t.Errorf("clip w = %v, want %v", clip.W, -tc.z)
			}
		})
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero.Normalize() = %v, want zero", got)
	}
	if got := V3(3, 0, 4).Normalize(); !near(got.Len(), 1) {
		t.Errorf("len = %v, want 1", got.Len())
	}
}
