package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := Scale(V3(2, 2, 2))

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Perspective(Radians(45), 16.0/9.0, 0.1, 100).Mul(LookAt(V3(0, 1, 3), V3(0, 0, 0), Up()))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}
