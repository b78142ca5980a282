package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorScale(t *testing.T) {
	tests := []struct {
		name   string
		c      Color
		factor float32
		want   Color
	}{
		{"identity", RGB(10, 20, 30), 1, RGB(10, 20, 30)},
		{"saturates", RGB(100, 100, 100), 3, RGB(255, 255, 255)},
		{"half truncates", RGB(201, 100, 1), 0.5, RGB(100, 50, 0)},
		{"zero", RGB(200, 200, 200), 0, RGB(0, 0, 0)},
		{"negative clamps", RGB(200, 200, 200), -2, RGB(0, 0, 0)},
		{"ambient only", NeutralGray, 0.3, RGB(60, 60, 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Scale(tt.factor))
		})
	}
}

func TestColorAdd(t *testing.T) {
	assert.Equal(t, RGB(255, 255, 255), RGB(250, 250, 250).Add(RGB(10, 10, 10)))
	assert.Equal(t, RGB(30, 40, 255), RGB(10, 20, 200).Add(RGB(20, 20, 100)))
}

func TestColorRGBA(t *testing.T) {
	r, g, b, a := RGB(0xff, 0x80, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0x8080), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}
