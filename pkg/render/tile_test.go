package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/termrast/pkg/math3d"
)

func TestTileGrid(t *testing.T) {
	tests := []struct {
		name       string
		w, h, size int
		cols, rows int
		last       Rect
	}{
		{"exact", 32, 16, 16, 2, 1, Rect{16, 0, 31, 15}},
		{"clipped edges", 40, 20, 16, 3, 2, Rect{32, 16, 39, 19}},
		{"smaller than a tile", 5, 3, 16, 1, 1, Rect{0, 0, 4, 2}},
		{"default size", 17, 17, 0, 2, 2, Rect{16, 16, 16, 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewTileGrid(tt.w, tt.h, tt.size)
			assert.Equal(t, tt.cols, g.Cols)
			assert.Equal(t, tt.rows, g.Rows)
			assert.Equal(t, tt.cols*tt.rows, g.Len())
			assert.Equal(t, tt.last, g.Tile(g.Len()-1))
		})
	}
}

func TestTileGridCoversBufferOnce(t *testing.T) {
	g := NewTileGrid(37, 23, 8)
	hits := make([]int, 37*23)
	for i := range g.Len() {
		r := g.Tile(i)
		for y := r.MinY; y <= r.MaxY; y++ {
			for x := r.MinX; x <= r.MaxX; x++ {
				hits[y*37+x]++
			}
		}
	}
	for i, h := range hits {
		assert.Equal(t, 1, h, "pixel %d", i)
	}
}

func TestRect(t *testing.T) {
	a := Rect{MinX: 0, MinY: 0, MaxX: 9, MaxY: 4}
	b := Rect{MinX: 5, MinY: 3, MaxX: 20, MaxY: 20}
	c := Rect{MinX: 10, MinY: 0, MaxX: 12, MaxY: 4}

	assert.Equal(t, 10, a.Width())
	assert.Equal(t, 5, a.Height())
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "adjacent rectangles share no pixel")
	assert.Equal(t, Rect{MinX: 5, MinY: 3, MaxX: 9, MaxY: 4}, a.Intersect(b))
	assert.True(t, Rect{MinX: 3, MaxX: 2}.Empty())
	assert.False(t, Rect{MinX: 3, MaxX: 2}.Overlaps(a))
}

func TestShaderLighting(t *testing.T) {
	tests := []struct {
		name   string
		normal [3]float64
		want   Color
	}{
		{"facing light", [3]float64{0, 0, 1}, NeutralGray},
		{"perpendicular", [3]float64{1, 0, 0}, RGB(60, 60, 60)},
		{"facing away", [3]float64{0, 0, -1}, RGB(60, 60, 60)},
	}

	sh := Shader{LightDir: math3d.V3(0, 0, 1)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := math3d.V3(tt.normal[0], tt.normal[1], tt.normal[2])
			assert.Equal(t, tt.want, sh.Shade(math3d.V2(0.5, 0.5), n))
		})
	}
}
