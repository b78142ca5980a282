package models

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/termrast/pkg/math3d"
)

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "Quad.OBJ")
	require.NoError(t, os.WriteFile(obj, []byte(quadOBJ), 0o644))

	mesh, err := Load(obj)
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.TriangleCount())

	_, err = Load(filepath.Join(dir, "model.fbx"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestModelMatrix(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader("v 1 1 1\nv 5 2 1\nv 1 3 2\nf 1 2 3\n"), "tri")
	require.NoError(t, err)

	assert.Equal(t, math3d.V3(3, 2, 1.5), mesh.Center())
	assert.Equal(t, 4.0, mesh.Extent())

	m := mesh.ModelMatrix()
	lo := m.MulVec3(mesh.BoundsMin)
	hi := m.MulVec3(mesh.BoundsMax)
	assert.InDelta(t, -1, lo.X, 1e-12)
	assert.InDelta(t, 1, hi.X, 1e-12)
	assert.InDelta(t, -0.5, lo.Y, 1e-12)
	assert.InDelta(t, 0.5, hi.Y, 1e-12)
	assert.InDelta(t, 0, m.MulVec3(mesh.Center()).Len(), 1e-12)
}

func TestModelMatrixFlatMesh(t *testing.T) {
	mesh := NewMesh("point")
	mesh.Vertices = []Vertex{{Position: math3d.V3(2, 2, 2)}}
	mesh.CalculateBounds()

	got := mesh.ModelMatrix().MulVec3(math3d.V3(2, 2, 2))
	assert.Equal(t, math3d.V3(0, 0, 0), got)
}

func TestCalculateSmoothNormals(t *testing.T) {
	mesh := NewMesh("fold")
	mesh.Vertices = []Vertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(0, 0, 1)},
	}
	mesh.Faces = [][3]int{{0, 1, 2}, {0, 3, 1}}
	mesh.CalculateSmoothNormals()

	n := mesh.Vertices[2].Normal
	assert.Equal(t, math3d.V3(0, 0, 1), n)

	// Shared vertex averages both faces
	shared := mesh.Vertices[0].Normal
	s := 1 / math.Sqrt2
	assert.InDelta(t, 0, shared.X, 1e-12)
	assert.InDelta(t, s, shared.Y, 1e-12)
	assert.InDelta(t, s, shared.Z, 1e-12)
}

func TestValidate(t *testing.T) {
	mesh := NewMesh("bad")
	mesh.Vertices = make([]Vertex, 3)
	mesh.Faces = [][3]int{{0, 1, 3}}
	assert.Error(t, mesh.validate())

	mesh.Faces = [][3]int{{0, 1, 2}}
	assert.NoError(t, mesh.validate())
}
