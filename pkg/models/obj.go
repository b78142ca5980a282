package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/termrast/pkg/math3d"
)

var errBadIndex = errors.New("index out of range")

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("models: parse obj %s %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ geometry from r. Only v, vt, vn and f records are used;
// everything else is ignored.
//
// Faces are flattened: every face corner becomes its own vertex, so the
// result has three vertices per triangle. Polygons are split into fans
// around their first corner. Corners without a texture coordinate get
// (0, 0) and corners without a normal get (0, 1, 0).
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
	)
	mesh := NewMesh(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var p []float64
			if p, err = parseFloats(fields[1:], 3); err == nil {
				positions = append(positions, math3d.V3(p[0], p[1], p[2]))
			}
		case "vt":
			var p []float64
			if p, err = parseFloats(fields[1:], 2); err == nil {
				uvs = append(uvs, math3d.V2(p[0], p[1]))
			}
		case "vn":
			var p []float64
			if p, err = parseFloats(fields[1:], 3); err == nil {
				normals = append(normals, math3d.V3(p[0], p[1], p[2]))
			}
		case "f":
			err = addFace(mesh, fields[1:], positions, uvs, normals)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func addFace(mesh *Mesh, corners []string, positions []math3d.Vec3, uvs []math3d.Vec2, normals []math3d.Vec3) error {
	if len(corners) < 3 {
		return fmt.Errorf("face needs 3 corners, got %d", len(corners))
	}

	verts := make([]Vertex, len(corners))
	for i, c := range corners {
		v, err := parseCorner(c, positions, uvs, normals)
		if err != nil {
			return fmt.Errorf("corner %q: %w", c, err)
		}
		verts[i] = v
	}

	for i := 1; i+1 < len(verts); i++ {
		base := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, verts[0], verts[i], verts[i+1])
		mesh.Faces = append(mesh.Faces, [3]int{base, base + 1, base + 2})
	}
	return nil
}

// parseCorner resolves a v, v/vt, v//vn or v/vt/vn reference.
func parseCorner(s string, positions []math3d.Vec3, uvs []math3d.Vec2, normals []math3d.Vec3) (Vertex, error) {
	v := Vertex{Normal: math3d.Up()}
	parts := strings.Split(s, "/")

	pi, err := resolveIndex(parts[0], len(positions))
	if err != nil {
		return v, err
	}
	v.Position = positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(uvs))
		if err != nil {
			return v, err
		}
		v.UV = uvs[ti]
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(normals))
		if err != nil {
			return v, err
		}
		v.Normal = normals[ni]
	}
	return v, nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a
// 0-based one.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("%w: %d of %d", errBadIndex, i, n)
	}
}
