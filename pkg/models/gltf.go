package models

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/termrast/pkg/math3d"
	"github.com/taigrr/termrast/pkg/render"
)

// GLTFLoader loads glTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
	// LoadTexture decodes the first base color image into Mesh.BaseColor.
	LoadTexture bool
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		LoadTexture:      true,
	}
}

// LoadGLB loads a binary (.glb) or JSON (.gltf) glTF file with the default
// options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns a Mesh holding every triangle
// primitive of every mesh in the document.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	hasNormals := true

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			ok, err := l.appendPrimitive(doc, prim, mesh)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
			hasNormals = hasNormals && ok
		}
	}

	if err := mesh.validate(); err != nil {
		return nil, fmt.Errorf("models: %s: %w", path, err)
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}

	if l.LoadTexture {
		mesh.BaseColor = baseColorImage(doc, filepath.Dir(path))
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// appendPrimitive adds the geometry of one triangle primitive to mesh. It
// reports whether the primitive carried normals.
func (l *GLTFLoader) appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh) (bool, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		// Skip lines, points and strips
		return true, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return true, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return false, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return false, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return false, fmt.Errorf("read uvs: %w", err)
		}
	}

	base := len(mesh.Vertices)
	for i, p := range positions {
		v := Vertex{
			Position: vec3(p),
			Normal:   math3d.Up(),
		}
		if i < len(normals) {
			v.Normal = vec3(normals[i])
		}
		if i < len(uvs) {
			// glTF puts V=0 at the top of the image
			v.UV = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return false, fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, [3]int{
				base + int(indices[i]),
				base + int(indices[i+1]),
				base + int(indices[i+2]),
			})
		}
	} else {
		// No indices: consecutive vertex triples
		for i := 0; i+2 < len(positions); i += 3 {
			mesh.Faces = append(mesh.Faces, [3]int{base + i, base + i + 1, base + i + 2})
		}
	}

	return len(normals) > 0, nil
}

func vec3(f [3]float32) math3d.Vec3 {
	return math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
}

// baseColorImage decodes the base color texture of the first material that
// has one, falling back to the first image in the document. It returns nil
// when nothing decodes.
func baseColorImage(doc *gltf.Document, dir string) image.Image {
	order := make([]int, 0, len(doc.Images))
	for _, mat := range doc.Materials {
		pbr := mat.PBRMetallicRoughness
		if pbr == nil || pbr.BaseColorTexture == nil {
			continue
		}
		tex := doc.Textures[pbr.BaseColorTexture.Index]
		if tex.Source != nil {
			order = append(order, *tex.Source)
		}
	}
	for i := range doc.Images {
		order = append(order, i)
	}

	for _, i := range order {
		data := imageBytes(doc, doc.Images[i], dir)
		if len(data) == 0 {
			continue
		}
		if img, _, err := render.DecodeImage(data, doc.Images[i].URI); err == nil {
			return img
		}
	}
	return nil
}

func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil
		}
		return buf.Data[bv.ByteOffset:end]
	}
	if img.URI == "" || img.IsEmbeddedResource() {
		if data, err := img.MarshalData(); err == nil {
			return data
		}
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, img.URI))
	if err != nil {
		return nil
	}
	return data
}
