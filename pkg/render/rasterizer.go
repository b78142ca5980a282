package render

import (
	"log/slog"
	"sync"
	"time"

	"github.com/taigrr/termrast/pkg/math3d"
	"github.com/taigrr/termrast/pkg/parallel"
)

// MeshRenderer is the view of a mesh the renderer needs. It is declared here
// so render does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMesh is a MeshRenderer that knows its local bounds. RenderMesh
// skips such meshes entirely when the bounds are outside the view.
type BoundedMesh interface {
	MeshRenderer
	Bounds() (min, max math3d.Vec3)
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Triangles int           // Triangles submitted
	Valid     int           // Triangles that survived preparation
	Tiles     int           // Tiles rasterized
	Binned    int           // Tile/triangle pairs after binning, 0 when off
	Culled    bool          // The whole mesh was outside the view
	Duration  time.Duration // Wall time of the frame
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPool runs the renderer on a shared pool. The renderer does not close
// it.
func WithPool(p *parallel.Pool) Option {
	return func(r *Renderer) {
		r.pool = p
	}
}

// WithTileSize sets the tile edge in pixels. Non-positive sizes select
// TileSize.
func WithTileSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.tileSize = n
		}
	}
}

// WithBinning builds per-tile triangle lists before rasterizing, so each
// tile visits only the triangles whose bounds touch it.
func WithBinning(on bool) Option {
	return func(r *Renderer) {
		r.binning = on
	}
}

// WithBackground sets the clear color of the renderer's framebuffer.
func WithBackground(c Color) Option {
	return func(r *Renderer) {
		r.fb.Background = c
	}
}

// WithLogger overrides the package logger for this renderer.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// Renderer draws frames of triangles into a framebuffer.
//
// A frame runs in two parallel phases separated by a barrier. Phase one
// prepares each triangle into its own slot. Phase two gives each tile to one
// work unit, which rasterizes every prepared triangle into private scratch
// buffers and copies them back. Tiles are disjoint, so no pixel is written
// by two units and the result matches a sequential pass exactly.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	fb       *Framebuffer
	pool     *parallel.Pool
	ownPool  bool
	tileSize int
	binning  bool
	logger   *slog.Logger

	shader Shader

	prepared []PreparedTriangle
	bins     [][]int32
	scratch  sync.Pool
	stats    FrameStats
}

// NewRenderer creates a renderer drawing into fb.
func NewRenderer(fb *Framebuffer, opts ...Option) *Renderer {
	r := &Renderer{
		fb:       fb,
		tileSize: TileSize,
		shader: Shader{
			LightDir: math3d.V3(0.5, 1, 0.8).Normalize(),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = parallel.NewPool(0)
		r.ownPool = true
	}
	r.scratch.New = func() any { return &Framebuffer{} }
	return r
}

// Close releases the worker pool if the renderer created it.
func (r *Renderer) Close() {
	if r.ownPool {
		r.pool.Close()
	}
}

// Framebuffer returns the buffer frames are drawn into.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// Pool returns the worker pool frames run on.
func (r *Renderer) Pool() *parallel.Pool { return r.pool }

// SetTexture sets the texture sampled by the shader. nil samples
// NeutralGray.
func (r *Renderer) SetTexture(t *Texture) { r.shader.Texture = t }

// Texture returns the current texture.
func (r *Renderer) Texture() *Texture { return r.shader.Texture }

// SetLightDir sets the direction towards the light. It is normalized.
func (r *Renderer) SetLightDir(d math3d.Vec3) { r.shader.LightDir = d.Normalize() }

// LightDir returns the unit direction towards the light.
func (r *Renderer) LightDir() math3d.Vec3 { return r.shader.LightDir }

// Resize changes the framebuffer dimensions. Both must be at least 1.
func (r *Renderer) Resize(width, height int) {
	if width == r.fb.Width && height == r.fb.Height {
		return
	}
	r.log().Info("resize framebuffer",
		"from_width", r.fb.Width, "from_height", r.fb.Height,
		"width", width, "height", height)
	r.fb.Resize(width, height)
}

// Stats returns statistics of the last frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// Render draws tris into the framebuffer. Every pixel is rewritten, so the
// framebuffer need not be cleared first. It returns after the whole frame is
// in the framebuffer.
func (r *Renderer) Render(tris []ClipTriangle) {
	w, h := r.fb.Width, r.fb.Height
	r.frame(len(tris), func(i int) PreparedTriangle {
		return Prepare(tris[i], w, h)
	})
}

// RenderMesh transforms every face of mesh and draws it. Positions go
// through mvp; normals go through modelView as directions, so lighting
// happens in view space.
func (r *Renderer) RenderMesh(mesh MeshRenderer, mvp, modelView math3d.Mat4) {
	if b, ok := mesh.(BoundedMesh); ok {
		lo, hi := b.Bounds()
		if !NewFrustum(mvp).Intersects(AABB{Min: lo, Max: hi}) {
			r.frame(0, nil)
			r.stats.Culled = true
			return
		}
	}

	w, h := r.fb.Width, r.fb.Height
	r.frame(mesh.TriangleCount(), func(i int) PreparedTriangle {
		return Prepare(clipFace(mesh, i, mvp, modelView), w, h)
	})
}

func clipFace(mesh MeshRenderer, i int, mvp, modelView math3d.Mat4) ClipTriangle {
	var ct ClipTriangle
	face := mesh.GetFace(i)
	for j, vi := range face {
		pos, normal, uv := mesh.GetVertex(vi)
		ct.Clip[j] = mvp.MulVec4(math3d.V4FromV3(pos, 1))
		ct.Normal[j] = modelView.MulVec3Dir(normal)
		ct.UV[j] = uv
	}
	return ct
}

// RenderReference draws tris sequentially over the whole framebuffer. Its
// output is identical to Render's.
func (r *Renderer) RenderReference(tris []ClipTriangle) {
	start := time.Now()
	r.fb.Clear()

	full := Rect{MaxX: r.fb.Width - 1, MaxY: r.fb.Height - 1}
	dst := target{fb: r.fb, rect: full}
	valid := 0
	for _, ct := range tris {
		tri := Prepare(ct, r.fb.Width, r.fb.Height)
		if tri.Valid {
			valid++
		}
		rasterize(&tri, dst, &r.shader)
	}

	r.stats = FrameStats{
		Triangles: len(tris),
		Valid:     valid,
		Tiles:     1,
		Duration:  time.Since(start),
	}
}

// frame runs both phases for n triangles produced by prep.
func (r *Renderer) frame(n int, prep func(i int) PreparedTriangle) {
	start := time.Now()

	// Phase 1: one triangle per unit, each into its own slot
	if cap(r.prepared) < n {
		r.prepared = make([]PreparedTriangle, n)
	}
	r.prepared = r.prepared[:n]
	r.pool.For(n, func(i int) {
		r.prepared[i] = prep(i)
	})

	grid := NewTileGrid(r.fb.Width, r.fb.Height, r.tileSize)
	binned := 0
	if r.binning {
		binned = r.bin(grid)
	}

	// Phase 2: one tile per unit
	r.pool.For(grid.Len(), func(t int) {
		r.drawTile(grid, t)
	})

	valid := 0
	for i := range r.prepared {
		if r.prepared[i].Valid {
			valid++
		}
	}
	r.stats = FrameStats{
		Triangles: n,
		Valid:     valid,
		Tiles:     grid.Len(),
		Binned:    binned,
		Duration:  time.Since(start),
	}
	r.log().Debug("frame",
		"triangles", n, "valid", valid, "tiles", grid.Len(),
		"binned", binned, "duration", r.stats.Duration)
}

// bin fills r.bins with the indices of the triangles touching each tile, in
// triangle order. Each unit owns one row of tiles.
func (r *Renderer) bin(grid TileGrid) int {
	if cap(r.bins) < grid.Len() {
		r.bins = make([][]int32, grid.Len())
	}
	r.bins = r.bins[:grid.Len()]

	r.pool.For(grid.Rows, func(row int) {
		base := row * grid.Cols
		for c := range grid.Cols {
			r.bins[base+c] = r.bins[base+c][:0]
		}
		band := Rect{
			MinX: 0,
			MinY: row * grid.Size,
			MaxX: grid.Width - 1,
			MaxY: min((row+1)*grid.Size, grid.Height) - 1,
		}
		for i := range r.prepared {
			tri := &r.prepared[i]
			if !tri.Valid || !tri.Bounds.Overlaps(band) {
				continue
			}
			c0, _, c1, _ := grid.Span(tri.Bounds)
			for c := c0; c <= c1; c++ {
				r.bins[base+c] = append(r.bins[base+c], int32(i))
			}
		}
	})

	total := 0
	for _, b := range r.bins {
		total += len(b)
	}
	return total
}

func (r *Renderer) drawTile(grid TileGrid, t int) {
	rect := grid.Tile(t)
	sc := r.scratch.Get().(*Framebuffer)
	defer r.scratch.Put(sc)

	sc.reshape(rect.Width(), rect.Height())
	sc.Background = r.fb.Background
	sc.Clear()
	dst := target{fb: sc, rect: rect}

	if r.binning {
		for _, i := range r.bins[t] {
			rasterize(&r.prepared[i], dst, &r.shader)
		}
	} else {
		for i := range r.prepared {
			rasterize(&r.prepared[i], dst, &r.shader)
		}
	}

	// Copy back row by row; no other unit touches this rectangle
	for y := range sc.Height {
		src := y * sc.Width
		off := (rect.MinY+y)*r.fb.Width + rect.MinX
		copy(r.fb.Pixels[off:off+sc.Width], sc.Pixels[src:src+sc.Width])
		copy(r.fb.Depth[off:off+sc.Width], sc.Depth[src:src+sc.Width])
	}
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}
