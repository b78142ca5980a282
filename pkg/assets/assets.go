// Package assets loads the mesh and texture a viewer session shows and
// watches them for changes on disk.
package assets

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/termrast/pkg/models"
	"github.com/taigrr/termrast/pkg/render"
)

// Options names the files to load.
type Options struct {
	Model          string
	Texture        string // optional; empty falls back to the model's own texture
	MaxTextureSize int    // 0 keeps textures at full size
}

// Bundle is a loaded mesh and the texture to draw it with.
type Bundle struct {
	Mesh    *models.Mesh
	Texture *render.Texture // nil samples as NeutralGray

	// TextureSource says where Texture came from: the texture path, the
	// model's embedded image, or "" when there is none.
	TextureSource string
	LoadTime      time.Duration
}

// Load reads the mesh and texture concurrently. A mesh error is returned;
// a texture error is logged and the bundle falls back to the texture
// embedded in the model, then to untextured gray.
func Load(ctx context.Context, opts Options) (*Bundle, error) {
	start := time.Now()
	log := render.Logger()

	var (
		mesh   *models.Mesh
		tex    *render.Texture
		texErr error
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.Go(func() error {
		m, err := models.Load(opts.Model)
		if err != nil {
			return fmt.Errorf("load mesh: %w", err)
		}
		mesh = m
		return nil
	})
	if opts.Texture != "" {
		g.Go(func() error {
			// Not fatal: the error is reported through texErr.
			tex, texErr = render.LoadTexture(opts.Texture, textureOptions(opts)...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Bundle{Mesh: mesh}
	if tex != nil {
		b.Texture = tex
		b.TextureSource = opts.Texture
	} else {
		if texErr != nil {
			log.Warn("texture unavailable, using fallback", "path", opts.Texture, "err", texErr)
		}
		if mesh.BaseColor != nil {
			b.Texture = render.TextureFromImage(mesh.BaseColor, textureOptions(opts)...)
			b.TextureSource = opts.Model + " (embedded)"
		} else {
			log.Warn("no texture available, sampling gray", "model", opts.Model)
		}
	}

	b.LoadTime = time.Since(start)
	log.Info("assets loaded",
		"model", opts.Model,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"texture", b.TextureSource,
		"duration", b.LoadTime,
	)
	return b, nil
}

func textureOptions(opts Options) []render.TextureOption {
	if opts.MaxTextureSize > 0 {
		return []render.TextureOption{render.WithMaxSize(opts.MaxTextureSize)}
	}
	return nil
}
