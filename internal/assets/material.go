package assets

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/iqhfm-eval/internal/engine/texture"
	"github.com/Faultbox/iqhfm-eval/pkg/formats"
)

// Material is the resolved shared material: the MTL entry plus its decoded
// diffuse texture.
type Material struct {
	Name        string
	Diffuse     [3]float32
	Opacity     float32
	TextureName string
	TexturePath string
	Texture     *image.RGBA
}

// LoadMaterial reads the shared material library and decodes the first
// diffuse texture it names. Every failure wraps ErrMaterialUnresolved.
func (m *Manager) LoadMaterial(ctx context.Context) (*Material, error) {
	path := m.MaterialPath()
	if !m.Exists(path) {
		return nil, fmt.Errorf("%w: %s missing", ErrMaterialUnresolved, filepath.Base(path))
	}

	mats, err := formats.LoadMTL(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaterialUnresolved, err)
	}
	mtl, ok := formats.Textured(mats)
	if !ok {
		return nil, fmt.Errorf("%w: no diffuse texture in %s", ErrMaterialUnresolved, filepath.Base(path))
	}

	texPath, err := m.ResolveTexture(mtl.DiffuseTexture)
	if err != nil {
		return nil, err
	}
	if !texture.Supported(texPath) {
		return nil, fmt.Errorf("%w: unsupported texture %s", ErrMaterialUnresolved, filepath.Base(texPath))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, ok := m.cache.Get(texPath)
	if !ok {
		img, err = texture.Load(texPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMaterialUnresolved, err)
		}
		m.cache.Set(texPath, img)
	}

	return &Material{
		Name:        mtl.Name,
		Diffuse:     mtl.Diffuse,
		Opacity:     mtl.Opacity,
		TextureName: mtl.DiffuseTexture,
		TexturePath: texPath,
		Texture:     img,
	}, nil
}

// ResolveTexture finds a texture referenced by the material library: as
// written (relative to the models directory unless absolute), then by
// basename inside the models directory.
func (m *Manager) ResolveTexture(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return "", fmt.Errorf("%w: empty texture name", ErrMaterialUnresolved)
	}
	root := m.Root()

	candidates := []string{filepath.Join(root, filepath.FromSlash(name))}
	if filepath.IsAbs(name) {
		candidates = []string{filepath.FromSlash(name)}
	}
	candidates = append(candidates, filepath.Join(root, filepath.Base(filepath.FromSlash(name))))

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: texture %s not found", ErrMaterialUnresolved, name)
}
