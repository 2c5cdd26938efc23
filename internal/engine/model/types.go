// Package model holds renderable model assets and the geometry passes
// (normals, color merge, bounds normalization, placeholders) applied to them.
package model

import "image"

// Format tags where an asset's geometry came from.
type Format int

const (
	FormatMesh       Format = iota // OBJ triangle mesh with optional texcoords
	FormatCloud                    // PLY point/triangle cloud with optional vertex color
	FormatProcedural               // generated placeholder
)

// String returns the format tag.
func (f Format) String() string {
	switch f {
	case FormatMesh:
		return "mesh"
	case FormatCloud:
		return "cloud"
	case FormatProcedural:
		return "procedural"
	default:
		return "unknown"
	}
}

// Primitive is how the index (or vertex) stream is assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
	Points
)

// Shading selects the surface color source.
type Shading int

const (
	ShadingTint        Shading = iota // flat material color
	ShadingVertexColor                // per-vertex Colors buffer
	ShadingTexture                    // diffuse texture sampled with TexCoords
)

// String returns the shading name.
func (s Shading) String() string {
	switch s {
	case ShadingTint:
		return "tint"
	case ShadingVertexColor:
		return "vertex-color"
	case ShadingTexture:
		return "texture"
	default:
		return "unknown"
	}
}

// Color is a linear RGB triple in [0,1].
type Color [3]float32

// ColorFromHex converts 0xRRGGBB.
func ColorFromHex(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

// Material describes how an asset is shaded.
type Material struct {
	Shading     Shading
	Tint        Color
	Opacity     float32
	DoubleSided bool
	Texture     *image.RGBA
	TextureName string
}

// Transparent reports whether blending is needed.
func (m Material) Transparent() bool {
	return m.Opacity < 1
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the box center.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the extent along each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// MaxExtent returns the largest axis extent.
func (b Bounds) MaxExtent() float32 {
	s := b.Size()
	m := s[0]
	if s[1] > m {
		m = s[1]
	}
	if s[2] > m {
		m = s[2]
	}
	return m
}

// Asset is a renderable model. Treat it as immutable once built: passes
// that change geometry return a new Asset.
type Asset struct {
	Name      string
	Format    Format
	Primitive Primitive

	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex, may be nil for point clouds
	Colors    []float32 // rgb per vertex in [0,1], nil if absent
	TexCoords []float32 // uv per vertex, nil if absent
	Indices   []uint32  // nil means draw vertices in order

	Material    Material
	Bounds      Bounds
	Placeholder bool
}

// VertexCount returns the number of vertices.
func (a *Asset) VertexCount() int {
	return len(a.Positions) / 3
}

// ElementCount returns the number of indices, or vertices when unindexed.
func (a *Asset) ElementCount() int {
	if len(a.Indices) > 0 {
		return len(a.Indices)
	}
	return a.VertexCount()
}

// HasColors reports whether a per-vertex color buffer is present.
func (a *Asset) HasColors() bool {
	return len(a.Colors) > 0 && len(a.Colors) == len(a.Positions)
}

// Textured reports whether the asset carries a bound diffuse texture.
func (a *Asset) Textured() bool {
	return a.Material.Shading == ShadingTexture && a.Material.Texture != nil && len(a.TexCoords) > 0
}
