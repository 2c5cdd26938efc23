package model

import gomath "math"

// PlaceholderKind selects the stand-in shape for a failed load.
type PlaceholderKind int

const (
	PlaceholderBox  PlaceholderKind = iota // wireframe volume
	PlaceholderHead                        // sphere with two eyes
)

// Placeholder dimensions.
const (
	BoxWidth   = 8
	BoxHeight  = 10
	BoxDepth   = 6
	BoxOpacity = 0.8

	HeadRadius            = 1.2
	HeadWidthSegs         = 32
	HeadHeightSegs        = 16
	EyeRadius             = 0.1
	EyeSegments           = 8
	EyeOffsetX            = 0.3
	EyeOffsetY            = 0.2
	EyeOffsetZ            = 1.0
	EyeColor       uint32 = 0x333333
)

// NewPlaceholder builds the stand-in asset for a kind. The box is white;
// the head uses tint for the skin.
func NewPlaceholder(kind PlaceholderKind, tint Color) *Asset {
	if kind == PlaceholderBox {
		return WireframeBox(BoxWidth, BoxHeight, BoxDepth, Color{1, 1, 1}, BoxOpacity)
	}
	return HeadDummy(tint)
}

// WireframeBox returns a line-list box centered on the origin.
func WireframeBox(width, height, depth float32, c Color, opacity float32) *Asset {
	x, y, z := width/2, height/2, depth/2
	positions := []float32{
		// Bottom face
		-x, -y, -z, x, -y, -z,
		x, -y, -z, x, -y, z,
		x, -y, z, -x, -y, z,
		-x, -y, z, -x, -y, -z,
		// Top face
		-x, y, -z, x, y, -z,
		x, y, -z, x, y, z,
		x, y, z, -x, y, z,
		-x, y, z, -x, y, -z,
		// Vertical edges
		-x, -y, -z, -x, y, -z,
		x, -y, -z, x, y, -z,
		x, -y, z, x, y, z,
		-x, -y, z, -x, y, z,
	}
	return &Asset{
		Name:      "placeholder:box",
		Format:    FormatProcedural,
		Primitive: Lines,
		Positions: positions,
		Material: Material{
			Shading:     ShadingTint,
			Tint:        c,
			Opacity:     opacity,
			DoubleSided: true,
		},
		Bounds:      ComputeBounds(positions),
		Placeholder: true,
	}
}

// HeadDummy returns a skin sphere with two dark eye spheres, merged into a
// single vertex-colored mesh.
func HeadDummy(skin Color) *Asset {
	a := &Asset{
		Name:      "placeholder:head",
		Format:    FormatProcedural,
		Primitive: Triangles,
		Material: Material{
			Shading:     ShadingVertexColor,
			Tint:        Color{1, 1, 1},
			Opacity:     1,
			DoubleSided: true,
		},
		Placeholder: true,
	}
	eye := ColorFromHex(EyeColor)
	appendSphere(a, [3]float32{0, 0, 0}, HeadRadius, HeadWidthSegs, HeadHeightSegs, skin)
	appendSphere(a, [3]float32{-EyeOffsetX, EyeOffsetY, EyeOffsetZ}, EyeRadius, EyeSegments, EyeSegments, eye)
	appendSphere(a, [3]float32{EyeOffsetX, EyeOffsetY, EyeOffsetZ}, EyeRadius, EyeSegments, EyeSegments, eye)
	a.Bounds = ComputeBounds(a.Positions)
	return a
}

// appendSphere adds a UV sphere to a, colored c.
func appendSphere(a *Asset, center [3]float32, radius float32, widthSegs, heightSegs int, c Color) {
	base := uint32(a.VertexCount())
	for iy := 0; iy <= heightSegs; iy++ {
		v := float64(iy) / float64(heightSegs)
		phi := v * gomath.Pi
		for ix := 0; ix <= widthSegs; ix++ {
			u := float64(ix) / float64(widthSegs)
			theta := u * 2 * gomath.Pi

			nx := float32(-gomath.Cos(theta) * gomath.Sin(phi))
			ny := float32(gomath.Cos(phi))
			nz := float32(gomath.Sin(theta) * gomath.Sin(phi))

			a.Positions = append(a.Positions, center[0]+radius*nx, center[1]+radius*ny, center[2]+radius*nz)
			a.Normals = append(a.Normals, nx, ny, nz)
			a.Colors = append(a.Colors, c[0], c[1], c[2])
			a.TexCoords = append(a.TexCoords, float32(u), float32(1-v))
		}
	}

	row := uint32(widthSegs + 1)
	for iy := 0; iy < heightSegs; iy++ {
		for ix := 0; ix < widthSegs; ix++ {
			p0 := base + uint32(iy)*row + uint32(ix)
			p1 := p0 + 1
			p2 := p0 + row
			p3 := p2 + 1
			// Skip the degenerate triangles at the poles.
			if iy != 0 {
				a.Indices = append(a.Indices, p0, p2, p1)
			}
			if iy != heightSegs-1 {
				a.Indices = append(a.Indices, p1, p2, p3)
			}
		}
	}
}
