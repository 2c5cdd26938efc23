package model

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Transform is the center-and-scale applied by Normalize.
type Transform struct {
	Center [3]float32
	Scale  float32
}

// ComputeBounds returns the axis-aligned box of an xyz buffer.
func ComputeBounds(positions []float32) Bounds {
	if len(positions) < 3 {
		return Bounds{}
	}
	box := vec3d.MinBox
	for i := 0; i+2 < len(positions); i += 3 {
		box.Extend(&vec3d.T{float64(positions[i]), float64(positions[i+1]), float64(positions[i+2])})
	}
	return Bounds{
		Min: [3]float32{float32(box.Min[0]), float32(box.Min[1]), float32(box.Min[2])},
		Max: [3]float32{float32(box.Max[0]), float32(box.Max[1]), float32(box.Max[2])},
	}
}

// Normalize centers an asset on the origin and scales it uniformly so its
// largest extent equals canonical. Zero-extent geometry is only centered.
// The input is not modified; normals are shared since a uniform scale
// does not change them.
func Normalize(a *Asset, canonical float32) (*Asset, Transform) {
	b := ComputeBounds(a.Positions)
	center := b.Center()

	scale := float32(1)
	if ext := b.MaxExtent(); ext > 0 && canonical > 0 {
		scale = canonical / ext
	}

	positions := make([]float32, len(a.Positions))
	for i := 0; i+2 < len(a.Positions); i += 3 {
		positions[i] = (a.Positions[i] - center[0]) * scale
		positions[i+1] = (a.Positions[i+1] - center[1]) * scale
		positions[i+2] = (a.Positions[i+2] - center[2]) * scale
	}

	out := *a
	out.Positions = positions
	out.Bounds = Bounds{
		Min: [3]float32{(b.Min[0] - center[0]) * scale, (b.Min[1] - center[1]) * scale, (b.Min[2] - center[2]) * scale},
		Max: [3]float32{(b.Max[0] - center[0]) * scale, (b.Max[1] - center[1]) * scale, (b.Max[2] - center[2]) * scale},
	}
	return &out, Transform{Center: center, Scale: scale}
}
