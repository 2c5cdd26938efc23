package model

import (
	"errors"
	"fmt"
)

// ErrColorChannelMismatch is returned when separate channels differ in length.
var ErrColorChannelMismatch = errors.New("color channels differ in length")

// MergeRGB interleaves separate 0-255 channels into one rgb buffer in [0,1].
// The result has length 3N and keeps R, G, B order per vertex.
func MergeRGB(red, green, blue []uint8) ([]float32, error) {
	if len(red) != len(green) || len(red) != len(blue) {
		return nil, fmt.Errorf("%w: r=%d g=%d b=%d", ErrColorChannelMismatch, len(red), len(green), len(blue))
	}
	out := make([]float32, 0, len(red)*3)
	for i := range red {
		out = append(out,
			float32(red[i])/255,
			float32(green[i])/255,
			float32(blue[i])/255,
		)
	}
	return out, nil
}

// NormalizeColors resolves the color channel for a vertex buffer. A combined
// channel wins and is returned untouched; otherwise separate channels are
// merged. With neither present it returns nil.
func NormalizeColors(combined []float32, red, green, blue []uint8) ([]float32, error) {
	if len(combined) > 0 {
		return combined, nil
	}
	if len(red) == 0 && len(green) == 0 && len(blue) == 0 {
		return nil, nil
	}
	return MergeRGB(red, green, blue)
}

// ColorPolicy picks the material for an untextured asset: vertex colors when
// any are present, otherwise the viewer's flat tint.
func ColorPolicy(colors []float32, tint Color) Material {
	m := Material{
		Shading:     ShadingTint,
		Tint:        tint,
		Opacity:     1,
		DoubleSided: true,
	}
	if len(colors) > 0 {
		m.Shading = ShadingVertexColor
		m.Tint = Color{1, 1, 1}
	}
	return m
}
