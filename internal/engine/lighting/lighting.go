// Package lighting describes the fixed light rig shared by every view.
package lighting

import (
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// MaxDirectional is the number of directional lights the shaders accept.
const MaxDirectional = 2

// Ambient is uniform light applied to every surface.
type Ambient struct {
	Color     [3]float32
	Intensity float32
}

// Directional is a light infinitely far away shining toward the origin.
type Directional struct {
	Direction [3]float32 // unit vector from the surface toward the light
	Color     [3]float32
	Intensity float32
}

// NewDirectional creates a white light placed at pos aimed at the origin.
func NewDirectional(pos math.Vec3, intensity float32) Directional {
	return Directional{
		Direction: pos.Normalize().Array(),
		Color:     [3]float32{1, 1, 1},
		Intensity: intensity,
	}
}

// Rig is an ambient term plus a key and a fill light.
type Rig struct {
	Ambient Ambient
	Key     Directional
	Fill    Directional
}

// DefaultRig returns the studio lighting used for anatomical models:
// ambient 0.6, key 0.8 from (5,5,5) and fill 0.3 from (-5,2,-5).
func DefaultRig() Rig {
	return Rig{
		Ambient: Ambient{Color: [3]float32{1, 1, 1}, Intensity: 0.6},
		Key:     NewDirectional(math.V3(5, 5, 5), 0.8),
		Fill:    NewDirectional(math.V3(-5, 2, -5), 0.3),
	}
}

// Directionals returns the directional lights in shader slot order.
func (r Rig) Directionals() [MaxDirectional]Directional {
	return [MaxDirectional]Directional{r.Key, r.Fill}
}

// Irradiance evaluates Lambert lighting for a surface normal. Back faces are
// lit with the flipped normal, matching double-sided rendering.
func (r Rig) Irradiance(normal math.Vec3, viewDir math.Vec3) [3]float32 {
	n := normal.Normalize()
	if n.Dot(viewDir) < 0 {
		n = n.Scale(-1)
	}
	out := [3]float32{
		r.Ambient.Color[0] * r.Ambient.Intensity,
		r.Ambient.Color[1] * r.Ambient.Intensity,
		r.Ambient.Color[2] * r.Ambient.Intensity,
	}
	for _, l := range r.Directionals() {
		d := n.Dot(math.FromArray(l.Direction))
		if d <= 0 {
			continue
		}
		for i := range out {
			out[i] += l.Color[i] * l.Intensity * d
		}
	}
	return out
}
