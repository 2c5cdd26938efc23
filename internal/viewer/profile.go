package viewer

import (
	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// Default view tints.
const (
	TintCBCT = 0xffffff
	TintSkin = 0xffdbac
)

// CBCTCentroid is the calibrated CBCT volume center used when the fixed
// centroid override is enabled.
var CBCTCentroid = math.V3(2.65, 14.21, 2.30)

// CameraProfile is the per-view framing policy.
type CameraProfile struct {
	Viewer ViewerType

	Offset   math.Vec3 // camera position relative to the target
	Up       math.Vec3
	LookBias math.Vec3 // look-at point relative to the target

	MinDistance float32
	MaxDistance float32

	Canonical   float32 // largest extent after normalization
	Tint        model.Color
	Placeholder model.PlaceholderKind

	UseFixedCentroid bool
	FixedCentroid    math.Vec3
}

// DefaultProfile returns the built-in profile for a view.
func DefaultProfile(v ViewerType) CameraProfile {
	if v == CBCT {
		// Looks up from below and behind, Z up.
		return CameraProfile{
			Viewer:        CBCT,
			Offset:        math.V3(0, -15, -8),
			Up:            math.V3(0, 0, 1),
			LookBias:      math.V3(0, 0, 1),
			MinDistance:   0.1,
			MaxDistance:   50,
			Canonical:     12,
			Tint:          model.ColorFromHex(TintCBCT),
			Placeholder:   model.PlaceholderBox,
			FixedCentroid: CBCTCentroid,
		}
	}
	return CameraProfile{
		Viewer:      v,
		Offset:      math.V3(0, 0, 3),
		Up:          math.V3(0, 1, 0),
		MinDistance: 1,
		MaxDistance: 15,
		Canonical:   3,
		Tint:        model.ColorFromHex(TintSkin),
		Placeholder: model.PlaceholderHead,
	}
}

// DefaultProfiles returns the built-in profiles indexed by view.
func DefaultProfiles() [Count]CameraProfile {
	var out [Count]CameraProfile
	for _, v := range Types() {
		out[v] = DefaultProfile(v)
	}
	return out
}

// ProfilesFromConfig applies the camera section to the built-in profiles.
func ProfilesFromConfig(cfg config.CameraConfig) [Count]CameraProfile {
	out := DefaultProfiles()
	out[CBCT].UseFixedCentroid = cfg.UseFixedCBCTCentroid
	out[CBCT].FixedCentroid = math.FromArray(cfg.CBCTCentroid)
	return out
}

// Target returns the point a loaded asset is framed around. Placeholders
// sit at the origin; otherwise the CBCT view may use the fixed centroid.
func (p CameraProfile) Target(a *model.Asset) math.Vec3 {
	if a == nil || a.Placeholder {
		return math.Vec3{}
	}
	if p.UseFixedCentroid {
		return p.FixedCentroid
	}
	return math.FromArray(a.Bounds.Center())
}
