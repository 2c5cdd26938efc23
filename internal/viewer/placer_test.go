package viewer

import (
	"testing"

	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/engine/camera"
	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

func newRig() (*camera.PerspectiveCamera, *camera.OrbitController) {
	cam := camera.NewPerspectiveCamera(camera.DefaultFOV, 1, camera.DefaultNear, camera.DefaultFar)
	return cam, camera.NewOrbitController(cam, 0.05)
}

func TestPose(t *testing.T) {
	target := math.V3(1, 2, 3)
	tests := []struct {
		viewer   ViewerType
		position math.Vec3
		up       math.Vec3
		lookAt   math.Vec3
		min, max float32
	}{
		{CBCT, math.V3(1, -13, -5), math.V3(0, 0, 1), math.V3(1, 2, 4), 0.1, 50},
		{FaceScan, math.V3(1, 2, 6), math.V3(0, 1, 0), target, 1, 15},
		{Reconstruction, math.V3(1, 2, 6), math.V3(0, 1, 0), target, 1, 15},
	}
	for _, tt := range tests {
		t.Run(tt.viewer.Tag(), func(t *testing.T) {
			p := Pose(DefaultProfile(tt.viewer), target)
			if p.Position != tt.position || p.Up != tt.up || p.LookAt != tt.lookAt {
				t.Errorf("Pose() = %+v, want position %v up %v look %v", p, tt.position, tt.up, tt.lookAt)
			}
			if p.MinDistance != tt.min || p.MaxDistance != tt.max {
				t.Errorf("clamp = [%v, %v], want [%v, %v]", p.MinDistance, p.MaxDistance, tt.min, tt.max)
			}
			if again := Pose(DefaultProfile(tt.viewer), target); again != p {
				t.Errorf("Pose() not deterministic: %+v vs %+v", again, p)
			}
		})
	}
}

func TestPlaceIsDeterministic(t *testing.T) {
	for _, v := range Types() {
		t.Run(v.Tag(), func(t *testing.T) {
			profile := DefaultProfile(v)
			target := math.V3(0.5, -1, 2)

			camA, ctrlA := newRig()
			Place(profile, ctrlA, camA, target)

			// A rig that was orbited, zoomed and panned first ends up in the same pose.
			camB, ctrlB := newRig()
			ctrlB.Rotate(120, -40, 600)
			ctrlB.Dolly(3)
			ctrlB.Pan(30, 10, 600)
			for i := 0; i < 10; i++ {
				ctrlB.Update()
			}
			Place(profile, ctrlB, camB, target)

			if !camA.Position.ApproxEqual(camB.Position, 1e-4) {
				t.Errorf("positions differ: %v vs %v", camA.Position, camB.Position)
			}
			if !ctrlA.Target.ApproxEqual(ctrlB.Target, 1e-4) {
				t.Errorf("targets differ: %v vs %v", ctrlA.Target, ctrlB.Target)
			}
			if camA.Up != camB.Up {
				t.Errorf("up differs: %v vs %v", camA.Up, camB.Up)
			}

			pose := Pose(profile, target)
			if !camA.Position.ApproxEqual(pose.Position, 1e-3) {
				t.Errorf("Position = %v, want %v", camA.Position, pose.Position)
			}
			if ctrlA.MinDistance != pose.MinDistance || ctrlA.MaxDistance != pose.MaxDistance {
				t.Errorf("clamp = [%v, %v], want [%v, %v]", ctrlA.MinDistance, ctrlA.MaxDistance, pose.MinDistance, pose.MaxDistance)
			}
		})
	}
}

func TestProfileTarget(t *testing.T) {
	asset := &model.Asset{Bounds: model.Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{2, 4, 6}}}
	placeholder := model.NewPlaceholder(model.PlaceholderBox, model.Color{1, 1, 1})

	cfg := config.Default().Camera
	cfg.UseFixedCBCTCentroid = true
	fixed := ProfilesFromConfig(cfg)[CBCT]

	tests := []struct {
		name    string
		profile CameraProfile
		asset   *model.Asset
		want    math.Vec3
	}{
		{"bounds center", DefaultProfile(CBCT), asset, math.V3(1, 2, 3)},
		{"fixed centroid", fixed, asset, math.V3(2.65, 14.21, 2.30)},
		{"placeholder ignores centroid", fixed, placeholder, math.Vec3{}},
		{"nil asset", DefaultProfile(FaceScan), nil, math.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.Target(tt.asset); !got.ApproxEqual(tt.want, 1e-6) {
				t.Errorf("Target() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfilesFromConfigDefaultsOff(t *testing.T) {
	p := ProfilesFromConfig(config.Default().Camera)
	if p[CBCT].UseFixedCentroid {
		t.Error("fixed centroid enabled by default")
	}
	if p[CBCT].FixedCentroid != CBCTCentroid {
		t.Errorf("FixedCentroid = %v, want %v", p[CBCT].FixedCentroid, CBCTCentroid)
	}
	if p[FaceScan].Tint != model.ColorFromHex(TintSkin) {
		t.Errorf("face tint = %v", p[FaceScan].Tint)
	}
}
