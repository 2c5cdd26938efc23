package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

const eps = 1e-4

func newRig(damping float32) (*PerspectiveCamera, *OrbitController) {
	cam := NewPerspectiveCamera(DefaultFOV, 1, DefaultNear, DefaultFar)
	return cam, NewOrbitController(cam, damping)
}

func TestNewPerspectiveCameraDefaults(t *testing.T) {
	cam := NewPerspectiveCamera(DefaultFOV, 0, DefaultNear, DefaultFar)
	if cam.Position != math.V3(0, 0, 5) {
		t.Errorf("Position = %v, want (0,0,5)", cam.Position)
	}
	if cam.Aspect != 1 {
		t.Errorf("Aspect = %v, want 1 for zero input", cam.Aspect)
	}
	if cam.Target() != (math.Vec3{}) {
		t.Errorf("Target = %v, want origin", cam.Target())
	}
}

func TestSetViewport(t *testing.T) {
	cam := NewPerspectiveCamera(DefaultFOV, 1, DefaultNear, DefaultFar)
	cam.SetViewport(800, 400)
	if cam.Aspect != 2 {
		t.Errorf("Aspect = %v, want 2", cam.Aspect)
	}
	cam.SetViewport(0, 400)
	if cam.Aspect != 2 {
		t.Errorf("Aspect = %v after zero width, want unchanged 2", cam.Aspect)
	}
}

func TestUpdateWithoutInputKeepsPose(t *testing.T) {
	tests := []struct {
		name     string
		position math.Vec3
		up       math.Vec3
		target   math.Vec3
	}{
		{"frontal", math.V3(0, 0, 3), math.V3(0, 1, 0), math.V3(0, 0, 0)},
		{"under", math.V3(0, -15, -8), math.V3(0, 0, 1), math.V3(0, 0, 1)},
		{"offset target", math.V3(2, 3, 7), math.V3(0, 1, 0), math.V3(2, 3, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, ctrl := newRig(0.05)
			cam.Position = tt.position
			cam.Up = tt.up
			cam.LookAt(tt.target)
			ctrl.Target = tt.target

			for i := 0; i < 10; i++ {
				ctrl.Update()
			}
			if !cam.Position.ApproxEqual(tt.position, eps) {
				t.Errorf("Position = %v, want %v", cam.Position, tt.position)
			}
			if cam.Target() != tt.target {
				t.Errorf("look target = %v, want %v", cam.Target(), tt.target)
			}
		})
	}
}

func TestRotateWithoutDamping(t *testing.T) {
	cam, ctrl := newRig(0)
	const height = 100
	const angle = 0.5
	dx := float32(angle * height / (2 * gomath.Pi))

	ctrl.Rotate(dx, 0, height)
	ctrl.Update()

	want := math.V3(5*float32(gomath.Sin(-angle)), 0, 5*float32(gomath.Cos(-angle)))
	if !cam.Position.ApproxEqual(want, eps) {
		t.Errorf("Position = %v, want %v", cam.Position, want)
	}

	// Deltas are consumed.
	ctrl.Update()
	if !cam.Position.ApproxEqual(want, eps) {
		t.Errorf("Position moved on idle update: %v", cam.Position)
	}
}

func TestRotateDampingSpreadsMotion(t *testing.T) {
	cam, ctrl := newRig(0.05)
	const height = 100
	const angle = 0.4
	dx := float32(angle * height / (2 * gomath.Pi))
	ctrl.Rotate(dx, 0, height)

	ctrl.Update()
	theta := math.SphericalFromVec3(cam.Position).Theta
	if got, want := theta, float32(-angle*0.05); abs(got-want) > eps {
		t.Errorf("theta after one update = %v, want %v", got, want)
	}

	for i := 0; i < 400; i++ {
		ctrl.Update()
	}
	theta = math.SphericalFromVec3(cam.Position).Theta
	if abs(theta+angle) > 1e-3 {
		t.Errorf("theta after settling = %v, want %v", theta, -angle)
	}
	if d := ctrl.Distance(); abs(d-5) > eps {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestPolarAngleStaysOffPole(t *testing.T) {
	cam, ctrl := newRig(0)
	ctrl.Rotate(0, 1000, 100)
	ctrl.Update()
	if cam.Position.Z <= 0 {
		t.Errorf("Position = %v, want camera kept off the +Y pole", cam.Position)
	}
	view := cam.ViewMatrix()
	for i, v := range view {
		if gomath.IsNaN(float64(v)) {
			t.Fatalf("view matrix element %d is NaN", i)
		}
	}
}

func TestDollyClampsDistance(t *testing.T) {
	tests := []struct {
		name  string
		steps float32
		want  float32
	}{
		{"in to min", 200, 1},
		{"out to max", -200, 15},
		{"small step", 1, 5 * 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ctrl := newRig(0)
			ctrl.MinDistance = 1
			ctrl.MaxDistance = 15
			ctrl.Dolly(tt.steps)
			ctrl.Update()
			if got := ctrl.Distance(); abs(got-tt.want) > eps {
				t.Errorf("Distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPanMovesTargetAndCamera(t *testing.T) {
	cam, ctrl := newRig(0)
	ctrl.Pan(10, 0, 100)
	ctrl.Update()

	if ctrl.Target.X >= 0 {
		t.Errorf("Target.X = %v, want negative after dragging right", ctrl.Target.X)
	}
	if abs(ctrl.Target.Y) > eps || abs(ctrl.Target.Z) > eps {
		t.Errorf("Target = %v, want movement along X only", ctrl.Target)
	}
	if got := cam.Position.Sub(ctrl.Target); !got.ApproxEqual(math.V3(0, 0, 5), eps) {
		t.Errorf("offset = %v, want (0,0,5)", got)
	}
}

func TestPanDisabled(t *testing.T) {
	_, ctrl := newRig(0)
	ctrl.EnablePan = false
	ctrl.Pan(10, 10, 100)
	ctrl.Update()
	if ctrl.Target != (math.Vec3{}) {
		t.Errorf("Target = %v, want origin", ctrl.Target)
	}
}

func TestResetRestoresSavedState(t *testing.T) {
	cam, ctrl := newRig(0.05)
	ctrl.Rotate(30, 20, 100)
	ctrl.Pan(5, 5, 100)
	ctrl.Dolly(3)
	for i := 0; i < 5; i++ {
		ctrl.Update()
	}
	cam.Up = math.V3(0, 0, 1)

	ctrl.Reset()
	if cam.Position != math.V3(0, 0, 5) {
		t.Errorf("Position = %v, want (0,0,5)", cam.Position)
	}
	if cam.Up != math.V3(0, 1, 0) {
		t.Errorf("Up = %v, want +Y", cam.Up)
	}
	if ctrl.Target != (math.Vec3{}) {
		t.Errorf("Target = %v, want origin", ctrl.Target)
	}

	// Pending motion is discarded.
	ctrl.Update()
	if !cam.Position.ApproxEqual(math.V3(0, 0, 5), eps) {
		t.Errorf("Position after update = %v, want (0,0,5)", cam.Position)
	}
}

func TestBasis(t *testing.T) {
	cam, _ := newRig(0)
	right, up := cam.Basis()
	if !right.ApproxEqual(math.V3(1, 0, 0), eps) {
		t.Errorf("right = %v, want +X", right)
	}
	if !up.ApproxEqual(math.V3(0, 1, 0), eps) {
		t.Errorf("up = %v, want +Y", up)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
