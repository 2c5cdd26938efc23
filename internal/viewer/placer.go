package viewer

import (
	"github.com/Faultbox/iqhfm-eval/internal/engine/camera"
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// CameraPose is a computed camera placement.
type CameraPose struct {
	Position    math.Vec3
	Up          math.Vec3
	LookAt      math.Vec3 // also the orbit target
	MinDistance float32
	MaxDistance float32
}

// Pose computes the placement for target without touching any camera.
func Pose(p CameraProfile, target math.Vec3) CameraPose {
	return CameraPose{
		Position:    target.Add(p.Offset),
		Up:          p.Up,
		LookAt:      target.Add(p.LookBias),
		MinDistance: p.MinDistance,
		MaxDistance: p.MaxDistance,
	}
}

// Place resets the controller to its neutral state, then applies the pose
// for target to cam and the controller.
func Place(p CameraProfile, ctrl *camera.OrbitController, cam *camera.PerspectiveCamera, target math.Vec3) CameraPose {
	pose := Pose(p, target)

	ctrl.Reset()
	cam.Position = pose.Position
	cam.Up = pose.Up
	cam.LookAt(pose.LookAt)
	ctrl.Target = pose.LookAt
	ctrl.MinDistance = pose.MinDistance
	ctrl.MaxDistance = pose.MaxDistance
	ctrl.Update()

	return pose
}
