// Package camera provides the perspective camera and orbit controls used by each view.
package camera

import (
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// Default projection parameters.
const (
	DefaultFOV  = 75.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// PerspectiveCamera is a positioned camera with a look-at point and up vector.
type PerspectiveCamera struct {
	Position math.Vec3
	Up       math.Vec3

	FOV    float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32

	target math.Vec3
}

// NewPerspectiveCamera creates a camera at (0,0,5) looking at the origin with +Y up.
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	if aspect <= 0 {
		aspect = 1
	}
	return &PerspectiveCamera{
		Position: math.V3(0, 0, 5),
		Up:       math.V3(0, 1, 0),
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// LookAt points the camera at p.
func (c *PerspectiveCamera) LookAt(p math.Vec3) {
	c.target = p
}

// Target returns the point the camera looks at.
func (c *PerspectiveCamera) Target() math.Vec3 {
	return c.target
}

// SetViewport updates the aspect ratio from a surface size in pixels.
// Zero-sized surfaces keep the previous aspect.
func (c *PerspectiveCamera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-camera transform.
func (c *PerspectiveCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.target, c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *PerspectiveCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(math.Radians(c.FOV), c.Aspect, c.Near, c.Far)
}

// Basis returns the camera's right and up vectors in world space.
func (c *PerspectiveCamera) Basis() (right, up math.Vec3) {
	forward := c.target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return right, up
}
