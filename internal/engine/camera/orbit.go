package camera

import (
	gomath "math"

	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// Polar angles stay this far away from the poles so LookAt never degenerates.
const polarEpsilon = 1e-6

// OrbitController rotates, dollies and pans a camera around a target point.
// With damping enabled, input accumulates into deltas that decay over
// successive Update calls.
type OrbitController struct {
	cam *PerspectiveCamera

	Target math.Vec3

	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	EnableDamping bool
	DampingFactor float32
	EnablePan     bool

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	sphericalDelta math.Spherical
	scale          float32
	panOffset      math.Vec3

	target0   math.Vec3
	position0 math.Vec3
	up0       math.Vec3
}

// NewOrbitController attaches controls to cam and saves its current pose as
// the neutral state.
func NewOrbitController(cam *PerspectiveCamera, damping float32) *OrbitController {
	c := &OrbitController{
		cam:           cam,
		Target:        cam.Target(),
		MinDistance:   0,
		MaxDistance:   float32(gomath.Inf(1)),
		MinPolar:      0,
		MaxPolar:      gomath.Pi,
		EnableDamping: damping > 0,
		DampingFactor: damping,
		EnablePan:     true,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		scale:         1,
	}
	c.SaveState()
	return c
}

// Camera returns the controlled camera.
func (c *OrbitController) Camera() *PerspectiveCamera {
	return c.cam
}

// SaveState records the current target and camera pose as the neutral state.
func (c *OrbitController) SaveState() {
	c.target0 = c.Target
	c.position0 = c.cam.Position
	c.up0 = c.cam.Up
}

// Reset restores the neutral state and discards pending motion.
func (c *OrbitController) Reset() {
	c.Target = c.target0
	c.cam.Position = c.position0
	c.cam.Up = c.up0
	c.cam.LookAt(c.Target)
	c.sphericalDelta = math.Spherical{}
	c.panOffset = math.Vec3{}
	c.scale = 1
}

// Rotate orbits by a pointer drag of (dx, dy) pixels on a surface of the given height.
func (c *OrbitController) Rotate(dx, dy float32, height int) {
	if height <= 0 {
		return
	}
	h := float32(height)
	c.sphericalDelta.Theta -= 2 * gomath.Pi * dx / h * c.RotateSpeed
	c.sphericalDelta.Phi -= 2 * gomath.Pi * dy / h * c.RotateSpeed
}

// Dolly zooms by wheel steps. Positive steps move toward the target.
func (c *OrbitController) Dolly(steps float32) {
	c.scale *= float32(gomath.Pow(0.95, float64(steps*c.ZoomSpeed)))
}

// Pan shifts the target by a pointer drag of (dx, dy) pixels in screen space.
func (c *OrbitController) Pan(dx, dy float32, height int) {
	if !c.EnablePan || height <= 0 {
		return
	}
	offset := c.cam.Position.Sub(c.Target)
	targetDistance := offset.Length() * float32(gomath.Tan(float64(math.Radians(c.cam.FOV))/2))
	h := float32(height)

	right, up := c.cam.Basis()
	left := right.Scale(-2 * dx * targetDistance / h * c.PanSpeed)
	upward := up.Scale(2 * dy * targetDistance / h * c.PanSpeed)
	c.panOffset = c.panOffset.Add(left).Add(upward)
}

// Update applies pending input to the camera. Call once per frame.
func (c *OrbitController) Update() {
	// Orbit in a frame where the camera's up vector is +Y.
	toYUp := math.QuatFromUnitVectors(c.cam.Up.Normalize(), math.V3(0, 1, 0))
	fromYUp := toYUp.Conjugate()

	offset := toYUp.Rotate(c.cam.Position.Sub(c.Target))
	s := math.SphericalFromVec3(offset)

	if c.EnableDamping {
		s.Theta += c.sphericalDelta.Theta * c.DampingFactor
		s.Phi += c.sphericalDelta.Phi * c.DampingFactor
	} else {
		s.Theta += c.sphericalDelta.Theta
		s.Phi += c.sphericalDelta.Phi
	}
	s.Phi = math.Clamp(s.Phi, c.MinPolar, c.MaxPolar)
	s.Phi = math.Clamp(s.Phi, polarEpsilon, gomath.Pi-polarEpsilon)

	s.Radius = math.Clamp(s.Radius*c.scale, c.MinDistance, c.MaxDistance)

	if c.EnableDamping {
		c.Target = c.Target.Add(c.panOffset.Scale(c.DampingFactor))
	} else {
		c.Target = c.Target.Add(c.panOffset)
	}

	c.cam.Position = c.Target.Add(fromYUp.Rotate(s.Vec3()))
	c.cam.LookAt(c.Target)

	if c.EnableDamping {
		decay := 1 - c.DampingFactor
		c.sphericalDelta.Theta *= decay
		c.sphericalDelta.Phi *= decay
		c.panOffset = c.panOffset.Scale(decay)
	} else {
		c.sphericalDelta = math.Spherical{}
		c.panOffset = math.Vec3{}
	}
	c.scale = 1
}

// Distance returns the current camera-to-target distance.
func (c *OrbitController) Distance() float32 {
	return c.cam.Position.Distance(c.Target)
}
