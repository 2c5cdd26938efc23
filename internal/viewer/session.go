package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/engine/camera"
	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// ErrInvalidTransition is returned for a loading state change the state
// machine does not allow.
var ErrInvalidTransition = errors.New("invalid loading state transition")

// LoadingState is the load lifecycle of a session.
type LoadingState int

const (
	StateIdle LoadingState = iota
	StateLoading
	StateReady
	StatePlaceholder
)

// String returns the state name.
func (s LoadingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether a load outcome is known.
func (s LoadingState) Terminal() bool {
	return s == StateReady || s == StatePlaceholder
}

// CanTransition reports whether s may change to next.
func (s LoadingState) CanTransition(next LoadingState) bool {
	switch s {
	case StateIdle, StateReady, StatePlaceholder:
		return next == StateLoading
	case StateLoading:
		return next == StateReady || next == StatePlaceholder
	}
	return false
}

// Surface is where a session draws. The GL implementation lives in the
// renderer package; NullSurface serves headless runs and tests.
type Surface interface {
	Attach(a *model.Asset) error
	Release()
	Resize(width, height int)
	Size() (width, height int)
	Draw(cam *camera.PerspectiveCamera)
	Snapshot() (*image.RGBA, error)
	Destroy()
}

// SessionConfig holds the camera settings shared by all sessions.
type SessionConfig struct {
	FOV     float32
	Near    float32
	Far     float32
	Damping float32
}

// DefaultSessionConfig matches the default scene setup.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FOV:     camera.DefaultFOV,
		Near:    camera.DefaultNear,
		Far:     camera.DefaultFar,
		Damping: 0.05,
	}
}

// Session is one view: a surface, a camera with its orbit controller, a
// loading overlay and at most one attached asset. It is owned by the render
// loop goroutine and is not safe for concurrent use.
type Session struct {
	viewer     ViewerType
	profile    CameraProfile
	surface    Surface
	camera     *camera.PerspectiveCamera
	controller *camera.OrbitController
	tracker    *Tracker
	log        *zap.Logger

	state      LoadingState
	generation uint64
	caseID     string
	cancel     context.CancelFunc

	asset  *model.Asset
	result Result
}

// NewSession creates an idle session drawing into surface.
func NewSession(v ViewerType, profile CameraProfile, surface Surface, cfg SessionConfig) *Session {
	w, h := surface.Size()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	cam := camera.NewPerspectiveCamera(cfg.FOV, aspect, cfg.Near, cfg.Far)
	return &Session{
		viewer:     v,
		profile:    profile,
		surface:    surface,
		camera:     cam,
		controller: camera.NewOrbitController(cam, cfg.Damping),
		tracker:    NewTracker(v),
		log:        logger.Viewer(v.Tag()),
	}
}

func (s *Session) setState(next LoadingState) error {
	if !s.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, next)
	}
	s.state = next
	return nil
}

// Begin starts a load for caseID. The current asset is released before
// the new request exists, and any in-flight request is cancelled and
// invalidated. It returns the request context and generation.
func (s *Session) Begin(parent context.Context, caseID string) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.release()

	if s.state != StateLoading {
		// Loading -> Loading is a case switch mid-flight; the state holds.
		_ = s.setState(StateLoading)
	}
	s.generation++
	s.caseID = caseID
	s.result = Result{}
	s.tracker.Raise()

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return ctx, s.generation
}

// Complete consumes a load result. Results from an older generation are
// dropped and false is returned.
func (s *Session) Complete(res Result) (bool, error) {
	if res.Request.Generation != s.generation || s.state != StateLoading {
		s.log.Debug("dropping stale result",
			zap.String("case", res.Request.CaseID),
			zap.Uint64("generation", res.Request.Generation),
			zap.Uint64("current", s.generation),
		)
		return false, nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if err := s.surface.Attach(res.Asset); err != nil {
		res.Failures = append(res.Failures, fmt.Errorf("attach: %w", err))
		s.log.Warn("attach failed, using placeholder", zap.String("case", s.caseID), zap.Error(err))
		res.Asset = model.NewPlaceholder(s.profile.Placeholder, s.profile.Tint)
		res.Tier = TierPlaceholder
		if err := s.surface.Attach(res.Asset); err != nil {
			s.log.Error("placeholder attach failed", zap.Error(err))
		}
	}
	s.asset = res.Asset
	s.result = res

	next := StateReady
	if res.Placeholder() {
		next = StatePlaceholder
	}
	if err := s.setState(next); err != nil {
		return true, err
	}
	s.tracker.Clear()
	s.place()
	return true, nil
}

// Progress records byte progress for the current generation.
func (s *Session) Progress(generation uint64, loaded, total int64) {
	if generation != s.generation {
		return
	}
	s.tracker.SetProgress(loaded, total)
}

// ResetView re-frames the current model after manual orbiting. It is a
// no-op while loading.
func (s *Session) ResetView() bool {
	if !s.state.Terminal() {
		return false
	}
	s.place()
	return true
}

func (s *Session) place() {
	Place(s.profile, s.controller, s.camera, s.profile.Target(s.asset))
}

func (s *Session) release() {
	if s.asset == nil {
		return
	}
	s.surface.Release()
	s.asset = nil
}

// Resize updates the surface and the camera aspect.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.surface.Resize(width, height)
	s.camera.SetViewport(width, height)
}

// Update advances the orbit controller one frame.
func (s *Session) Update() {
	s.controller.Update()
}

// Draw renders the session. An empty session draws the background only.
func (s *Session) Draw() {
	s.surface.Draw(s.camera)
}

// Snapshot reads back the last drawn frame.
func (s *Session) Snapshot() (*image.RGBA, error) {
	return s.surface.Snapshot()
}

// Close cancels any pending load and frees the surface.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.release()
	s.surface.Destroy()
}

// Viewer returns the session's view type.
func (s *Session) Viewer() ViewerType { return s.viewer }

// State returns the loading state.
func (s *Session) State() LoadingState { return s.state }

// Generation returns the current request generation.
func (s *Session) Generation() uint64 { return s.generation }

// CaseID returns the case being shown or loaded.
func (s *Session) CaseID() string { return s.caseID }

// Asset returns the attached asset, nil while loading.
func (s *Session) Asset() *model.Asset { return s.asset }

// Result returns the last consumed load result.
func (s *Session) Result() Result { return s.result }

// Tracker returns the loading overlay.
func (s *Session) Tracker() *Tracker { return s.tracker }

// Camera returns the session camera.
func (s *Session) Camera() *camera.PerspectiveCamera { return s.camera }

// Controller returns the orbit controller.
func (s *Session) Controller() *camera.OrbitController { return s.controller }

// Surface returns the draw surface.
func (s *Session) Surface() Surface { return s.surface }

// Profile returns the camera profile.
func (s *Session) Profile() CameraProfile { return s.profile }

// LookAt returns the orbit target, the point the camera turns around.
func (s *Session) LookAt() math.Vec3 { return s.controller.Target }

// NullSurface is a Surface that keeps the attached asset and counts calls
// without touching the GPU.
type NullSurface struct {
	Attached *model.Asset
	Attaches int
	Releases int
	Draws    int
	Width    int
	Height   int
	Fill     [4]uint8
}

// NewNullSurface creates a null surface of the given size.
func NewNullSurface(width, height int) *NullSurface {
	return &NullSurface{Width: width, Height: height, Fill: [4]uint8{0xf7, 0xfa, 0xfc, 0xff}}
}

// Attach implements Surface.
func (n *NullSurface) Attach(a *model.Asset) error {
	if a == nil {
		return errors.New("nil asset")
	}
	if n.Attached != nil {
		n.Release()
	}
	n.Attached = a
	n.Attaches++
	return nil
}

// Release implements Surface.
func (n *NullSurface) Release() {
	if n.Attached == nil {
		return
	}
	n.Attached = nil
	n.Releases++
}

// Resize implements Surface.
func (n *NullSurface) Resize(width, height int) {
	n.Width, n.Height = width, height
}

// Size implements Surface.
func (n *NullSurface) Size() (int, int) {
	return n.Width, n.Height
}

// Draw implements Surface.
func (n *NullSurface) Draw(*camera.PerspectiveCamera) {
	n.Draws++
}

// Snapshot returns a frame filled with the background color.
func (n *NullSurface) Snapshot() (*image.RGBA, error) {
	if n.Width <= 0 || n.Height <= 0 {
		return nil, errors.New("empty surface")
	}
	img := image.NewRGBA(image.Rect(0, 0, n.Width, n.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], n.Fill[:])
	}
	return img, nil
}

// Destroy implements Surface.
func (n *NullSurface) Destroy() {
	n.Release()
}
