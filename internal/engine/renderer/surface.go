package renderer

import (
	"errors"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/engine/camera"
	"github.com/Faultbox/iqhfm-eval/internal/engine/framebuffer"
	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

// ErrNoAsset is returned when attaching a nil asset.
var ErrNoAsset = errors.New("no asset to attach")

// Surface is one view's offscreen render target plus its uploaded model.
type Surface struct {
	name  string
	r     *Renderer
	fb    *framebuffer.Framebuffer
	mesh  *gpuMesh
	asset *model.Asset
}

func newSurface(r *Renderer, name string, width, height int) (*Surface, error) {
	fb, err := framebuffer.New(width, height)
	if err != nil {
		return nil, err
	}
	return &Surface{name: name, r: r, fb: fb}, nil
}

// Attach uploads a as the surface's model, releasing any previous one first.
func (s *Surface) Attach(a *model.Asset) error {
	if a == nil {
		return ErrNoAsset
	}
	s.Release()
	s.mesh = uploadMesh(a)
	s.asset = a
	logger.Debug("surface attached model",
		zap.String("surface", s.name),
		zap.String("asset", a.Name),
		zap.Int("vertices", a.VertexCount()),
		zap.Uint32("vao", s.mesh.vao),
	)
	return nil
}

// Release frees the GPU buffers of the current model.
func (s *Surface) Release() {
	if s.mesh != nil {
		s.mesh.release()
		s.mesh = nil
	}
	s.asset = nil
}

// Resize changes the render target size.
func (s *Surface) Resize(width, height int) {
	s.fb.Resize(width, height)
}

// Size returns the render target size in pixels.
func (s *Surface) Size() (width, height int) {
	return s.fb.Size()
}

// ColorTexture returns the GL texture holding the last drawn frame.
func (s *Surface) ColorTexture() uint32 {
	return s.fb.ColorTexture()
}

// FBO returns the framebuffer object, for blitting.
func (s *Surface) FBO() uint32 {
	return s.fb.FBO()
}

// Draw clears the surface and renders the attached model from cam.
func (s *Surface) Draw(cam *camera.PerspectiveCamera) {
	restore := s.fb.Bind()
	defer restore()

	s.fb.Clear(s.r.background)
	if s.mesh == nil || s.asset == nil {
		return
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	mat := s.asset.Material
	if opacity(mat) < 1 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		defer gl.DepthMask(true)
	} else {
		gl.Disable(gl.BLEND)
	}

	p := s.r.program
	p.Use()
	p.SetMat4("uModel", math.Identity())
	p.SetMat4("uView", cam.ViewMatrix())
	p.SetMat4("uProjection", cam.ProjectionMatrix())
	p.SetFloat("uPointSize", s.r.config.PointSize)
	s.r.applyLights()

	shading := shadeTint
	switch {
	case mat.Shading == model.ShadingTexture && s.mesh.texture != 0:
		shading = shadeTexture
	case mat.Shading == model.ShadingVertexColor:
		shading = shadeVertexColor
	}
	p.SetInt("uShading", shading)

	lit := int32(1)
	if s.asset.Primitive != model.Triangles {
		lit = 0
	}
	p.SetInt("uLit", lit)
	p.SetVec3("uTint", mat.Tint)
	p.SetFloat("uOpacity", opacity(mat))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.mesh.texture)
	p.SetInt("uTexture", 0)

	s.mesh.draw()
}

func opacity(m model.Material) float32 {
	if m.Opacity <= 0 || m.Opacity > 1 {
		return 1
	}
	return m.Opacity
}

// Snapshot reads back the last drawn frame.
func (s *Surface) Snapshot() (*image.RGBA, error) {
	return s.fb.ReadImage(), nil
}

// Destroy releases the model and the render target.
func (s *Surface) Destroy() {
	s.Release()
	s.fb.Destroy()
}
