// Package renderer draws model assets into offscreen surfaces with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/engine/lighting"
	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
	"github.com/Faultbox/iqhfm-eval/internal/engine/shader"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
)

// DefaultBackground is the clear color of every view (0xf7fafc).
const DefaultBackground = 0xf7fafc

// Config holds renderer configuration.
type Config struct {
	Background uint32 // 0xRRGGBB
	PointSize  float32
}

// Renderer owns the GL state shared by all surfaces: the model program
// and the light rig.
type Renderer struct {
	config     Config
	background model.Color
	program    *shader.Program
	lights     lighting.Rig
}

// New initializes OpenGL and compiles the model program.
// Must be called on the thread that owns the current GL context.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	if cfg.PointSize <= 0 {
		cfg.PointSize = 2
	}

	program, err := shader.New(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create model program: %w", err)
	}
	logger.Debug("model program created", zap.Uint32("program", program.ID))

	return &Renderer{
		config:     cfg,
		background: model.ColorFromHex(cfg.Background),
		program:    program,
		lights:     lighting.DefaultRig(),
	}, nil
}

// NewSurface creates an offscreen surface for one view.
func (r *Renderer) NewSurface(name string, width, height int) (*Surface, error) {
	return newSurface(r, name, width, height)
}

// Close releases the shared program. Surfaces must be destroyed first.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.program.Delete()
}

func (r *Renderer) applyLights() {
	p := r.program
	a := r.lights.Ambient
	p.SetVec3("uAmbient", [3]float32{a.Color[0] * a.Intensity, a.Color[1] * a.Intensity, a.Color[2] * a.Intensity})
	for i, l := range r.lights.Directionals() {
		p.SetVec3(fmt.Sprintf("uLightDir[%d]", i), l.Direction)
		p.SetVec3(fmt.Sprintf("uLightColor[%d]", i), [3]float32{l.Color[0] * l.Intensity, l.Color[1] * l.Intensity, l.Color[2] * l.Intensity})
	}
}
