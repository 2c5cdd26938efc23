// IQ-HFM evaluation kiosk: a bare window with the three views side by side,
// driven by the rating form over the host websocket. With -headless it runs
// the same core without a window.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/app"
	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/engine/input"
	"github.com/Faultbox/iqhfm-eval/internal/engine/renderer"
	"github.com/Faultbox/iqhfm-eval/internal/engine/window"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := app.InitLogging(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Headless.Enabled {
		err = runHeadless(ctx, cfg)
	} else {
		err = runWindowed(ctx, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("kiosk error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("kiosk closed normally")
}

func runHeadless(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(cfg, app.NullSurfaces)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}
	return app.RunHeadless(ctx, a)
}

// kiosk is the windowed front end.
type kiosk struct {
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	app      *app.App
}

func runWindowed(ctx context.Context, cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		MinWidth:   viewer.Count * 160,
		MinHeight:  240,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// Renderer after the window: the GL context must exist.
	r, err := renderer.New(renderer.Config{Background: cfg.Render.Background, PointSize: cfg.Render.PointSize})
	if err != nil {
		return err
	}
	defer r.Close()

	a, err := app.New(cfg, func(v viewer.ViewerType, w, h int) (viewer.Surface, error) {
		return r.NewSurface(v.Tag(), w, h)
	})
	if err != nil {
		return err
	}
	defer a.Close()

	k := &kiosk{window: win, renderer: r, input: input.New(), app: a}
	reg := a.Registry()
	shown := ""
	reg.Subscribe(func(e viewer.Event) {
		if e.Case != "" && e.Case != shown {
			shown = e.Case
			win.ShowCase(e.Case, e.Index, len(reg.Cases()))
		}
	})
	reg.OnResize(win.DrawableSize())
	if err := a.Start(ctx); err != nil {
		logger.Warn("start case failed", zap.Error(err))
	}
	return k.run(ctx)
}

func (k *kiosk) run(ctx context.Context) error {
	logger.Info("starting kiosk loop")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if k.input.Update() {
			return nil
		}
		if quit := k.handleEvents(); quit {
			return nil
		}

		k.app.Tick()
		k.present()
		k.window.SwapBuffers()
	}
}

// viewAt maps a window x coordinate to the view under it.
func (k *kiosk) viewAt(x int) *viewer.Session {
	w, _ := k.window.GetSize()
	if w <= 0 {
		return nil
	}
	i := x * viewer.Count / w
	if i < 0 || i >= viewer.Count {
		return nil
	}
	return k.app.Registry().Session(viewer.Types()[i])
}

func (k *kiosk) handleEvents() bool {
	reg := k.app.Registry()
	for _, e := range k.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			reg.OnResize(k.window.DrawableSize())

		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				return true
			case sdl.SCANCODE_F12:
				if _, err := k.app.Snapshot(); err != nil {
					logger.Warn("snapshot failed", zap.Error(err))
				}
			case sdl.SCANCODE_RIGHT:
				reg.Next()
			case sdl.SCANCODE_LEFT:
				reg.Prev()
			}

		case input.EventMouseMove:
			s := k.viewAt(e.MouseX)
			if s == nil {
				continue
			}
			_, h := s.Surface().Size()
			switch {
			case k.input.ButtonHeld(input.ButtonLeft):
				s.Controller().Rotate(e.DeltaX, e.DeltaY, h)
			case k.input.ButtonHeld(input.ButtonRight), k.input.ButtonHeld(input.ButtonMiddle):
				s.Controller().Pan(e.DeltaX, e.DeltaY, h)
			}

		case input.EventMouseWheel:
			if s := k.viewAt(e.MouseX); s != nil {
				s.Controller().Dolly(e.DeltaY)
			}
		}
	}
	return false
}

// present blits each view's framebuffer into its column of the window.
func (k *kiosk) present() {
	dw, dh := k.window.DrawableSize()
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(dw), int32(dh))
	gl.ClearColor(1, 1, 1, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	x := 0
	for _, s := range k.app.Registry().Sessions() {
		surface, ok := s.Surface().(*renderer.Surface)
		if !ok {
			continue
		}
		w, h := surface.Size()
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, surface.FBO())
		gl.BlitFramebuffer(0, 0, int32(w), int32(h), int32(x), 0, int32(x+w), int32(h), gl.COLOR_BUFFER_BIT, gl.NEAREST)
		x += w
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
}
