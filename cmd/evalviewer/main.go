// IQ-HFM evaluation workstation: three synchronized model views of one case
// with case navigation, loading overlays and snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/app"
	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/engine/renderer"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

func main() {
	runtime.LockOSThread()

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

	ws, err := NewWorkstation(cfg)
	if err != nil {
		logger.Error("failed to start workstation", zap.Error(err))
		os.Exit(1)
	}
	defer ws.Close()

	ws.Run()
	logger.Info("workstation closed normally")
}

// Workstation is the imgui front end.
type Workstation struct {
	backend  backend.Backend[sdlbackend.SDLWindowFlags]
	renderer *renderer.Renderer
	app      *app.App
	cancel   context.CancelFunc

	// Mouse state per view panel
	lastMouse [viewer.Count]imgui.Vec2

	// Folder picked in the dialog goroutine, applied on the main thread
	pendingDir chan string

	notice     string
	noticeTime time.Time
}

// NewWorkstation creates the window, the GL renderer and the viewer core.
func NewWorkstation(cfg *config.Config) (*Workstation, error) {
	ws := &Workstation{pendingDir: make(chan string, 1)}

	var err error
	ws.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}
	ws.backend.SetBgColor(imgui.NewVec4(0.93, 0.94, 0.95, 1.0))
	ws.backend.CreateWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height+menuHeight+statusBarHeight)

	// GL context exists once the window does.
	ws.renderer, err = renderer.New(renderer.Config{
		Background: cfg.Render.Background,
		PointSize:  cfg.Render.PointSize,
	})
	if err != nil {
		return nil, err
	}

	ws.app, err = app.New(cfg, func(v viewer.ViewerType, w, h int) (viewer.Surface, error) {
		return ws.renderer.NewSurface(v.Tag(), w, h)
	})
	if err != nil {
		ws.renderer.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ws.cancel = cancel
	if err := ws.app.Start(ctx); err != nil {
		logger.Warn("start case failed", zap.Error(err))
	}
	return ws, nil
}

// Run blocks until the window closes.
func (ws *Workstation) Run() {
	ws.backend.Run(ws.render)
}

// Close frees the viewer core and the renderer.
func (ws *Workstation) Close() {
	ws.cancel()
	ws.app.Close()
	ws.renderer.Close()
}

// openFolderDialog asks for a models directory without blocking the frame.
func (ws *Workstation) openFolderDialog() {
	go func() {
		dir, err := dialog.Directory().Title("Open models folder").Browse()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("folder dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case ws.pendingDir <- dir:
		default:
		}
	}()
}

func (ws *Workstation) showNotice(msg string) {
	ws.notice = msg
	ws.noticeTime = time.Now()
}

// render runs once per frame on the main thread.
func (ws *Workstation) render() {
	ws.checkAndExecuteCommand()

	select {
	case dir := <-ws.pendingDir:
		if err := ws.app.SetModelDir(dir); err != nil {
			ws.showNotice(fmt.Sprintf("Open failed: %v", err))
		} else {
			ws.showNotice("Models: " + dir)
		}
	default:
	}

	reg := ws.app.Registry()
	if !imgui.IsAnyItemActive() {
		switch {
		case imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyF12)):
			ws.snapshot()
		case imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyRightArrow)):
			ws.report(reg.Next())
		case imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyLeftArrow)):
			ws.report(reg.Prev())
		case imgui.IsKeyChordPressed(imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyD)):
			ws.dumpState()
		}
	}

	// Drain loads, advance controls, draw every view into its surface.
	ws.app.Tick()

	ws.renderLayout()
}

func (ws *Workstation) report(err error) {
	if err != nil {
		ws.showNotice(err.Error())
	}
}

func (ws *Workstation) snapshot() {
	files, err := ws.app.Snapshot()
	if err != nil {
		ws.showNotice(fmt.Sprintf("Snapshot failed: %v", err))
		return
	}
	ws.showNotice(fmt.Sprintf("Saved %d snapshots to %s", len(files), ws.app.Config().Snapshot.Dir))
}
