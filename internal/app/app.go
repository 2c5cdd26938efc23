// Package app assembles the viewer core shared by the workstation and
// kiosk front ends: assets, loader, registry, loop, snapshots and the
// optional host bridge.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/assets"
	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/engine/debug"
	"github.com/Faultbox/iqhfm-eval/internal/hostapi"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

// SurfaceFactory creates the draw surface for one view.
type SurfaceFactory func(v viewer.ViewerType, width, height int) (viewer.Surface, error)

// NullSurfaces is a SurfaceFactory for windowless runs.
func NullSurfaces(_ viewer.ViewerType, width, height int) (viewer.Surface, error) {
	return viewer.NewNullSurface(width, height), nil
}

// App is the running viewer core.
type App struct {
	cfg       *config.Config
	assets    *assets.Manager
	registry  *viewer.Registry
	loop      *viewer.Loop
	snapshots *debug.SnapshotWriter
	hub       *hostapi.Hub
	hubStop   context.CancelFunc
	hubDone   chan struct{}
}

// New builds the core from cfg. Surfaces are created through newSurface,
// one per view, sized to a third of the window width.
func New(cfg *config.Config, newSurface SurfaceFactory) (*App, error) {
	cases, err := viewer.Assign(cfg.Cases.Prefix, cfg.Cases.Count, cfg.Cases.Assigned, cfg.Cases.Pinned, cfg.Cases.Seed)
	if err != nil {
		return nil, fmt.Errorf("assigning cases: %w", err)
	}
	logger.Info("cases assigned", zap.Strings("cases", cases))

	var surfaces [viewer.Count]viewer.Surface
	for i, v := range viewer.Types() {
		s, err := newSurface(v, viewer.ViewWidth(cfg.Window.Width, i), cfg.Window.Height)
		if err != nil {
			for _, made := range surfaces[:i] {
				made.Destroy()
			}
			return nil, fmt.Errorf("creating %s surface: %w", v, err)
		}
		surfaces[i] = s
	}

	a := &App{
		cfg:       cfg,
		assets:    assets.NewManager(cfg.Assets.ModelDir, cfg.Assets.MaterialFile),
		snapshots: debug.NewSnapshotWriter(cfg.Snapshot.Dir, cfg.Snapshot.Format, cfg.Snapshot.MaxWidth),
	}

	loader := viewer.NewLoader(a.assets, viewer.ProfilesFromConfig(cfg.Camera))
	a.registry = viewer.NewRegistry(loader, surfaces, viewer.SessionConfig{
		FOV:     cfg.Camera.FOV,
		Near:    cfg.Camera.Near,
		Far:     cfg.Camera.Far,
		Damping: cfg.Camera.Damping,
	}, cases)
	a.registry.SetSnapshotWriter(a.snapshots)
	a.loop = viewer.NewLoop(a.registry)

	if cfg.Host.Enabled {
		a.hub = hostapi.NewHub(a.registry)
		a.registry.Subscribe(a.hub.Publish)
	}
	return a, nil
}

// Start loads the configured start case and, when enabled, serves the host
// bridge until ctx is done.
func (a *App) Start(ctx context.Context) error {
	if err := a.registry.LoadCase(a.cfg.Cases.Start); err != nil {
		return err
	}
	if a.hub == nil {
		return nil
	}

	hubCtx, stop := context.WithCancel(ctx)
	a.hubStop = stop
	a.hubDone = make(chan struct{})
	go func() {
		defer close(a.hubDone)
		err := a.hub.ListenAndServe(hubCtx, a.cfg.Host.Listen)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("host bridge stopped", zap.Error(err))
		}
	}()
	return nil
}

// Tick runs one frame.
func (a *App) Tick() {
	a.loop.Tick()
}

// SetModelDir points the asset manager at dir and reloads the current case.
func (a *App) SetModelDir(dir string) error {
	a.assets.SetRoot(dir)
	a.cfg.Assets.ModelDir = dir
	logger.Info("models directory changed", zap.String("dir", dir))

	idx := a.registry.Index()
	if idx < 0 {
		idx = a.cfg.Cases.Start
	}
	return a.registry.LoadCase(idx)
}

// Snapshot writes the current frame of every view.
func (a *App) Snapshot() ([]string, error) {
	return a.registry.Snapshot()
}

// Close shuts the host bridge down, stops load workers and frees surfaces.
func (a *App) Close() {
	if a.hubStop != nil {
		a.hubStop()
		<-a.hubDone
	}
	a.registry.Close()
}

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Assets returns the asset manager.
func (a *App) Assets() *assets.Manager { return a.assets }

// Registry returns the session registry.
func (a *App) Registry() *viewer.Registry { return a.registry }

// Loop returns the render loop.
func (a *App) Loop() *viewer.Loop { return a.loop }

// Hub returns the host bridge, nil when disabled.
func (a *App) Hub() *hostapi.Hub { return a.hub }
