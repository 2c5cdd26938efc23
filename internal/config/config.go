// Package config handles evaluation viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Assets   AssetsConfig   `yaml:"assets"`
	Cases    CasesConfig    `yaml:"cases"`
	Camera   CameraConfig   `yaml:"camera"`
	Render   RenderConfig   `yaml:"render"`
	Host     HostConfig     `yaml:"host"`
	Headless HeadlessConfig `yaml:"headless"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// AssetsConfig locates model files.
type AssetsConfig struct {
	ModelDir     string `yaml:"model_dir"`
	MaterialFile string `yaml:"material_file"`
}

// CasesConfig controls which cases an evaluator sees.
type CasesConfig struct {
	Prefix   string `yaml:"prefix"`   // case IDs are prefix + 3-digit number
	Count    int    `yaml:"count"`    // cases available, numbered from 1
	Assigned int    `yaml:"assigned"` // cases per evaluator, pinned one included
	Pinned   string `yaml:"pinned"`   // always assigned first; empty disables
	Seed     int64  `yaml:"seed"`     // 0 seeds from the clock
	Start    int    `yaml:"start"`    // assignment index loaded at startup
}

// CameraConfig holds projection and control settings shared by all views.
type CameraConfig struct {
	FOV                  float32    `yaml:"fov"`
	Near                 float32    `yaml:"near"`
	Far                  float32    `yaml:"far"`
	Damping              float32    `yaml:"damping"`
	UseFixedCBCTCentroid bool       `yaml:"use_fixed_cbct_centroid"`
	CBCTCentroid         [3]float32 `yaml:"cbct_centroid"`
}

// RenderConfig holds drawing settings.
type RenderConfig struct {
	Background uint32  `yaml:"background"` // 0xRRGGBB
	PointSize  float32 `yaml:"point_size"`
}

// HostConfig controls the websocket bridge to the rating form.
type HostConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// HeadlessConfig controls the windowless run mode.
type HeadlessConfig struct {
	Enabled bool `yaml:"enabled"`
	Hz      int  `yaml:"hz"`
	Ticks   int  `yaml:"ticks"` // 0 runs until cancelled
}

// SnapshotConfig controls view snapshots.
type SnapshotConfig struct {
	Dir      string `yaml:"dir"`
	Format   string `yaml:"format"` // webp or png
	MaxWidth int    `yaml:"max_width"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "IQ-HFM Evaluation",
			Width:  1440,
			Height: 600,
			VSync:  true,
		},
		Assets: AssetsConfig{
			ModelDir:     "models",
			MaterialFile: "aligned_model.mtl",
		},
		Cases: CasesConfig{
			Prefix:   "subject_",
			Count:    15,
			Assigned: 5,
			Pinned:   "subject_001",
		},
		Camera: CameraConfig{
			FOV:          75,
			Near:         0.1,
			Far:          1000,
			Damping:      0.05,
			CBCTCentroid: [3]float32{2.65, 14.21, 2.30},
		},
		Render: RenderConfig{
			Background: 0xf7fafc,
			PointSize:  2,
		},
		Host: HostConfig{
			Listen: "127.0.0.1:8765",
		},
		Headless: HeadlessConfig{
			Hz: 60,
		},
		Snapshot: SnapshotConfig{
			Dir:    "snapshots",
			Format: "webp",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks values that would break the viewer at startup.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Assets.ModelDir == "":
		return fmt.Errorf("%w: assets.model_dir is empty", ErrInvalidConfig)
	case c.Cases.Count < 1 || c.Cases.Assigned < 1 || c.Cases.Assigned > c.Cases.Count:
		return fmt.Errorf("%w: cases.assigned %d of %d", ErrInvalidConfig, c.Cases.Assigned, c.Cases.Count)
	case c.Cases.Start < 0 || c.Cases.Start >= c.Cases.Assigned:
		return fmt.Errorf("%w: cases.start %d outside assignment", ErrInvalidConfig, c.Cases.Start)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: camera.fov %v", ErrInvalidConfig, c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera near/far %v/%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Camera.Damping < 0 || c.Camera.Damping >= 1:
		return fmt.Errorf("%w: camera.damping %v", ErrInvalidConfig, c.Camera.Damping)
	case c.Headless.Hz <= 0:
		return fmt.Errorf("%w: headless.hz %d", ErrInvalidConfig, c.Headless.Hz)
	case c.Snapshot.Format != "webp" && c.Snapshot.Format != "png":
		return fmt.Errorf("%w: snapshot.format %q", ErrInvalidConfig, c.Snapshot.Format)
	case c.Logging.Format != "" && c.Logging.Format != "console" && c.Logging.Format != "json":
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
