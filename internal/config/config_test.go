package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1440 || cfg.Window.Height != 600 {
		t.Errorf("expected window 1440x600, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Assets.ModelDir != "models" {
		t.Errorf("expected model dir 'models', got %s", cfg.Assets.ModelDir)
	}
	if cfg.Assets.MaterialFile != "aligned_model.mtl" {
		t.Errorf("expected material file aligned_model.mtl, got %s", cfg.Assets.MaterialFile)
	}

	if cfg.Cases.Count != 15 || cfg.Cases.Assigned != 5 {
		t.Errorf("expected 5 of 15 cases, got %d of %d", cfg.Cases.Assigned, cfg.Cases.Count)
	}
	if cfg.Cases.Pinned != "subject_001" {
		t.Errorf("expected pinned subject_001, got %s", cfg.Cases.Pinned)
	}

	if cfg.Camera.FOV != 75 || cfg.Camera.Near != 0.1 || cfg.Camera.Far != 1000 {
		t.Errorf("unexpected projection %v/%v/%v", cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far)
	}
	if cfg.Camera.Damping != 0.05 {
		t.Errorf("expected damping 0.05, got %v", cfg.Camera.Damping)
	}
	if cfg.Camera.UseFixedCBCTCentroid {
		t.Error("expected fixed CBCT centroid to be off by default")
	}
	if cfg.Camera.CBCTCentroid != [3]float32{2.65, 14.21, 2.30} {
		t.Errorf("unexpected CBCT centroid %v", cfg.Camera.CBCTCentroid)
	}

	if cfg.Render.Background != 0xf7fafc {
		t.Errorf("expected background 0xf7fafc, got %#x", cfg.Render.Background)
	}
	if cfg.Host.Enabled {
		t.Error("expected host bridge to be off by default")
	}
	if cfg.Snapshot.Format != "webp" {
		t.Errorf("expected snapshot format webp, got %s", cfg.Snapshot.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 720
  fullscreen: true

assets:
  model_dir: "/srv/eval/models"

cases:
  assigned: 3
  seed: 42
  start: 2

camera:
  damping: 0.1
  use_fixed_cbct_centroid: true
  cbct_centroid: [1, 2, 3]

render:
  background: 0x000000

host:
  enabled: true
  listen: ":9000"

snapshot:
  format: png

logging:
  level: "debug"
  log_file: "eval.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || !cfg.Window.Fullscreen {
		t.Errorf("window not loaded: %+v", cfg.Window)
	}
	if !cfg.Window.VSync {
		t.Error("unset vsync should keep its default")
	}
	if cfg.Assets.ModelDir != "/srv/eval/models" {
		t.Errorf("expected model dir /srv/eval/models, got %s", cfg.Assets.ModelDir)
	}
	if cfg.Assets.MaterialFile != "aligned_model.mtl" {
		t.Errorf("unset material file should keep its default, got %s", cfg.Assets.MaterialFile)
	}
	if cfg.Cases.Assigned != 3 || cfg.Cases.Seed != 42 || cfg.Cases.Start != 2 {
		t.Errorf("cases not loaded: %+v", cfg.Cases)
	}
	if !cfg.Camera.UseFixedCBCTCentroid || cfg.Camera.CBCTCentroid != [3]float32{1, 2, 3} {
		t.Errorf("camera centroid not loaded: %+v", cfg.Camera)
	}
	if cfg.Camera.Damping != 0.1 {
		t.Errorf("expected damping 0.1, got %v", cfg.Camera.Damping)
	}
	if cfg.Render.Background != 0 {
		t.Errorf("expected background 0, got %#x", cfg.Render.Background)
	}
	if !cfg.Host.Enabled || cfg.Host.Listen != ":9000" {
		t.Errorf("host not loaded: %+v", cfg.Host)
	}
	if cfg.Snapshot.Format != "png" {
		t.Errorf("expected snapshot format png, got %s", cfg.Snapshot.Format)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "eval.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFileValidates(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("cases:\n  assigned: 40\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(configPath); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"empty model dir", func(c *Config) { c.Assets.ModelDir = "" }},
		{"more assigned than available", func(c *Config) { c.Cases.Assigned = 16 }},
		{"start outside assignment", func(c *Config) { c.Cases.Start = 5 }},
		{"fov too wide", func(c *Config) { c.Camera.FOV = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }},
		{"damping of one", func(c *Config) { c.Camera.Damping = 1 }},
		{"zero headless rate", func(c *Config) { c.Headless.Hz = 0 }},
		{"unknown snapshot format", func(c *Config) { c.Snapshot.Format = "gif" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "models flag",
			setup: func() { *flagModels = "/data/models" },
			verify: func(cfg *Config) {
				if cfg.Assets.ModelDir != "/data/models" {
					t.Errorf("expected model dir /data/models, got %s", cfg.Assets.ModelDir)
				}
			},
			teardown: func() { *flagModels = "" },
		},
		{
			name:  "case flag",
			setup: func() { *flagCase = 3 },
			verify: func(cfg *Config) {
				if cfg.Cases.Start != 3 {
					t.Errorf("expected start 3, got %d", cfg.Cases.Start)
				}
			},
			teardown: func() { *flagCase = -1 },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 900
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 900 {
					t.Errorf("expected 2560x900, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "listen flag enables host",
			setup: func() { *flagListen = ":7000" },
			verify: func(cfg *Config) {
				if !cfg.Host.Enabled || cfg.Host.Listen != ":7000" {
					t.Errorf("expected host enabled on :7000, got %+v", cfg.Host)
				}
			},
			teardown: func() { *flagListen = "" },
		},
		{
			name:  "headless flag",
			setup: func() { *flagHeadless = true },
			verify: func(cfg *Config) {
				if !cfg.Headless.Enabled {
					t.Error("expected headless to be enabled")
				}
			},
			teardown: func() { *flagHeadless = false },
		},
		{
			name:  "snapshots flag",
			setup: func() { *flagSnapshots = "/tmp/shots" },
			verify: func(cfg *Config) {
				if cfg.Snapshot.Dir != "/tmp/shots" {
					t.Errorf("expected snapshot dir /tmp/shots, got %s", cfg.Snapshot.Dir)
				}
			},
			teardown: func() { *flagSnapshots = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Assets.ModelDir = "/srv/models"
	cfg.Camera.UseFixedCBCTCentroid = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Assets.ModelDir != "/srv/models" || !loaded.Camera.UseFixedCBCTCentroid {
		t.Errorf("saved values not restored: %+v %+v", loaded.Assets, loaded.Camera)
	}
}
