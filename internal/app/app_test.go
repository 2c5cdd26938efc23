package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.ModelDir = t.TempDir()
	cfg.Snapshot.Dir = filepath.Join(t.TempDir(), "snapshots")
	cfg.Snapshot.Format = "png"
	cfg.Cases.Count = 3
	cfg.Cases.Assigned = 3
	cfg.Cases.Seed = 1
	cfg.Headless.Hz = 1000
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(cfg, NullSurfaces)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func tickUntilLoaded(t *testing.T, a *App) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !a.Registry().CaseLoaded() {
		if time.Now().After(deadline) {
			t.Fatal("case did not load")
		}
		a.Tick()
		time.Sleep(time.Millisecond)
	}
}

func TestNewSizesSurfaces(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	for i, s := range a.Registry().Sessions() {
		w, h := s.Surface().Size()
		if w != 480 || h != 600 {
			t.Errorf("surface %d = %dx%d, want 480x600", i, w, h)
		}
	}
	if got := a.Registry().Cases()[0]; got != "subject_001" {
		t.Errorf("first case = %q, want subject_001", got)
	}
	if a.Hub() != nil {
		t.Error("hub created while host disabled")
	}
}

func TestNewSurfaceFailureDestroysCreated(t *testing.T) {
	var made []*viewer.NullSurface
	factory := func(v viewer.ViewerType, w, h int) (viewer.Surface, error) {
		if v == viewer.Reconstruction {
			return nil, errors.New("no GL")
		}
		n := viewer.NewNullSurface(w, h)
		made = append(made, n)
		return n, nil
	}
	if _, err := New(testConfig(t), factory); err == nil {
		t.Fatal("expected error")
	}
	if len(made) != 2 {
		t.Fatalf("made %d surfaces, want 2", len(made))
	}
}

func TestNewRejectsBadAssignment(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cases.Pinned = "subject_042"
	if _, err := New(cfg, NullSurfaces); err == nil {
		t.Fatal("expected error for pinned case outside range")
	}
}

func TestStartLoadsStartCase(t *testing.T) {
	cfg := testConfig(t)
	os.WriteFile(filepath.Join(cfg.Assets.ModelDir, "subject_001_cbct.obj"), []byte(triangleOBJ), 0o644)
	a := newTestApp(t, cfg)

	if err := a.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	tickUntilLoaded(t, a)

	reg := a.Registry()
	if reg.CaseID() != "subject_001" {
		t.Errorf("CaseID() = %q, want subject_001", reg.CaseID())
	}
	if st := reg.Session(viewer.CBCT).State(); st != viewer.StateReady {
		t.Errorf("cbct state = %s, want ready", st)
	}
	if st := reg.Session(viewer.FaceScan).State(); st != viewer.StatePlaceholder {
		t.Errorf("3dmd state = %s, want placeholder", st)
	}
}

func TestSetModelDirReloads(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	if err := a.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	tickUntilLoaded(t, a)
	if a.Registry().Session(viewer.CBCT).State() != viewer.StatePlaceholder {
		t.Fatal("expected placeholder before the models exist")
	}

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "subject_001_cbct.obj"), []byte(triangleOBJ), 0o644)
	if err := a.SetModelDir(dir); err != nil {
		t.Fatal(err)
	}
	tickUntilLoaded(t, a)
	if st := a.Registry().Session(viewer.CBCT).State(); st != viewer.StateReady {
		t.Errorf("cbct state = %s, want ready", st)
	}
	if a.Config().Assets.ModelDir != dir {
		t.Errorf("ModelDir = %q, want %q", a.Config().Assets.ModelDir, dir)
	}
}

func TestSnapshot(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	files, err := a.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != viewer.Count {
		t.Errorf("wrote %d files, want %d", len(files), viewer.Count)
	}
}

func TestHubReceivesCaseLoaded(t *testing.T) {
	cfg := testConfig(t)
	cfg.Host.Enabled = true
	a := newTestApp(t, cfg)
	if a.Hub() == nil {
		t.Fatal("Hub() = nil with host enabled")
	}

	if err := a.Registry().LoadCase(1); err != nil {
		t.Fatal(err)
	}
	tickUntilLoaded(t, a)

	rec := httptest.NewRecorder()
	a.Hub().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var st struct {
		CaseLoaded viewer.Event `json:"case_loaded"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.CaseLoaded.Index != 1 || len(st.CaseLoaded.Viewers) != viewer.Count {
		t.Errorf("case_loaded = %+v", st.CaseLoaded)
	}
}

func TestRunHeadlessTicks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Headless.Ticks = 5
	a := newTestApp(t, cfg)

	if err := RunHeadless(t.Context(), a); err != nil {
		t.Fatalf("RunHeadless() error = %v", err)
	}
	if got := a.Loop().Ticks(); got != 5 {
		t.Errorf("Ticks() = %d, want 5", got)
	}
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := RunHeadless(ctx, a)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunHeadless() error = %v, want deadline exceeded", err)
	}
}

func TestInitLoggingWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.log")
	t.Cleanup(func() { _ = logger.Setup(logger.Options{}) })
	if err := InitLogging(config.LoggingConfig{Level: "debug", Format: "json", LogFile: path}); err != nil {
		t.Fatalf("InitLogging: %v", err)
	}
	logger.Debug("logging ready")
	logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"logging ready"`) {
		t.Errorf("log = %q, want JSON entry", content)
	}

	if err := InitLogging(config.LoggingConfig{Level: "verbose"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
