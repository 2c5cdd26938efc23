package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func quietFile(t *testing.T, name string) FileConfig {
	t.Helper()
	return FileConfig{Path: filepath.Join(t.TempDir(), name), MaxSizeMB: 1}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := quietFile(t, tt.level+".log")
			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			content := readLog(t, cfg.Path)
			for _, exp := range tt.expected {
				if !strings.Contains(content, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(content, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSetupRejectsBadOptions(t *testing.T) {
	if err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Setup(Options{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	cfg := quietFile(t, "runtime.log")
	if err := Setup(Options{Level: "warn", File: cfg}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	Info("before")
	SetLevel(zapcore.InfoLevel)
	if Level() != zapcore.InfoLevel {
		t.Errorf("Level() = %v, want info", Level())
	}
	Info("after")

	content := readLog(t, cfg.Path)
	if strings.Contains(content, "before") {
		t.Error("info entry written while level was warn")
	}
	if !strings.Contains(content, "after") {
		t.Error("info entry missing after SetLevel(info)")
	}
}

func TestJSONFormat(t *testing.T) {
	cfg := quietFile(t, "json.log")
	if err := Setup(Options{Level: "info", Format: FormatJSON, File: cfg}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	Case("subject_003").Info("case loaded", zap.Int("views", 3))
	Sync()

	f, err := os.Open(cfg.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatal("no log line written")
	}
	var entry map[string]any
	if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
		t.Fatalf("line is not JSON: %v (%s)", err, sc.Text())
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["msg"] != "case loaded" {
		t.Errorf("msg = %v, want %q", entry["msg"], "case loaded")
	}
	if entry["case"] != "subject_003" {
		t.Errorf("case = %v, want subject_003", entry["case"])
	}
	if entry["views"] != float64(3) {
		t.Errorf("views = %v, want 3", entry["views"])
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("eval.log")
	want := FileConfig{Path: "eval.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestViewerTagsEntries(t *testing.T) {
	cfg := quietFile(t, "viewer.log")
	if err := InitWithFileConfig("info", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Viewer("iqhfm").Info("model ready")

	line := readLog(t, cfg.Path)
	if !strings.Contains(line, "model ready") || !strings.Contains(line, "viewer") || !strings.Contains(line, "iqhfm") {
		t.Errorf("log line %q missing viewer tag", line)
	}
}
