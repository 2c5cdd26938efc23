package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xf7
		img.Pix[i+1] = 0xfa
		img.Pix[i+2] = 0xfc
		img.Pix[i+3] = 0xff
	}
	return img
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestWritePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	w := NewSnapshotWriter(dir, "png", 0)
	w.now = fixedClock

	path, err := w.Write("subject_003", "cbct", solid(8, 4))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := filepath.Join(dir, "subject_003_cbct_2024-03-01_12-30-00.png")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	f, err := os.Open(filepath.Join(dir, "latest_cbct.png"))
	if err != nil {
		t.Fatalf("latest snapshot missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != (image.Point{8, 4}) {
		t.Errorf("size = %v, want 8x4", got)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if got := (color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xff}); got != (color.RGBA{0xf7, 0xfa, 0xfc, 0xff}) {
		t.Errorf("pixel = %v, want background", got)
	}
}

func TestWriteWebP(t *testing.T) {
	dir := t.TempDir()
	w := NewSnapshotWriter(dir, FormatWebP, 0)
	w.now = fixedClock

	path, err := w.Write("subject_001", "iqhfm", solid(4, 4))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Ext(path) != ".webp" {
		t.Errorf("ext = %q, want .webp", filepath.Ext(path))
	}
	if _, err := os.Stat(filepath.Join(dir, "latest_iqhfm.webp")); err != nil {
		t.Errorf("latest snapshot missing: %v", err)
	}
}

func TestWriteScalesWideImages(t *testing.T) {
	dir := t.TempDir()
	w := NewSnapshotWriter(dir, FormatPNG, 10)
	if _, err := w.Write("c", "3dmd", solid(40, 20)); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(filepath.Join(dir, "latest_3dmd.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 10 || cfg.Height != 5 {
		t.Errorf("size = %dx%d, want 10x5", cfg.Width, cfg.Height)
	}
}

func TestWriteEmpty(t *testing.T) {
	w := NewSnapshotWriter(t.TempDir(), FormatPNG, 0)
	if _, err := w.Write("c", "cbct", image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestUnknownFormatFallsBackToPNG(t *testing.T) {
	w := NewSnapshotWriter(t.TempDir(), "bmp", 0)
	if w.format != FormatPNG {
		t.Errorf("format = %q, want png", w.format)
	}
}
