// Package debug writes view snapshots to disk for review and automation.
package debug

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Snapshot encodings.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// SnapshotWriter encodes view images into an output directory. Every write
// produces a timestamped file and refreshes latest_<view>.<ext>.
type SnapshotWriter struct {
	outputDir string
	format    string
	maxWidth  int
	now       func() time.Time
}

// NewSnapshotWriter creates a writer. Unknown formats fall back to png.
// maxWidth > 0 downscales wider images, keeping the aspect ratio.
func NewSnapshotWriter(outputDir, format string, maxWidth int) *SnapshotWriter {
	if format != FormatWebP {
		format = FormatPNG
	}
	return &SnapshotWriter{
		outputDir: outputDir,
		format:    format,
		maxWidth:  maxWidth,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for snapshots.
func (w *SnapshotWriter) SetOutputDir(dir string) {
	w.outputDir = dir
}

// OutputDir returns the current output directory.
func (w *SnapshotWriter) OutputDir() string {
	return w.outputDir
}

// Write saves img for the given case and view and returns the timestamped path.
func (w *SnapshotWriter) Write(caseID, view string, img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("empty snapshot for %s", view)
	}
	if w.outputDir != "" {
		if err := os.MkdirAll(w.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	data, ext, err := w.encode(w.scale(img))
	if err != nil {
		return "", err
	}

	timestamp := w.now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(w.outputDir, fmt.Sprintf("%s_%s_%s.%s", caseID, view, timestamp, ext))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	latest := filepath.Join(w.outputDir, fmt.Sprintf("latest_%s.%s", view, ext))
	if err := os.WriteFile(latest, data, 0644); err != nil {
		return "", fmt.Errorf("writing latest snapshot: %w", err)
	}
	return filename, nil
}

func (w *SnapshotWriter) scale(img image.Image) image.Image {
	b := img.Bounds()
	if w.maxWidth <= 0 || b.Dx() <= w.maxWidth {
		return img
	}
	height := b.Dy() * w.maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w.maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// encode tries the configured format first; webp failures fall back to png.
func (w *SnapshotWriter) encode(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if w.format == FormatWebP {
		if err := nativewebp.Encode(&buf, img, nil); err == nil {
			return buf.Bytes(), FormatWebP, nil
		}
		buf.Reset()
	}
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), FormatPNG, nil
}
