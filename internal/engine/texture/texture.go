// Package texture decodes material images into RGBA pixel data for upload.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/tiff"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for image extensions the decoder does not handle.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// Supported reports whether the file extension names a decodable image.
func Supported(path string) bool {
	switch normalizeExt(filepath.Ext(path)) {
	case "png", "jpeg", "gif", "bmp", "tiff", "tga":
		return true
	}
	return false
}

// Load reads and decodes an image file.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Decode decodes r using the decoder selected by ext (".png", "tga", ...).
func Decode(r io.Reader, ext string) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	switch normalizeExt(ext) {
	case "png":
		img, err = png.Decode(r)
	case "jpeg":
		img, err = jpeg.Decode(r)
	case "gif":
		img, err = gif.Decode(r)
	case "bmp":
		img, err = bmp.Decode(r)
	case "tiff":
		img, err = tiff.Decode(r)
	case "tga":
		img, err = tga.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return ImageToRGBA(img), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return ext
}

// ImageToRGBA converts any image.Image to *image.RGBA with its origin at (0,0).
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// FlipVertical mirrors img top to bottom in place.
// GL texture and framebuffer rows run bottom-up.
func FlipVertical(img *image.RGBA) {
	b := img.Bounds()
	row := make([]byte, b.Dx()*4)
	for top, bottom := b.Min.Y, b.Max.Y-1; top < bottom; top, bottom = top+1, bottom-1 {
		ti := img.PixOffset(b.Min.X, top)
		bi := img.PixOffset(b.Min.X, bottom)
		copy(row, img.Pix[ti:ti+len(row)])
		copy(img.Pix[ti:ti+len(row)], img.Pix[bi:bi+len(row)])
		copy(img.Pix[bi:bi+len(row)], row)
	}
}
