// Package photo stores guest headshots on disk, scaled down to thumbnail
// size at upload time.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// ErrUnsupportedImage means the upload could not be decoded as JPEG or PNG.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Manager owns a directory of photo files. Filenames are random UUIDs so an
// upload never collides with or overwrites another guest's photo.
type Manager struct {
	dir    string
	maxDim int
}

// NewManager creates the photo directory if needed and returns a manager
// bound to it.
func NewManager(dir string, maxDim int) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating photo directory: %w", err)
	}
	return &Manager{dir: dir, maxDim: maxDim}, nil
}

// Save decodes the upload, scales it to fit within maxDim on both axes, and
// writes it under a fresh UUID filename. It returns the stored filename.
func (m *Manager) Save(data []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = m.shrink(img)

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	name := uuid.NewString() + ext

	var buf bytes.Buffer
	switch ext {
	case ".png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("encoding photo: %w", err)
	}

	if err := os.WriteFile(m.Path(name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return name, nil
}

// shrink scales the image down so neither side exceeds maxDim, preserving
// aspect ratio. Images already within bounds pass through untouched.
func (m *Manager) shrink(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= m.maxDim && h <= m.maxDim {
		return img
	}

	scale := float64(m.maxDim) / float64(w)
	if h > w {
		scale = float64(m.maxDim) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Path returns the on-disk path for a stored filename. The name is reduced
// to its base component so request-supplied values cannot escape the
// directory.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, filepath.Base(name))
}

// Remove deletes a stored photo. A missing file is not an error; the caller
// is clearing a reference that may already be gone.
func (m *Manager) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(m.Path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
