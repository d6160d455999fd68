// Package canvas provides a headless software Surface for ambient engines,
// rendered with gg. Frames can be written out as PNG files.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"github.com/phanxgames/ambient"
)

// ErrClosed is returned by Probe after Close.
var ErrClosed = errors.New("canvas closed")

// Surface is an ambient.Surface on a gg software context sized in device
// pixels. The context is nil while the viewport has no area.
type Surface struct {
	dc     *gg.Context
	w, h   float64
	scale  float64
	err    error
	closed bool
}

var (
	_ ambient.Surface = (*Surface)(nil)
	_ ambient.Prober  = (*Surface)(nil)
	_ ambient.Resizer = (*Surface)(nil)
)

// New creates a surface for a w×h logical viewport at the given scale.
func New(w, h, scale float64) *Surface {
	s := &Surface{}
	s.Resize(w, h, scale)
	return s
}

func (s *Surface) Size() (w, h float64) { return s.w, s.h }

func (s *Surface) Scale() float64 { return s.scale }

// Probe reports the first drawing error since the last Clear, or ErrClosed.
func (s *Surface) Probe() error {
	if s.closed {
		return ErrClosed
	}
	return s.err
}

// Resize reallocates the context for the new device pixel size.
func (s *Surface) Resize(w, h, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	s.w, s.h, s.scale = math.Max(w, 0), math.Max(h, 0), scale
	if s.closed {
		return
	}
	pw, ph := int(math.Ceil(s.w*scale)), int(math.Ceil(s.h*scale))
	if pw <= 0 || ph <= 0 {
		s.release()
		return
	}
	if s.dc == nil {
		s.dc = gg.NewContext(pw, ph)
		return
	}
	if err := s.dc.Resize(pw, ph); err != nil {
		s.err = fmt.Errorf("resize canvas: %w", err)
	}
}

func (s *Surface) release() {
	if s.dc != nil {
		_ = s.dc.Close()
		s.dc = nil
	}
}

// Close releases the context. Later probes fail.
func (s *Surface) Close() error {
	s.release()
	s.closed = true
	return nil
}

// Clear resets every pixel to transparent and forgets prior draw errors.
func (s *Surface) Clear() {
	s.err = nil
	if s.dc != nil {
		s.dc.Clear()
	}
}

func (s *Surface) setColor(c ambient.Color) {
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
}

func (s *Surface) record(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *Surface) FillCircle(x, y, r float64, c ambient.Color) {
	if s.dc == nil || r <= 0 {
		return
	}
	k := s.scale
	s.setColor(c)
	s.dc.DrawCircle(x*k, y*k, r*k)
	s.record(s.dc.Fill())
}

func (s *Surface) StrokeCircle(x, y, r, width float64, c ambient.Color) {
	if s.dc == nil || r <= 0 {
		return
	}
	k := s.scale
	s.setColor(c)
	s.dc.SetLineWidth(width * k)
	s.dc.DrawCircle(x*k, y*k, r*k)
	s.record(s.dc.Stroke())
}

func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c ambient.Color) {
	if s.dc == nil {
		return
	}
	k := s.scale
	s.setColor(c)
	s.dc.SetLineWidth(width * k)
	s.dc.DrawLine(x0*k, y0*k, x1*k, y1*k)
	s.record(s.dc.Stroke())
}

func (s *Surface) FillRect(x, y, w, h float64, c ambient.Color) {
	if s.dc == nil || w <= 0 || h <= 0 {
		return
	}
	k := s.scale
	s.setColor(c)
	s.dc.DrawRectangle(x*k, y*k, w*k, h*k)
	s.record(s.dc.Fill())
}

// Image returns the current frame, or nil while the surface has no area.
func (s *Surface) Image() image.Image {
	if s.dc == nil {
		return nil
	}
	return s.dc.Image()
}

// SavePNG writes the current frame to path.
func (s *Surface) SavePNG(path string) error {
	img := s.Image()
	if img == nil {
		return fmt.Errorf("save %s: %w", path, ambient.ErrZeroArea)
	}
	return writePNG(path, img)
}

// WriteFrame writes the current frame into dir as <index>_<label>.png and
// returns the file path.
func (s *Surface) WriteFrame(dir, label string, index int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%04d_%s.png", index, sanitizeLabel(label)))
	if err := s.SavePNG(path); err != nil {
		return "", err
	}
	return path, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
