package ebitenhost

import (
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/ambient"
)

var errSurfaceDisposed = errors.New("ebiten surface disposed")

var (
	_ ambient.Prober  = (*Surface)(nil)
	_ ambient.Resizer = (*Surface)(nil)
)

// Surface is an ambient.Surface backed by an offscreen *ebiten.Image sized in
// device pixels. Drawing uses ebiten/v2/vector with anti-aliasing. The image
// persists between renders, so a skipped render leaves the previous frame.
type Surface struct {
	img      *ebiten.Image
	w, h     float64
	scale    float64
	disposed bool
}

// New creates a surface for a w×h logical viewport.
func New(w, h, scale float64) *Surface {
	s := &Surface{}
	s.Resize(w, h, scale)
	return s
}

// Image returns the backing image, or nil while the surface has no area.
func (s *Surface) Image() *ebiten.Image { return s.img }

func (s *Surface) Size() (w, h float64) { return s.w, s.h }

func (s *Surface) Scale() float64 { return s.scale }

// Probe fails once the surface has been disposed.
func (s *Surface) Probe() error {
	if s.disposed {
		return errSurfaceDisposed
	}
	return nil
}

// Resize reallocates the backing image when the device pixel size changes.
// A zero-area viewport releases the image.
func (s *Surface) Resize(w, h, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	pw, ph := int(math.Ceil(w*scale)), int(math.Ceil(h*scale))
	s.w, s.h, s.scale = math.Max(w, 0), math.Max(h, 0), scale
	if s.disposed {
		return
	}
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() == pw && b.Dy() == ph {
			return
		}
		s.img.Deallocate()
		s.img = nil
	}
	if pw > 0 && ph > 0 {
		s.img = ebiten.NewImage(pw, ph)
	}
}

// Dispose releases the backing image. Later probes fail.
func (s *Surface) Dispose() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.disposed = true
}

func (s *Surface) Clear() {
	if s.img != nil {
		s.img.Clear()
	}
}

func (s *Surface) FillCircle(x, y, r float64, c ambient.Color) {
	if s.img == nil || r <= 0 {
		return
	}
	k := s.scale
	vector.DrawFilledCircle(s.img, float32(x*k), float32(y*k), float32(r*k), c.RGBA(), true)
}

func (s *Surface) StrokeCircle(x, y, r, width float64, c ambient.Color) {
	if s.img == nil || r <= 0 {
		return
	}
	k := s.scale
	vector.StrokeCircle(s.img, float32(x*k), float32(y*k), float32(r*k), float32(width*k), c.RGBA(), true)
}

func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c ambient.Color) {
	if s.img == nil {
		return
	}
	k := s.scale
	vector.StrokeLine(s.img, float32(x0*k), float32(y0*k), float32(x1*k), float32(y1*k), float32(width*k), c.RGBA(), true)
}

func (s *Surface) FillRect(x, y, w, h float64, c ambient.Color) {
	if s.img == nil || w <= 0 || h <= 0 {
		return
	}
	k := s.scale
	vector.DrawFilledRect(s.img, float32(x*k), float32(y*k), float32(w*k), float32(h*k), c.RGBA(), true)
}
