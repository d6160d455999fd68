package ambient

import (
	"errors"
	"fmt"
)

// Surface is a 2D pixel drawing target. Coordinates are logical pixels;
// implementations apply Scale when rasterizing.
type Surface interface {
	// Size returns the logical width and height.
	Size() (w, h float64)
	// Scale returns the device pixel density factor.
	Scale() float64
	Clear()
	FillCircle(x, y, r float64, c Color)
	StrokeCircle(x, y, r, width float64, c Color)
	StrokeLine(x0, y0, x1, y1, width float64, c Color)
	FillRect(x, y, w, h float64, c Color)
}

// Prober is implemented by surfaces that can report whether a drawing
// context is obtainable before any draw call is attempted.
type Prober interface {
	Probe() error
}

// Resizer is implemented by surfaces that own a backing store sized to the
// viewport.
type Resizer interface {
	Resize(w, h, scale float64)
}

var (
	// ErrNoSurface is returned by Probe for a nil surface.
	ErrNoSurface = errors.New("no surface")
	// ErrCapability wraps any failure to obtain or use a drawing context.
	ErrCapability = errors.New("surface capability")
	// ErrZeroArea is returned when the surface has no visible area.
	ErrZeroArea = errors.New("surface has zero area")
)

// Probe checks that s can be drawn to: the context is obtainable and a
// trivial fill and clear complete without panicking. A non-nil error wraps
// ErrCapability. Zero area is not a capability failure; see CheckArea.
func Probe(s Surface) (err error) {
	if s == nil {
		return fmt.Errorf("%w: %w", ErrCapability, ErrNoSurface)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: probe panicked: %v", ErrCapability, r)
		}
	}()
	if p, ok := s.(Prober); ok {
		if perr := p.Probe(); perr != nil {
			return fmt.Errorf("%w: %w", ErrCapability, perr)
		}
	}
	s.FillRect(0, 0, 1, 1, Color{})
	s.Clear()
	return nil
}

// CheckArea returns ErrZeroArea if s has no visible area.
func CheckArea(s Surface) error {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrZeroArea, w, h)
	}
	return nil
}
