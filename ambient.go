package ambient

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the color used when a theme color cannot be parsed.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns c with its alpha multiplied by a, clamped to [0, 1].
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(c.A * a)
	return c
}

// RGBA converts c to a straight-alpha color.NRGBA.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// ParseColor parses a theme color string. Accepted forms are "#rgb",
// "#rrggbb", "rgb(r, g, b)", "rgba(r, g, b, a)" and CSS color names.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ColorWhite, errors.New("parse color: empty")
	}
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return ColorWhite, fmt.Errorf("parse color %q: %w", s, err)
		}
		return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
	case strings.HasPrefix(s, "rgb"):
		return parseFunctional(s)
	}
	if rgba, ok := colornames.Map[s]; ok {
		return Color{
			R: float64(rgba.R) / 255,
			G: float64(rgba.G) / 255,
			B: float64(rgba.B) / 255,
			A: float64(rgba.A) / 255,
		}, nil
	}
	return ColorWhite, fmt.Errorf("parse color %q: unknown name", s)
}

// parseFunctional handles rgb(...) and rgba(...) forms. Channels are 0-255,
// alpha is 0-1.
func parseFunctional(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return ColorWhite, fmt.Errorf("parse color %q: malformed", s)
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return ColorWhite, fmt.Errorf("parse color %q: want 3 or 4 components, got %d", s, len(parts))
	}
	var v [4]float64
	v[3] = 1
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ColorWhite, fmt.Errorf("parse color %q: %w", s, err)
		}
		if i < 3 {
			f /= 255
		}
		v[i] = clamp01(f)
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// Vec2 is a 2D vector used for positions and velocities.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Grow returns the rectangle extended by m on every side (shrunk for
// negative m).
func (r Rect) Grow(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
