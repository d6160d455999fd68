package ambient

import (
	"math"
	"time"
)

// Marker is one element of the degraded fallback display. Its animation is
// fully described by its fields; MarkerAlpha evaluates it in closed form so
// hosts need no per-frame simulation.
type Marker struct {
	X, Y   float64 // position as a fraction of the viewport
	Size   float64 // radius in logical pixels
	Color  Color
	Period time.Duration // pulse period
	Delay  time.Duration // phase offset
}

// markerLayout is the fixed placement of fallback markers.
var markerLayout = [...]Vec2{
	{0.15, 0.20}, {0.80, 0.15}, {0.50, 0.45},
	{0.25, 0.75}, {0.85, 0.70}, {0.60, 0.88},
	{0.10, 0.50}, {0.40, 0.12},
}

// fallbackMarkers builds the marker set for a theme.
func fallbackMarkers(th Theme, c Color, cfg FallbackConfig) []Marker {
	n := cfg.Markers
	if n <= 0 {
		n = 1
	}
	if n > len(markerLayout) {
		n = len(markerLayout)
	}
	period := cfg.PulsePeriod
	if period <= 0 {
		period = 3 * time.Second
	}
	out := make([]Marker, n)
	for i := range out {
		out[i] = Marker{
			X:      markerLayout[i].X,
			Y:      markerLayout[i].Y,
			Size:   cfg.MarkerSize * (0.75 + 0.5*th.Intensity),
			Color:  c.WithAlpha(math.Max(th.Intensity, 0.2)),
			Period: period,
			Delay:  period * time.Duration(i) / time.Duration(n),
		}
	}
	return out
}

// MarkerAlpha returns the marker's opacity at time t: a cosine pulse between
// 30% and 80% of its color alpha.
func MarkerAlpha(m Marker, t time.Duration) float64 {
	if m.Period <= 0 {
		return m.Color.A
	}
	phase := float64((t+m.Delay)%m.Period) / float64(m.Period)
	return m.Color.A * (0.3 + 0.5*(0.5-0.5*math.Cos(2*math.Pi*phase)))
}

// DrawMarkers renders markers onto s at time t.
func DrawMarkers(s Surface, markers []Marker, t time.Duration) {
	w, h := s.Size()
	for _, m := range markers {
		c := m.Color
		c.A = MarkerAlpha(m, t)
		s.FillCircle(m.X*w, m.Y*h, m.Size, c)
	}
}
