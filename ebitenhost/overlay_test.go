package ebitenhost

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/phanxgames/ambient"
)

type nullSurface struct{}

func (nullSurface) Size() (float64, float64)                          { return 400, 300 }
func (nullSurface) Scale() float64                                    { return 1 }
func (nullSurface) Clear()                                            {}
func (nullSurface) FillCircle(_, _, _ float64, _ ambient.Color)       {}
func (nullSurface) StrokeCircle(_, _, _, _ float64, _ ambient.Color)  {}
func (nullSurface) StrokeLine(_, _, _, _, _ float64, _ ambient.Color) {}
func (nullSurface) FillRect(_, _, _, _ float64, _ ambient.Color)      {}

func TestOverlayText(t *testing.T) {
	th := ambient.Theme{ID: "dust", ParticleType: ambient.ParticleStardust, Color: "white", Intensity: 0.5, Speed: 1, Count: 20}
	loop := ambient.NewLoop(400, 300, 1)
	e := ambient.New(loop, nullSurface{}, th, ambient.WithRand(rand.New(rand.NewPCG(1, 2))))
	got := overlayText(59.94, e)
	for _, want := range []string{"FPS: 59.9", "mode: high", "live: 0/20", "state: probing"} {
		if !strings.Contains(got, want) {
			t.Errorf("overlayText = %q, missing %q", got, want)
		}
	}
}
