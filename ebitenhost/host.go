package ebitenhost

import (
	"errors"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/ambient"
)

// maxHostStep bounds the elapsed time fed to the loop after a stall so timers
// and tweens do not jump.
const maxHostStep = 250 * time.Millisecond

// Host is an ebiten.Game that drives a Loop from real elapsed time and shows
// one engine's surface. Fallback markers are drawn by the host each frame.
type Host struct {
	Loop    *ambient.Loop
	Engine  *ambient.Engine
	Surface *Surface

	// Background fills the screen beneath the animation.
	Background ambient.Color
	// Script, when set, runs one step per frame before the loop advances.
	Script  *ambient.Script
	Catalog *ambient.Catalog
	// OnFrame runs after every loop step.
	OnFrame func()

	overlay *overlay
	last    time.Time
	err     error
}

// NewHost creates a host for e rendering into s.
func NewHost(loop *ambient.Loop, e *ambient.Engine, s *Surface) *Host {
	return &Host{Loop: loop, Engine: e, Surface: s, Catalog: ambient.DefaultCatalog()}
}

// ShowOverlay toggles the debug overlay.
func (h *Host) ShowOverlay(show bool) {
	if !show {
		h.overlay = nil
		return
	}
	if h.overlay == nil {
		h.overlay = newOverlay()
	}
}

// Update advances the loop by the real time since the previous call.
func (h *Host) Update() error {
	if h.err != nil {
		return h.err
	}
	now := time.Now()
	dt := time.Second / time.Duration(ebiten.TPS())
	if !h.last.IsZero() {
		dt = min(now.Sub(h.last), maxHostStep)
	}
	h.last = now

	if h.Script != nil && !h.Script.Done() {
		if err := h.Script.Step(h.Engine, h.Loop, h.Catalog); err != nil {
			h.err = err
			return err
		}
	}
	h.Loop.Step(dt)
	if h.Engine.State() == ambient.StateFallback {
		h.Surface.Clear()
		ambient.DrawMarkers(h.Surface, h.Engine.Markers(), h.Loop.Now())
	}
	if h.OnFrame != nil {
		h.OnFrame()
	}
	if h.overlay != nil {
		h.overlay.update(dt, h.Engine)
	}
	if h.Engine.Closed() {
		return ebiten.Termination
	}
	return nil
}

// Draw composites the surface onto the screen.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.Background.RGBA())
	if img := h.Surface.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
	if h.overlay != nil {
		h.overlay.draw(screen)
	}
}

// Layout reports the device pixel screen size and forwards the logical
// viewport to the loop, which notifies the engine of any change.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	if scale <= 0 {
		scale = 1
	}
	h.Loop.Resize(float64(outsideWidth), float64(outsideHeight), scale)
	return int(math.Ceil(float64(outsideWidth) * scale)), int(math.Ceil(float64(outsideHeight) * scale))
}

// Run opens a resizable window and runs h until the engine closes or the
// window is closed.
func Run(title string, width, height int, h *Host) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(h); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
