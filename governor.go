package ambient

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Mode is the adaptive performance level.
type Mode uint8

const (
	ModeHigh Mode = iota
	ModeMedium
	ModeLow
)

func (m Mode) String() string {
	switch m {
	case ModeHigh:
		return "high"
	case ModeMedium:
		return "medium"
	case ModeLow:
		return "low"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Sample is one closed governor window.
type Sample struct {
	At       time.Duration // loop time at which the window closed
	FPS      float64
	Frames   int
	Mode     Mode // mode after applying the sample
	Previous Mode
	Live     int // live particle count when the window closed
}

// Governor counts frames over a rolling window and steps the performance
// mode one level at a time with asymmetric thresholds.
type Governor struct {
	cfg         GovernorConfig
	mode        Mode
	frames      int
	windowStart time.Duration
	started     bool
}

// NewGovernor creates a governor in ModeHigh.
func NewGovernor(cfg GovernorConfig) *Governor {
	return &Governor{cfg: cfg}
}

// Mode returns the current performance mode.
func (g *Governor) Mode() Mode {
	return g.mode
}

// Tick counts one frame at loop time now. When the window has elapsed it
// returns the closed sample and true.
func (g *Governor) Tick(now time.Duration) (Sample, bool) {
	if !g.started {
		// The anchoring tick opens the window; frames are counted after it.
		g.started = true
		g.windowStart = now
		g.frames = 0
		return Sample{}, false
	}
	g.frames++
	elapsed := now - g.windowStart
	if elapsed < g.cfg.Window {
		return Sample{}, false
	}
	fps := float64(g.frames) / elapsed.Seconds()
	s := Sample{At: now, FPS: fps, Frames: g.frames, Previous: g.mode}
	s.Mode = g.Observe(fps)
	g.frames = 0
	g.windowStart = now
	return s, true
}

// Observe applies one fps sample to the transition rules and returns the
// resulting mode. At most one step is taken per sample.
func (g *Governor) Observe(fps float64) Mode {
	switch g.mode {
	case ModeHigh:
		if fps < g.cfg.HighToMedium {
			g.mode = ModeMedium
		}
	case ModeMedium:
		switch {
		case fps < g.cfg.MediumToLow:
			g.mode = ModeLow
		case fps > g.cfg.MediumToHigh:
			g.mode = ModeHigh
		}
	case ModeLow:
		if fps > g.cfg.LowToMedium {
			g.mode = ModeMedium
		}
	}
	return g.mode
}

// Reset returns to ModeHigh and discards the open window.
func (g *Governor) Reset() {
	g.mode = ModeHigh
	g.frames = 0
	g.started = false
}

// SkipUpdate reports whether this tick's update work should be skipped.
// Only low mode skips.
func (g *Governor) SkipUpdate(rng *rand.Rand) bool {
	return g.mode == ModeLow && rng.Float64() < g.cfg.UpdateSkipLow
}

// SkipRender reports whether this tick's render work should be skipped.
// The draw is independent of SkipUpdate.
func (g *Governor) SkipRender(rng *rand.Rand) bool {
	return g.mode == ModeLow && rng.Float64() < g.cfg.RenderSkipLow
}
