package ambient

import (
	"fmt"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// State is the engine's render path.
type State uint8

const (
	StateProbing  State = iota // created, capability not yet checked
	StateActive                // simulating and drawing
	StateFallback              // drawing fallback markers only
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateActive:
		return "active"
	case StateFallback:
		return "fallback"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// FallbackReason records why the engine degraded.
type FallbackReason uint8

const (
	ReasonNone FallbackReason = iota
	ReasonCapability
	ReasonTimeout
	ReasonDegenerateSurface
	ReasonLowPerformance
)

func (r FallbackReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCapability:
		return "capability"
	case ReasonTimeout:
		return "timeout"
	case ReasonDegenerateSurface:
		return "degenerate-surface"
	case ReasonLowPerformance:
		return "low-performance"
	}
	return fmt.Sprintf("FallbackReason(%d)", uint8(r))
}

// Recoverable reports whether the fallback is re-evaluated on resize.
func (r FallbackReason) Recoverable() bool {
	return r == ReasonDegenerateSurface
}

// fader tweens the engine's global opacity. There is no global animation
// manager; the engine advances it once per tick.
type fader struct {
	opacity float64
	tween   *gween.Tween
	done    func()
}

// to starts a tween from the current opacity to target. done runs once, from
// update, on the tick the tween finishes.
func (f *fader) to(target float64, d time.Duration, fn ease.TweenFunc, done func()) {
	if d <= 0 {
		f.tween = nil
		f.opacity = target
		f.done = nil
		if done != nil {
			done()
		}
		return
	}
	f.tween = gween.New(float32(f.opacity), float32(target), float32(d.Seconds()), fn)
	f.done = done
}

// active reports whether a tween is running.
func (f *fader) active() bool {
	return f.tween != nil
}

func (f *fader) update(dt time.Duration) {
	if f.tween == nil {
		return
	}
	v, finished := f.tween.Update(float32(dt.Seconds()))
	f.opacity = clamp01(float64(v))
	if !finished {
		return
	}
	f.tween = nil
	if done := f.done; done != nil {
		f.done = nil
		done()
	}
}

func (f *fader) stop() {
	f.tween = nil
	f.done = nil
}

// swapPhase tracks the theme change sequence.
type swapPhase uint8

const (
	swapIdle swapPhase = iota
	swapFadingOut
	swapPaused
)

// mount runs the first-mount sequence: wait, fade in, then arm the
// no-particles watchdog.
func (e *Engine) mount() {
	lc := e.cfg.Lifecycle
	e.fade.opacity = 0
	e.introTimer = e.loop.AfterFunc(lc.InitialDelay, func() {
		e.introTimer = nil
		e.fade.to(1, lc.FadeIn, ease.OutQuad, nil)
		e.watchdog = e.loop.AfterFunc(lc.NoParticleGrace, e.checkMaterialized)
	})
}

// checkMaterialized is the one-shot no-particles check. Pattern themes never
// populate the store and are exempt.
func (e *Engine) checkMaterialized() {
	e.watchdog = nil
	if e.state != StateActive || e.theme.ParticleType.IsPattern() {
		return
	}
	if e.store.Len() == 0 {
		e.degrade(ReasonTimeout, nil)
	}
}

// beginSwap fades out, clears the store, applies the pending theme, pauses
// and fades back in.
func (e *Engine) beginSwap(th Theme) {
	e.pending = &th
	switch {
	case e.swap == swapFadingOut:
		return
	case e.swap == swapPaused, e.introTimer != nil:
		// Still fully transparent; the running pause or intro fades the new
		// theme in.
		e.applyPending()
		return
	}
	e.swap = swapFadingOut
	// The store is about to be cleared, so the no-particles check waits for
	// the new theme's fade-in.
	if e.watchdog.Stop() {
		e.watchdog = nil
		e.rearm = true
	}
	e.log.Info("theme swap", "from", e.theme.ID, "to", th.ID)
	e.fade.to(0, e.cfg.Lifecycle.FadeOut, ease.InQuad, e.finishFadeOut)
}

func (e *Engine) finishFadeOut() {
	e.applyPending()
	e.swap = swapPaused
	e.pauseTimer = e.loop.AfterFunc(e.cfg.Lifecycle.Pause, func() {
		e.pauseTimer = nil
		e.swap = swapIdle
		e.fade.to(1, e.cfg.Lifecycle.FadeIn, ease.OutQuad, nil)
		if e.rearm {
			e.rearm = false
			e.watchdog = e.loop.AfterFunc(e.cfg.Lifecycle.NoParticleGrace, e.checkMaterialized)
		}
	})
}

// applyPending clears the store and accumulators and installs the pending
// theme. Runs only while the fade is at zero.
func (e *Engine) applyPending() {
	if e.pending == nil {
		return
	}
	e.store.reset()
	e.patterns.reset()
	e.setTheme(*e.pending)
	e.pending = nil
}

// degrade switches to the fallback path and releases the frame clock and
// timers. A degenerate surface keeps the resize listener so it can recover.
func (e *Engine) degrade(reason FallbackReason, err error) {
	if e.state == StateFallback && e.reason != ReasonDegenerateSurface {
		return
	}
	e.state = StateFallback
	e.reason = reason
	e.cancelFrame()
	e.stopTimers()
	e.fade.stop()
	e.fade.opacity = 0
	e.swap = swapIdle
	e.applyPending()
	e.store.reset()
	e.markers = fallbackMarkers(e.theme, e.color, e.cfg.Fallback)
	if !reason.Recoverable() && e.unresize != nil {
		e.unresize()
		e.unresize = nil
	}
	attrs := []any{"reason", reason.String(), "theme", e.theme.ID}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	e.log.Warn("ambient fallback", attrs...)
}

// activate enters the active path from probing or a recoverable fallback.
// Frame timing restarts, so the governor starts a fresh window in high mode.
func (e *Engine) activate() {
	e.state = StateActive
	e.reason = ReasonNone
	e.markers = nil
	e.haveLast = false
	e.unapplied = 0
	e.gov.Reset()
	e.requestFrame()
}

// checkSurface is the idempotent capability check run at start and on every
// resize. It returns false if the engine degraded.
func (e *Engine) checkSurface() bool {
	if err := Probe(e.surface); err != nil {
		e.degrade(ReasonCapability, err)
		return false
	}
	if err := CheckArea(e.surface); err != nil {
		e.degrade(ReasonDegenerateSurface, err)
		return false
	}
	return true
}

func (e *Engine) handleResize(w, h, scale float64) {
	if e.closed {
		return
	}
	if r, ok := e.surface.(Resizer); ok {
		r.Resize(w, h, scale)
	}
	if e.state == StateFallback && !e.reason.Recoverable() {
		return
	}
	wasFallback := e.state == StateFallback
	if !e.checkSurface() {
		return
	}
	if wasFallback {
		e.log.Info("ambient recovered", "theme", e.theme.ID)
		e.activate()
		e.fade.to(1, e.cfg.Lifecycle.FadeIn, ease.OutQuad, nil)
	}
}

func (e *Engine) stopTimers() {
	e.introTimer.Stop()
	e.watchdog.Stop()
	e.pauseTimer.Stop()
	e.introTimer, e.watchdog, e.pauseTimer = nil, nil, nil
	e.rearm = false
}
