package ambient

import (
	"errors"
	"math"
	"testing"
	"time"
)

const testFrame = 16 * time.Millisecond

func newTestEngine(t *testing.T, th Theme, opts ...Option) (*Engine, *Loop, *recordingSurface) {
	t.Helper()
	loop := NewLoop(400, 300, 1)
	s := newRecordingSurface(400, 300)
	opts = append([]Option{WithRand(newTestRand())}, opts...)
	return New(loop, s, th, opts...), loop, s
}

func catalogTheme(t *testing.T, id string) Theme {
	t.Helper()
	th, err := DefaultCatalog().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return th
}

func stepN(loop *Loop, n int, dt time.Duration) {
	for range n {
		loop.Step(dt)
	}
}

func TestEngineFlowScenario(t *testing.T) {
	th := Theme{ID: "flow-test", ParticleType: ParticleFlow, Color: "#ffaa00", Intensity: 0.8, Speed: 1, Count: 100}
	e, loop, _ := newTestEngine(t, th)
	e.Start()
	for range 60 {
		loop.Step(testFrame)
		if e.LiveCount() > 100 {
			t.Fatalf("LiveCount() = %d, want <= 100", e.LiveCount())
		}
		for i := range e.store.particles {
			p := &e.store.particles[i]
			if p.kind != ParticleFlow {
				t.Fatalf("particle kind = %v, want flow", p.kind)
			}
			if p.life > 0 && p.y >= p.originY {
				t.Fatalf("flow particle at y = %v, not above origin %v", p.y, p.originY)
			}
		}
	}
	if e.State() != StateActive {
		t.Errorf("State() = %v, want active", e.State())
	}
	if e.Stats().Spawned == 0 {
		t.Error("no particles spawned in 60 ticks")
	}
}

func TestEngineCapabilityFallback(t *testing.T) {
	th := catalogTheme(t, "glimmer")
	e, loop, s := newTestEngine(t, th)
	s.probeErr = errors.New("no 2d context")
	e.Start()

	if e.State() != StateFallback || e.Reason() != ReasonCapability {
		t.Fatalf("State, Reason = %v, %v, want fallback, capability", e.State(), e.Reason())
	}
	if n := len(e.Markers()); n != 6 {
		t.Errorf("len(Markers()) = %d, want 6", n)
	}
	if p := loop.Pending(); p != (Pending{}) {
		t.Errorf("Pending() = %+v, want nothing outstanding", p)
	}
	stepN(loop, 10, testFrame)
	if e.Stats().Ticks != 0 {
		t.Errorf("Ticks = %d after fallback, want 0", e.Stats().Ticks)
	}
	// A resize does not retry a capability failure.
	loop.Resize(800, 600, 1)
	if e.State() != StateFallback {
		t.Errorf("State() = %v after resize, want fallback", e.State())
	}
}

func TestEnginePanickingSurfaceFallsBack(t *testing.T) {
	e, _, s := newTestEngine(t, catalogTheme(t, "desert"))
	s.panicky = true
	e.Start()
	if e.Reason() != ReasonCapability {
		t.Errorf("Reason() = %v, want capability", e.Reason())
	}
}

// fadeTrace steps the loop until done returns true or limit ticks pass and
// returns the opacity after every tick.
func fadeTrace(loop *Loop, e *Engine, limit int, done func() bool) []float64 {
	var out []float64
	for range limit {
		loop.Step(testFrame)
		out = append(out, e.Opacity())
		if done() {
			break
		}
	}
	return out
}

func TestEngineFirstMountFadesIn(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	if e.Opacity() != 0 {
		t.Fatalf("Opacity() at start = %v, want 0", e.Opacity())
	}
	// Nothing shows during the initial delay.
	stepN(loop, 5, testFrame)
	if e.Opacity() != 0 {
		t.Errorf("Opacity() during initial delay = %v, want 0", e.Opacity())
	}
	trace := fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	for i := 1; i < len(trace); i++ {
		if trace[i] < trace[i-1] {
			t.Fatalf("opacity fell during fade-in: %v", trace)
		}
	}
	if e.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1", e.Opacity())
	}
}

func TestEngineThemeSwapSequence(t *testing.T) {
	a := catalogTheme(t, "glimmer")
	b := catalogTheme(t, "starfield")
	e, loop, _ := newTestEngine(t, a)
	e.Start()
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	stepN(loop, 30, testFrame)
	if e.LiveCount() == 0 {
		t.Fatal("no sparkles before swap")
	}

	e.SetTheme(b)
	if e.Theme().ID != a.ID {
		t.Fatalf("theme switched before fade-out")
	}

	// Fade out: opacity falls to zero while theme A is still simulated.
	prev := e.Opacity()
	for e.Theme().ID == a.ID {
		loop.Step(testFrame)
		if e.Opacity() > prev {
			t.Fatalf("opacity rose during fade-out: %v -> %v", prev, e.Opacity())
		}
		prev = e.Opacity()
		if loop.Now() > 10*time.Second {
			t.Fatal("swap never happened")
		}
	}
	if e.Opacity() != 0 {
		t.Fatalf("theme swapped at opacity %v, want 0", e.Opacity())
	}
	for i := range e.store.particles {
		if k := e.store.particles[i].kind; k != ParticleStardust {
			t.Fatalf("particle of kind %v survived the swap", k)
		}
	}

	// Pause, then fade back in.
	swapAt := loop.Now()
	for e.Opacity() == 0 {
		loop.Step(testFrame)
		if loop.Now()-swapAt > time.Second {
			t.Fatal("fade-in never started")
		}
	}
	if paused := loop.Now() - swapAt; paused < 150*time.Millisecond {
		t.Errorf("pause = %v, want >= 150ms", paused)
	}
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	if e.Opacity() != 1 {
		t.Errorf("Opacity() after swap = %v, want 1", e.Opacity())
	}
}

func TestEngineSwapDuringFadeOutKeepsLatest(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })

	e.SetTheme(catalogTheme(t, "starfield"))
	stepN(loop, 3, testFrame)
	e.SetTheme(catalogTheme(t, "tidepool"))
	stepN(loop, 100, testFrame)
	if e.Theme().ID != "tidepool" {
		t.Errorf("Theme().ID = %q, want tidepool", e.Theme().ID)
	}
}

func TestEngineSwapDuringIntro(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	loop.Step(testFrame)
	e.SetTheme(catalogTheme(t, "desert"))
	if e.Theme().ID != "desert" {
		t.Fatalf("Theme().ID = %q, want desert applied during the intro", e.Theme().ID)
	}
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	if e.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1", e.Opacity())
	}
}

func TestEngineSameThemeUpdatesInPlace(t *testing.T) {
	th := catalogTheme(t, "glimmer")
	e, loop, _ := newTestEngine(t, th)
	e.Start()
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	live := e.LiveCount()

	th.Color = "#00ff00"
	e.SetTheme(th)
	loop.Step(testFrame)
	if e.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1 (no fade)", e.Opacity())
	}
	if e.color != (Color{G: 1, A: 1}) {
		t.Errorf("color = %+v, want green", e.color)
	}
	if e.LiveCount() < live-5 {
		t.Errorf("LiveCount() dropped from %d to %d; store should be kept", live, e.LiveCount())
	}
}

func TestEngineCloseReleasesEverything(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	stepN(loop, 3, testFrame) // intro timer still pending
	e.SetTheme(catalogTheme(t, "desert"))
	e.Close()
	if p := loop.Pending(); p != (Pending{}) {
		t.Errorf("Pending() after Close = %+v, want zero", p)
	}
	ticks := e.Stats().Ticks
	stepN(loop, 10, testFrame)
	if e.Stats().Ticks != ticks {
		t.Error("engine ticked after Close")
	}
	e.Close()
	e.SetTheme(catalogTheme(t, "tidepool"))
	e.Start()
	if e.Theme().ID != "desert" || !e.Closed() {
		t.Errorf("closed engine changed: theme %q closed %v", e.Theme().ID, e.Closed())
	}
}

func TestEngineCloseMidSwap(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	e.SetTheme(catalogTheme(t, "desert"))
	stepN(loop, 2, testFrame)
	e.Close()
	if p := loop.Pending(); p != (Pending{}) {
		t.Errorf("Pending() = %+v, want zero", p)
	}
}

func TestEngineNoParticleTimeout(t *testing.T) {
	th := Theme{ID: "empty", ParticleType: ParticleSparkle, Color: "white", Intensity: 1, Speed: 1, Count: 0}
	e, loop, _ := newTestEngine(t, th)
	e.Start()
	stepN(loop, 250, testFrame) // 4s
	if e.State() != StateFallback || e.Reason() != ReasonTimeout {
		t.Fatalf("State, Reason = %v, %v, want fallback, timeout", e.State(), e.Reason())
	}
	if p := loop.Pending(); p.Frames != 0 || p.Timers != 0 {
		t.Errorf("Pending() = %+v, want no frames or timers", p)
	}
}

func TestEnginePatternExemptFromTimeout(t *testing.T) {
	e, loop, s := newTestEngine(t, catalogTheme(t, "hive"))
	e.Start()
	stepN(loop, 300, testFrame)
	if e.State() != StateActive {
		t.Fatalf("State() = %v, want active", e.State())
	}
	if e.LiveCount() != 0 {
		t.Errorf("LiveCount() = %d, pattern themes never populate the store", e.LiveCount())
	}
	if len(s.calls) == 0 {
		t.Error("pattern drew nothing")
	}
}

func TestEngineDegenerateSurfaceRecovers(t *testing.T) {
	loop := NewLoop(0, 0, 1)
	s := newRecordingSurface(0, 0)
	e := New(loop, s, catalogTheme(t, "glimmer"), WithRand(newTestRand()))
	e.Start()
	if e.State() != StateFallback || e.Reason() != ReasonDegenerateSurface {
		t.Fatalf("State, Reason = %v, %v, want fallback, degenerate-surface", e.State(), e.Reason())
	}
	if p := loop.Pending(); p.Frames != 0 || p.Listeners != 1 {
		t.Errorf("Pending() = %+v, want no frames and the resize listener", p)
	}

	loop.Resize(400, 300, 2)
	if e.State() != StateActive {
		t.Fatalf("State() after resize = %v, want active", e.State())
	}
	if s.scale != 2 {
		t.Errorf("surface scale = %v, want 2", s.scale)
	}
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	if e.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1 after recovery", e.Opacity())
	}
}

func TestEngineResizeToZeroWhileActive(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	stepN(loop, 60, testFrame)
	loop.Resize(0, 300, 1)
	if e.Reason() != ReasonDegenerateSurface {
		t.Fatalf("Reason() = %v, want degenerate-surface", e.Reason())
	}
	if e.LiveCount() != 0 {
		t.Errorf("LiveCount() = %d in fallback, want 0", e.LiveCount())
	}
	loop.Resize(400, 300, 1)
	if e.State() != StateActive {
		t.Errorf("State() = %v, want active", e.State())
	}
}

func TestEngineLowPerformanceFallback(t *testing.T) {
	th := Theme{ID: "empty", ParticleType: ParticleSparkle, Color: "white", Intensity: 1, Speed: 1, Count: 0}
	var samples []Sample
	e, loop, _ := newTestEngine(t, th, WithSampleHook(func(s Sample) { samples = append(samples, s) }))
	e.Start()
	stepN(loop, 15, 200*time.Millisecond) // 5 fps
	if e.Reason() != ReasonLowPerformance {
		t.Fatalf("Reason() = %v, want low-performance", e.Reason())
	}
	if len(samples) != 2 || samples[1].Mode != ModeLow {
		t.Errorf("samples = %+v, want two ending in low", samples)
	}
}

func TestEngineCapacityFollowsMode(t *testing.T) {
	th := Theme{ID: "dust", ParticleType: ParticleStardust, Color: "white", Intensity: 1, Speed: 1, Count: 20}
	e, loop, _ := newTestEngine(t, th)
	e.Start()
	stepN(loop, 600, testFrame)
	if e.LiveCount() < 15 {
		t.Fatalf("LiveCount() = %d, want the store filled toward %d", e.LiveCount(), th.Count)
	}
	// 25 fps drops to medium within two windows.
	for range 60 {
		loop.Step(40 * time.Millisecond)
		if e.LiveCount() > e.Capacity() {
			t.Fatalf("LiveCount() = %d over capacity %d in %v", e.LiveCount(), e.Capacity(), e.Mode())
		}
	}
	if e.Mode() != ModeMedium {
		t.Errorf("Mode() = %v, want medium", e.Mode())
	}
	if e.Capacity() != 14 {
		t.Errorf("Capacity() = %d, want 14", e.Capacity())
	}
}

func TestEngineMixtureSpawnsSubTypes(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "nebula"))
	e.Start()
	kinds := map[ParticleType]bool{}
	for range 1200 {
		loop.Step(testFrame)
		for i := range e.store.particles {
			kinds[e.store.particles[i].kind] = true
		}
	}
	if !kinds[ParticleCosmicWave] || !kinds[ParticleStardust] || !kinds[ParticleShootingStar] {
		t.Errorf("kinds = %v, want every nebula sub-type", kinds)
	}
	if len(kinds) != 3 {
		t.Errorf("kinds = %v, want exactly the nebula mixture", kinds)
	}
}

func TestEngineBadColorFallsBackToWhite(t *testing.T) {
	th := catalogTheme(t, "glimmer")
	th.Color = "not-a-color"
	e, _, _ := newTestEngine(t, th)
	if e.color != ColorWhite {
		t.Errorf("color = %+v, want white", e.color)
	}
}

func TestEnginesShareLoopIndependently(t *testing.T) {
	loop := NewLoop(400, 300, 1)
	s1, s2 := newRecordingSurface(400, 300), newRecordingSurface(400, 300)
	e1 := New(loop, s1, catalogTheme(t, "glimmer"), WithRand(newTestRand()))
	e2 := New(loop, s2, catalogTheme(t, "scanlines"), WithRand(newTestRand()))
	e1.Start()
	e2.Start()
	stepN(loop, 60, testFrame)
	e1.Close()
	stepN(loop, 60, testFrame)
	if e2.State() != StateActive || e2.Stats().Ticks != 120 {
		t.Errorf("second engine: state %v ticks %d, want active and 120", e2.State(), e2.Stats().Ticks)
	}
	if p := loop.Pending(); p.Frames != 1 || p.Listeners != 1 {
		t.Errorf("Pending() = %+v, want only the second engine's frame and listener", p)
	}
}

func TestEngineRenderWeightsByOpacity(t *testing.T) {
	e, loop, s := newTestEngine(t, catalogTheme(t, "scanlines"))
	e.Start()
	stepN(loop, 5, testFrame)
	if len(s.calls) != 0 {
		t.Errorf("drew %d calls at zero opacity", len(s.calls))
	}
	fadeTrace(loop, e, 200, func() bool { return e.Opacity() == 1 })
	loop.Step(testFrame)
	for _, c := range s.calls {
		if c.c.A > e.cfg.Pattern.BarOpacity+1e-9 {
			t.Errorf("bar alpha %v exceeds %v", c.c.A, e.cfg.Pattern.BarOpacity)
		}
	}
}

func TestEngineInPlaceCountShrinksStore(t *testing.T) {
	th := Theme{ID: "dust", ParticleType: ParticleStardust, Color: "white", Intensity: 1, Speed: 1, Count: 40}
	e, loop, _ := newTestEngine(t, th)
	e.Start()
	stepN(loop, 600, testFrame)
	if e.LiveCount() <= 5 {
		t.Fatalf("LiveCount() = %d, want more than 5 before shrinking", e.LiveCount())
	}
	culled := e.Stats().Culled

	th.Count = 5
	e.SetTheme(th)
	if e.Capacity() != 5 || e.LiveCount() > 5 {
		t.Fatalf("LiveCount(), Capacity() = %d, %d after SetTheme, want at most 5", e.LiveCount(), e.Capacity())
	}
	if e.Stats().Culled <= culled {
		t.Error("truncated particles not counted as culled")
	}
	for range 30 {
		loop.Step(testFrame)
		if e.LiveCount() > e.Capacity() {
			t.Fatalf("LiveCount() = %d over capacity %d", e.LiveCount(), e.Capacity())
		}
	}
}

func TestEngineSwapNearGraceKeepsRunning(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	stepN(loop, 168, testFrame) // 2.688s, just before the 3.1s deadline
	if e.LiveCount() == 0 {
		t.Fatal("glimmer spawned nothing before the swap")
	}
	e.SetTheme(catalogTheme(t, "starfield"))
	stepN(loop, 250, testFrame)
	if e.State() != StateActive {
		t.Errorf("State, Reason = %v, %v after swap, want active", e.State(), e.Reason())
	}
}

func TestEngineSwapRearmsWatchdog(t *testing.T) {
	e, loop, _ := newTestEngine(t, catalogTheme(t, "glimmer"))
	e.Start()
	stepN(loop, 168, testFrame)
	e.SetTheme(Theme{ID: "empty", ParticleType: ParticleSparkle, Color: "white", Intensity: 1, Speed: 1, Count: 0})
	stepN(loop, 82, testFrame) // 4.0s: the original deadline has passed
	if e.State() != StateActive {
		t.Fatalf("State, Reason = %v, %v, want active until the new grace ends", e.State(), e.Reason())
	}
	stepN(loop, 200, testFrame) // 7.2s: past fade-out, pause and a full grace
	if e.State() != StateFallback || e.Reason() != ReasonTimeout {
		t.Errorf("State, Reason = %v, %v, want fallback, timeout", e.State(), e.Reason())
	}
}

func TestEngineLowModeKeepsPatternSpeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Governor.Window = time.Hour
	th := catalogTheme(t, "scanlines")
	high, highLoop, _ := newTestEngine(t, th, WithConfig(cfg))
	low, lowLoop, _ := newTestEngine(t, th, WithConfig(cfg))
	high.Start()
	low.Start()
	low.gov.mode = ModeLow

	stepN(highLoop, 120, testFrame)
	stepN(lowLoop, 120, testFrame)
	if low.Stats().SkippedUpdates == 0 {
		t.Fatal("low mode skipped no updates")
	}
	// One unskipped tick applies any time still owed.
	low.gov.mode = ModeHigh
	highLoop.Step(testFrame)
	lowLoop.Step(testFrame)

	hi, lo := high.patterns.acc.bar, low.patterns.acc.bar
	if math.Abs(hi-lo) > 1e-6 {
		t.Errorf("bar accumulator high = %v, low = %v, want equal over the same time", hi, lo)
	}
}

func TestEngineRecoveryResetsMode(t *testing.T) {
	loop := NewLoop(400, 300, 1)
	e := New(loop, newRecordingSurface(400, 300), catalogTheme(t, "glimmer"), WithRand(newTestRand()))
	e.Start()
	e.gov.mode = ModeLow
	loop.Resize(0, 300, 1)
	if e.Reason() != ReasonDegenerateSurface {
		t.Fatalf("Reason() = %v, want degenerate-surface", e.Reason())
	}
	loop.Resize(400, 300, 1)
	if e.State() != StateActive || e.Mode() != ModeHigh {
		t.Errorf("State, Mode = %v, %v after recovery, want active, high", e.State(), e.Mode())
	}
}
