package ambient

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

// Stats counts engine work since creation.
type Stats struct {
	Ticks          int
	Updates        int
	Renders        int
	SkippedUpdates int
	SkippedRenders int
	Spawned        int
	Culled         int
	Drawn          int // particles or pattern passes drawn by the last render
}

// Engine runs one ambient animation on one surface. All of its state is
// private to the instance; several engines can share a Loop.
type Engine struct {
	loop    *Loop
	surface Surface
	cfg     Config
	log     *slog.Logger
	rng     *rand.Rand

	theme  Theme
	color  Color
	policy themePolicy

	store    *particleStore
	patterns patternRenderer
	gov      *Governor

	state   State
	reason  FallbackReason
	markers []Marker

	fade       fader
	swap       swapPhase
	pending    *Theme
	introTimer *Timer
	watchdog   *Timer
	pauseTimer *Timer
	rearm      bool // watchdog was suspended by a swap

	frame     FrameID
	framed    bool
	lastFrame time.Duration
	haveLast  bool
	unapplied time.Duration // elapsed time of skipped updates
	unresize  func()
	closed    bool

	onSample func(Sample)
	debug    bool
	stats    Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRand sets the random source used for spawning, perturbation and
// low-mode skips.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSampleHook registers fn to receive every closed governor window.
func WithSampleHook(fn func(Sample)) Option {
	return func(e *Engine) { e.onSample = fn }
}

// WithDebug logs per-window engine stats at debug level.
func WithDebug(enabled bool) Option {
	return func(e *Engine) { e.debug = enabled }
}

// New creates an engine for theme on surface. Call Start to probe the
// surface and begin animating.
func New(loop *Loop, surface Surface, theme Theme, opts ...Option) *Engine {
	e := &Engine{
		loop:    loop,
		surface: surface,
		cfg:     DefaultConfig(),
		log:     Logger(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gov = NewGovernor(e.cfg.Governor)
	e.patterns = patternRenderer{cfg: e.cfg.Pattern}
	e.setTheme(theme)
	e.store = newParticleStore(e.theme.Count)
	return e
}

// setTheme installs th without any fade.
func (e *Engine) setTheme(th Theme) {
	th = th.Normalize()
	c, err := ParseColor(th.Color)
	if err != nil {
		e.log.Warn("theme color", "theme", th.ID, "error", err)
	}
	e.theme = th
	e.color = c
	e.policy = policyFor(th.ID)
	if e.state == StateFallback {
		e.markers = fallbackMarkers(e.theme, e.color, e.cfg.Fallback)
	}
}

// Start probes the surface and, if usable, begins the first-mount fade and
// arms the frame clock. Calling Start more than once has no effect.
func (e *Engine) Start() {
	if e.closed || e.state != StateProbing || e.unresize != nil {
		return
	}
	e.unresize = e.loop.OnResize(e.handleResize)
	if r, ok := e.surface.(Resizer); ok {
		r.Resize(e.loop.Viewport())
	}
	if !e.checkSurface() {
		return
	}
	e.log.Info("ambient start", "theme", e.theme.ID, "type", e.theme.ParticleType.String())
	e.activate()
	e.mount()
}

// SetTheme changes the theme. A new theme ID runs the fade sequence; the
// same ID updates the descriptor in place.
func (e *Engine) SetTheme(th Theme) {
	if e.closed {
		return
	}
	th = th.Normalize()
	if e.state != StateActive {
		if th.ID != e.theme.ID {
			e.store.reset()
			e.patterns.reset()
		}
		e.setTheme(th)
		return
	}
	if th.ID == e.theme.ID && e.swap == swapIdle {
		e.setTheme(th)
		e.enforceCapacity()
		return
	}
	e.beginSwap(th)
}

// Close releases the frame request, timers and resize listener.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.cancelFrame()
	e.stopTimers()
	e.fade.stop()
	if e.unresize != nil {
		e.unresize()
		e.unresize = nil
	}
	e.log.Info("ambient close", "theme", e.theme.ID)
}

func (e *Engine) requestFrame() {
	if e.framed || e.closed {
		return
	}
	e.frame = e.loop.RequestFrame(e.tick)
	e.framed = true
}

func (e *Engine) cancelFrame() {
	if !e.framed {
		return
	}
	e.loop.CancelFrame(e.frame)
	e.framed = false
}

// tick is one frame: governor sample, advance, draw. All mutation happens
// before the draw pass reads state.
func (e *Engine) tick(now time.Duration) {
	e.framed = false
	if e.closed || e.state != StateActive {
		return
	}
	dt := time.Duration(e.cfg.ReferenceFrameMs * float64(time.Millisecond))
	if e.haveLast {
		dt = now - e.lastFrame
	}
	e.lastFrame, e.haveLast = now, true
	e.stats.Ticks++

	e.fade.update(dt)

	if s, ok := e.gov.Tick(now); ok {
		e.observe(s)
		if e.state != StateActive {
			return
		}
	}

	if e.gov.SkipUpdate(e.rng) {
		e.stats.SkippedUpdates++
		e.unapplied += dt
	} else {
		e.update(dt + e.unapplied)
		e.unapplied = 0
	}
	if e.gov.SkipRender(e.rng) {
		e.stats.SkippedRenders++
	} else {
		e.render()
	}
	e.requestFrame()
}

// observe handles one closed governor window.
func (e *Engine) observe(s Sample) {
	s.Live = e.store.Len()
	if s.Mode != s.Previous {
		e.log.Info("performance mode", "from", s.Previous.String(), "to", s.Mode.String(), "fps", s.FPS)
	}
	if e.debug {
		e.debugLog(s)
	}
	if e.onSample != nil {
		e.onSample(s)
	}
	e.enforceCapacity()
	if s.Mode == ModeLow && s.Live == 0 && !e.theme.ParticleType.IsPattern() {
		e.degrade(ReasonLowPerformance, nil)
	}
}

// enforceCapacity drops particles beyond the current capacity.
func (e *Engine) enforceCapacity() {
	live, capacity := e.store.Len(), e.Capacity()
	if live <= capacity {
		return
	}
	e.stats.Culled += live - capacity
	e.store.truncate(capacity)
}

func (e *Engine) env() *env {
	w, h := e.surface.Size()
	return &env{rng: e.rng, bounds: Rect{Width: w, Height: h}, theme: e.theme, color: e.color}
}

// update advances every particle by one tick, or the pattern accumulators by
// dt, and runs the spawn roll. dt includes the time of updates skipped in low
// mode so pattern scrolling keeps its speed.
func (e *Engine) update(dt time.Duration) {
	e.stats.Updates++
	kind := e.theme.ParticleType
	if kind.IsPattern() {
		e.patterns.advance(kind, e.theme, float64(dt)/float64(time.Millisecond), e.cfg.ReferenceFrameMs)
		return
	}

	ev := e.env()
	e.store.each(func(p *particle) bool {
		p.life++
		b := behaviorFor(p.kind)
		b.advance(p, ev)
		keep := b.edge(p, ev)
		if !keep || !p.alive() {
			e.stats.Culled++
			return false
		}
		return true
	})

	live, capacity := e.store.Len(), e.Capacity()
	if live >= capacity {
		return
	}
	if e.rng.Float64() >= spawnChance(kind, e.gov.Mode(), live, capacity, e.cfg.Governor) {
		return
	}
	e.store.add(spawnParticle(e.policy.pick(e.rng, kind), ev))
	e.stats.Spawned++
}

// render clears the surface and draws the pattern or every particle,
// weighted by the fade opacity.
func (e *Engine) render() {
	e.stats.Renders++
	e.stats.Drawn = 0
	e.surface.Clear()
	alpha := e.fade.opacity
	if alpha <= 0 {
		return
	}
	kind := e.theme.ParticleType
	if kind.IsPattern() {
		e.patterns.draw(e.surface, kind, e.theme, e.color, alpha)
		e.stats.Drawn = 1
		return
	}
	for i := range e.store.particles {
		p := &e.store.particles[i]
		if p.kind.IsPattern() {
			continue
		}
		b := behaviorFor(p.kind)
		if b.draw == nil || p.opacity <= 0 {
			continue
		}
		b.draw(e.surface, p, p.opacity*alpha)
		e.stats.Drawn++
	}
}

// Capacity returns the live particle bound for the current mode.
func (e *Engine) Capacity() int {
	return capacityFor(e.theme.Count, e.gov.Mode(), e.cfg.Governor)
}

// State returns the current render path.
func (e *Engine) State() State { return e.state }

// Reason returns why the engine is in fallback, or ReasonNone.
func (e *Engine) Reason() FallbackReason { return e.reason }

// Mode returns the governor's performance mode.
func (e *Engine) Mode() Mode { return e.gov.Mode() }

// Opacity returns the global fade opacity.
func (e *Engine) Opacity() float64 { return e.fade.opacity }

// LiveCount returns the number of live particles.
func (e *Engine) LiveCount() int { return e.store.Len() }

// Theme returns the theme currently being simulated.
func (e *Engine) Theme() Theme { return e.theme }

// Markers returns the fallback marker set, or nil when not in fallback.
func (e *Engine) Markers() []Marker { return e.markers }

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool { return e.closed }

// Stats returns the work counters.
func (e *Engine) Stats() Stats { return e.stats }
