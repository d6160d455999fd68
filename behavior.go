package ambient

import (
	"math"
	"math/rand/v2"
)

// EdgePolicy declares what a behavior does at the surface boundary.
type EdgePolicy uint8

const (
	EdgeWrapReroll   EdgePolicy = iota // re-enter at the opposite edge with fresh random parameters
	EdgeWrapPlain                      // re-enter at the opposite edge unchanged
	EdgeRemoveOnExit                   // despawn once outside the surface
	EdgeNeverRemove                    // bounded by life only
	EdgeFade                           // fade near edges, bounded by life only
)

var edgePolicyNames = [...]string{"wrap-reroll", "wrap-plain", "remove-on-exit", "never-remove", "edge-fade"}

func (e EdgePolicy) String() string {
	if int(e) < len(edgePolicyNames) {
		return edgePolicyNames[e]
	}
	return "EdgePolicy(?)"
}

// env is the read-only context passed to behavior functions for one tick.
type env struct {
	rng    *rand.Rand
	bounds Rect
	theme  Theme
	color  Color
}

func (e *env) w() float64 { return e.bounds.Width }
func (e *env) h() float64 { return e.bounds.Height }

// behavior is the spawn/advance/edge triple for one particle type, plus its
// draw function and spawn rates. Pattern types have a nil draw and zero rate.
type behavior struct {
	policy   EdgePolicy
	rate     float64 // base per-tick spawn chance
	fillRate float64 // spawn chance until the fill target is reached; 0 disables
	spawn    func(e *env) particle
	advance  func(p *particle, e *env)
	edge     func(p *particle, e *env) bool // false removes the particle
	draw     func(s Surface, p *particle, alpha float64)
}

var behaviors [particleTypeCount]behavior

func init() {
	behaviors = [particleTypeCount]behavior{
		ParticleGrain:        grainBehavior,
		ParticleFlow:         flowBehavior,
		ParticleRadio:        radioBehavior,
		ParticleSpeed:        speedBehavior,
		ParticleClock:        clockBehavior,
		ParticleSparkle:      sparkleBehavior,
		ParticleLightning:    lightningBehavior,
		ParticleCosmicWave:   cosmicWaveBehavior,
		ParticleStardust:     stardustBehavior,
		ParticleShootingStar: shootingStarBehavior,
		ParticleBounce:       patternBehavior,
		ParticleBubble:       bubbleBehavior,
		ParticleSpiral:       patternBehavior,
		ParticleHex:          patternBehavior,
		ParticleBars:         patternBehavior,
	}
}

// behaviorFor resolves the behavior for t once per particle.
func behaviorFor(t ParticleType) *behavior {
	if t >= particleTypeCount {
		return &patternBehavior
	}
	return &behaviors[t]
}

// spawnParticle builds a new particle of kind t. A surface without area
// yields a zero-valued particle that expires on the next tick.
func spawnParticle(t ParticleType, e *env) particle {
	b := behaviorFor(t)
	if e.bounds.Empty() || b.spawn == nil {
		return particle{kind: t, color: e.color}
	}
	p := b.spawn(e)
	p.kind = t
	p.color = e.color
	if p.maxLife < 0 {
		p.maxLife = 0
	}
	return p
}

// patternBehavior is the degenerate entry for pattern-driven types. Those
// never populate the store and are filtered from the draw pass.
var patternBehavior = behavior{
	policy:  EdgeNeverRemove,
	advance: func(*particle, *env) {},
	edge:    keepAlways,
}

func keepAlways(*particle, *env) bool { return true }

// tailFade holds opacity at base until hold (fraction of life), then fades
// linearly to zero at maxLife.
func tailFade(p *particle, hold float64) float64 {
	t := p.progress()
	if t <= hold {
		return p.base
	}
	return p.base * clamp01((1-t)/(1-hold))
}

// envelope is a three-phase fade: ramp up over in frames, hold, ramp down
// over the final out frames. Windows are absolute frame counts.
func envelope(p *particle, in, out int) float64 {
	switch {
	case in > 0 && p.life < in:
		return p.base * float64(p.life) / float64(in)
	case out > 0 && p.life > p.maxLife-out:
		return p.base * clamp01(float64(p.maxLife-p.life)/float64(out))
	}
	return p.base
}

// linearFade fades from base at birth to zero at maxLife.
func linearFade(p *particle) float64 {
	return p.base * (1 - p.progress())
}

// wrapAll moves p to the opposite edge when it leaves bounds by more than m.
func wrapAll(p *particle, b Rect, m float64) {
	switch {
	case p.x < b.X-m:
		p.x += b.Width + 2*m
	case p.x > b.X+b.Width+m:
		p.x -= b.Width + 2*m
	}
	switch {
	case p.y < b.Y-m:
		p.y += b.Height + 2*m
	case p.y > b.Y+b.Height+m:
		p.y -= b.Height + 2*m
	}
}

// perturb nudges the velocity by a random amount up to ±amt on each axis and
// clamps its magnitude to limit.
func perturb(p *particle, rng *rand.Rand, amt, limit float64) {
	p.vx += (rng.Float64() - 0.5) * 2 * amt
	p.vy += (rng.Float64() - 0.5) * 2 * amt
	if m := math.Hypot(p.vx, p.vy); m > limit && m > 0 {
		p.vx *= limit / m
		p.vy *= limit / m
	}
}
