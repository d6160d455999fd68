package ambient

import "math"

// Behaviors for particles that travel across the surface: grain, flow,
// bubble and speed lines.

const flowFadeFrames = 60

var grainBehavior = behavior{
	policy:  EdgeWrapReroll,
	rate:    0.15,
	spawn:   spawnGrain,
	advance: advanceGrain,
	edge:    edgeGrain,
	draw:    drawGrain,
}

func spawnGrain(e *env) particle {
	p := particle{maxLife: randInt(e.rng, 900, 1500)}
	rerollGrain(&p, e)
	p.opacity = p.base
	return p
}

// rerollGrain randomizes everything a wrap is allowed to change. life and
// maxLife are untouched.
func rerollGrain(p *particle, e *env) {
	p.x = e.rng.Float64() * e.w()
	p.size = Range{1, 3}.Random(e.rng)
	p.y = -p.size
	p.vx = 0
	p.vy = Range{0.6, 1.6}.Random(e.rng) * e.theme.Speed
	p.swayPhase = e.rng.Float64() * 2 * math.Pi
	p.base = e.theme.Intensity * Range{0.5, 1}.Random(e.rng)
}

func advanceGrain(p *particle, e *env) {
	p.swayPhase += 0.03
	p.angle = math.Sin(p.swayPhase) * 0.3
	p.x += math.Sin(p.swayPhase) * 0.4
	p.y += p.vy
	p.opacity = tailFade(p, 0.8)
}

func edgeGrain(p *particle, e *env) bool {
	if p.y > e.h()+p.size {
		rerollGrain(p, e)
		return true
	}
	if p.x < -p.size {
		p.x += e.w() + p.size
	} else if p.x > e.w()+p.size {
		p.x -= e.w() + p.size
	}
	return true
}

func drawGrain(s Surface, p *particle, alpha float64) {
	l := p.size * 3
	s.StrokeLine(p.x, p.y, p.x+math.Sin(p.angle)*l, p.y+math.Cos(p.angle)*l, p.size*0.6, p.color.WithAlpha(alpha))
}

var flowBehavior = behavior{
	policy:  EdgeRemoveOnExit,
	rate:    0.08,
	spawn:   spawnFlow,
	advance: advanceFlow,
	edge:    edgeFlow,
	draw:    drawFlow,
}

// spawnFlow aims the particle to rise a target distance within a randomized
// travel time, and expires it when that time runs out.
func spawnFlow(e *env) particle {
	travel := int(Range{240, 420}.Random(e.rng) / e.theme.Speed)
	if travel < 2*flowFadeFrames {
		travel = 2 * flowFadeFrames
	}
	dist := e.h() * Range{0.5, 0.9}.Random(e.rng)
	y := e.h() + e.rng.Float64()*20
	return particle{
		x:         e.rng.Float64() * e.w(),
		y:         y,
		originY:   y,
		vx:        Range{-0.2, 0.2}.Random(e.rng),
		vy:        -dist / float64(travel),
		size:      Range{1.5, 3.5}.Random(e.rng),
		base:      e.theme.Intensity * Range{0.6, 1}.Random(e.rng),
		maxLife:   travel,
		fadeStart: travel - flowFadeFrames,
	}
}

func advanceFlow(p *particle, _ *env) {
	p.x += p.vx
	p.y += p.vy
	if p.life < p.fadeStart {
		p.opacity = p.base
		return
	}
	p.opacity = p.base * clamp01(float64(p.maxLife-p.life)/float64(p.maxLife-p.fadeStart))
}

// edgeFlow removes on side exit only; the top is left to life expiry.
func edgeFlow(p *particle, e *env) bool {
	return p.x >= -p.size && p.x <= e.w()+p.size
}

func drawFlow(s Surface, p *particle, alpha float64) {
	c := p.color.WithAlpha(alpha)
	s.StrokeLine(p.x, p.y, p.x-p.vx*8, p.y-p.vy*8, p.size*0.5, c.WithAlpha(0.5))
	s.FillCircle(p.x, p.y, p.size, c)
}

var bubbleBehavior = behavior{
	policy:  EdgeRemoveOnExit,
	rate:    0.06,
	spawn:   spawnBubble,
	advance: advanceBubble,
	edge:    edgeBubble,
	draw:    drawBubble,
}

func spawnBubble(e *env) particle {
	size := Range{3, 10}.Random(e.rng)
	return particle{
		x:         e.rng.Float64() * e.w(),
		y:         e.h() + size,
		vy:        -Range{0.4, 1.2}.Random(e.rng) * e.theme.Speed,
		size:      size,
		swayPhase: e.rng.Float64() * 2 * math.Pi,
		base:      e.theme.Intensity * Range{0.4, 0.8}.Random(e.rng),
		maxLife:   randInt(e.rng, 400, 800),
	}
}

func advanceBubble(p *particle, _ *env) {
	p.swayPhase += 0.05
	p.x += math.Sin(p.swayPhase) * 0.3
	p.y += p.vy
	p.opacity = linearFade(p)
}

func edgeBubble(p *particle, e *env) bool {
	return p.y >= -p.size && p.x >= -p.size && p.x <= e.w()+p.size
}

func drawBubble(s Surface, p *particle, alpha float64) {
	c := p.color.WithAlpha(alpha)
	s.StrokeCircle(p.x, p.y, p.size, 1, c)
	s.FillCircle(p.x-p.size*0.35, p.y-p.size*0.35, p.size*0.2, c)
}

var speedBehavior = behavior{
	policy:  EdgeWrapPlain,
	rate:    0.10,
	spawn:   spawnSpeed,
	advance: advanceSpeed,
	edge:    edgeSpeed,
	draw:    drawSpeed,
}

const speedBase = 2.0

func spawnSpeed(e *env) particle {
	return particle{
		x:       e.rng.Float64() * e.w(),
		y:       e.rng.Float64() * e.h(),
		vx:      Range{1.5, 3.5}.Random(e.rng) * speedBase * e.theme.Speed,
		width:   Range{20, 70}.Random(e.rng),
		size:    1,
		base:    e.theme.Intensity * Range{0.3, 0.8}.Random(e.rng),
		maxLife: randInt(e.rng, 240, 480),
	}
}

func advanceSpeed(p *particle, _ *env) {
	p.x += p.vx
	p.y += p.vy
	p.opacity = envelope(p, 10, 30)
}

func edgeSpeed(p *particle, e *env) bool {
	wrapAll(p, e.bounds, p.width)
	return true
}

// drawSpeed trails the line behind the motion vector.
func drawSpeed(s Surface, p *particle, alpha float64) {
	m := math.Hypot(p.vx, p.vy)
	if m == 0 {
		return
	}
	tx, ty := p.x-p.vx/m*p.width, p.y-p.vy/m*p.width
	s.StrokeLine(tx, ty, p.x, p.y, p.size, p.color.WithAlpha(alpha))
}
