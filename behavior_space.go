package ambient

import "math"

// Drifting space particles share a three-phase envelope with windows in
// absolute frames.
const (
	driftFadeIn  = 30
	driftFadeOut = 60
	starFadeIn   = 8
	starFadeOut  = 20
)

var cosmicWaveBehavior = behavior{
	policy:  EdgeWrapPlain,
	rate:    0.05,
	spawn:   spawnCosmicWave,
	advance: advanceDrift(0.04, 0.6),
	edge:    edgeDrift,
	draw:    drawCosmicWave,
}

func spawnCosmicWave(e *env) particle {
	v := Range{-0.3, 0.3}
	return particle{
		x:       e.rng.Float64() * e.w(),
		y:       e.rng.Float64() * e.h(),
		vx:      v.Random(e.rng) * e.theme.Speed,
		vy:      v.Random(e.rng) * e.theme.Speed,
		size:    Range{20, 60}.Random(e.rng),
		base:    e.theme.Intensity * Range{0.15, 0.35}.Random(e.rng),
		maxLife: randInt(e.rng, 300, 600),
	}
}

func drawCosmicWave(s Surface, p *particle, alpha float64) {
	s.FillCircle(p.x, p.y, p.size, p.color.WithAlpha(alpha*0.5))
	s.FillCircle(p.x, p.y, p.size*0.5, p.color.WithAlpha(alpha))
}

var stardustBehavior = behavior{
	policy:  EdgeWrapPlain,
	rate:    0.12,
	spawn:   spawnStardust,
	advance: advanceDrift(0.02, 0.4),
	edge:    edgeDrift,
	draw:    drawStardust,
}

func spawnStardust(e *env) particle {
	v := Range{-0.2, 0.2}
	return particle{
		x:       e.rng.Float64() * e.w(),
		y:       e.rng.Float64() * e.h(),
		vx:      v.Random(e.rng) * e.theme.Speed,
		vy:      v.Random(e.rng) * e.theme.Speed,
		size:    Range{0.8, 2.2}.Random(e.rng),
		base:    e.theme.Intensity * Range{0.4, 1}.Random(e.rng),
		maxLife: randInt(e.rng, 200, 500),
	}
}

func drawStardust(s Surface, p *particle, alpha float64) {
	s.FillCircle(p.x, p.y, p.size, p.color.WithAlpha(alpha))
}

// advanceDrift returns an advance function that perturbs velocity by up to
// amt per tick, capped at limit scaled by theme speed.
func advanceDrift(amt, limit float64) func(p *particle, e *env) {
	return func(p *particle, e *env) {
		perturb(p, e.rng, amt*e.theme.Speed, limit*e.theme.Speed)
		p.x += p.vx
		p.y += p.vy
		p.opacity = envelope(p, driftFadeIn, driftFadeOut)
	}
}

func edgeDrift(p *particle, e *env) bool {
	wrapAll(p, e.bounds, p.size)
	return true
}

var shootingStarBehavior = behavior{
	policy:  EdgeRemoveOnExit,
	rate:    0.03,
	spawn:   spawnShootingStar,
	advance: advanceShootingStar,
	edge:    edgeShootingStar,
	draw:    drawShootingStar,
}

// spawnShootingStar starts on a random side and aims at a point in the
// middle of the surface so the streak crosses it.
func spawnShootingStar(e *env) particle {
	w, h := e.w(), e.h()
	var x, y float64
	switch e.rng.IntN(4) {
	case 0:
		x, y = e.rng.Float64()*w, 0
	case 1:
		x, y = w, e.rng.Float64()*h
	case 2:
		x, y = e.rng.Float64()*w, h
	default:
		x, y = 0, e.rng.Float64()*h
	}
	mid := Range{0.25, 0.75}
	tx, ty := mid.Random(e.rng)*w, mid.Random(e.rng)*h
	dx, dy := tx-x, ty-y
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, d = 1, 1
	}
	speed := Range{5, 9}.Random(e.rng) * e.theme.Speed
	return particle{
		x:       x,
		y:       y,
		vx:      dx / d * speed,
		vy:      dy / d * speed,
		width:   Range{40, 90}.Random(e.rng), // tail length
		size:    1.5,
		base:    e.theme.Intensity,
		maxLife: randInt(e.rng, 60, 120),
	}
}

func advanceShootingStar(p *particle, _ *env) {
	p.x += p.vx
	p.y += p.vy
	p.opacity = envelope(p, starFadeIn, starFadeOut)
}

// edgeShootingStar never wraps: once the head leaves the surface plus the
// tail length it is gone.
func edgeShootingStar(p *particle, e *env) bool {
	return e.bounds.Grow(p.width).Contains(p.x, p.y)
}

func drawShootingStar(s Surface, p *particle, alpha float64) {
	m := math.Hypot(p.vx, p.vy)
	if m == 0 {
		return
	}
	c := p.color.WithAlpha(alpha)
	tx, ty := p.x-p.vx/m*p.width, p.y-p.vy/m*p.width
	s.StrokeLine(tx, ty, p.x, p.y, p.size*0.5, c.WithAlpha(0.4))
	s.StrokeLine((tx+p.x)/2, (ty+p.y)/2, p.x, p.y, p.size, c)
	s.FillCircle(p.x, p.y, p.size, c)
}
