package ambient

import "math"

// Behaviors for particles anchored in place: radio rings, clocks, sparkles
// and lightning.

const radioEdgeZone = 40.0

var radioBehavior = behavior{
	policy:  EdgeFade,
	rate:    0.024,
	spawn:   spawnRadio,
	advance: advanceRadio,
	edge:    keepAlways,
	draw:    drawRadio,
}

func spawnRadio(e *env) particle {
	drift := Range{-0.15, 0.15}
	return particle{
		x:       Range{0.1, 0.9}.Random(e.rng) * e.w(),
		y:       Range{0.1, 0.9}.Random(e.rng) * e.h(),
		vx:      drift.Random(e.rng) * e.theme.Speed,
		vy:      drift.Random(e.rng) * e.theme.Speed,
		width:   Range{40, 110}.Random(e.rng), // max radius
		size:    1.5,
		base:    e.theme.Intensity * Range{0.5, 0.9}.Random(e.rng),
		maxLife: randInt(e.rng, 150, 260),
	}
}

// advanceRadio couples ring expansion and fade to life so both finish
// together. Edge proximity fades independently.
func advanceRadio(p *particle, e *env) {
	p.x += p.vx
	p.y += p.vy
	p.radius = p.width * p.progress()
	p.opacity = p.base * (1 - p.progress()) * radioEdgeFade(p, e.bounds)
}

// radioEdgeFade is 1 while the ring is at least radioEdgeZone from every
// edge and falls to 0 as the ring touches one.
func radioEdgeFade(p *particle, b Rect) float64 {
	d := math.Min(math.Min(p.x-b.X, b.X+b.Width-p.x), math.Min(p.y-b.Y, b.Y+b.Height-p.y)) - p.radius
	return clamp01(d / radioEdgeZone)
}

func drawRadio(s Surface, p *particle, alpha float64) {
	if p.radius <= 0 {
		return
	}
	s.StrokeCircle(p.x, p.y, p.radius, p.size, p.color.WithAlpha(alpha))
}

var clockBehavior = behavior{
	policy:   EdgeNeverRemove,
	rate:     0.03,
	fillRate: 0.30,
	spawn:    spawnClock,
	advance:  advanceClock,
	edge:     keepAlways,
	draw:     drawClock,
}

func spawnClock(e *env) particle {
	return particle{
		x:       e.rng.Float64() * e.w(),
		y:       e.rng.Float64() * e.h(),
		size:    Range{14, 30}.Random(e.rng),
		angle:   e.rng.Float64() * 2 * math.Pi,
		base:    e.theme.Intensity * Range{0.4, 0.9}.Random(e.rng),
		maxLife: randInt(e.rng, 180, 360),
	}
}

func advanceClock(p *particle, e *env) {
	p.angle += 0.04 * e.theme.Speed
	p.opacity = linearFade(p)
}

func drawClock(s Surface, p *particle, alpha float64) {
	c := p.color.WithAlpha(alpha)
	s.StrokeCircle(p.x, p.y, p.size, 1, c)
	hour := p.angle / 12
	s.StrokeLine(p.x, p.y, p.x+math.Sin(hour)*p.size*0.5, p.y-math.Cos(hour)*p.size*0.5, 1.5, c)
	s.StrokeLine(p.x, p.y, p.x+math.Sin(p.angle)*p.size*0.8, p.y-math.Cos(p.angle)*p.size*0.8, 1, c)
}

var sparkleBehavior = behavior{
	policy:   EdgeNeverRemove,
	rate:     0.05,
	fillRate: 0.30,
	spawn:    spawnSparkle,
	advance:  advanceSparkle,
	edge:     keepAlways,
	draw:     drawSparkle,
}

func spawnSparkle(e *env) particle {
	return particle{
		x:       e.rng.Float64() * e.w(),
		y:       e.rng.Float64() * e.h(),
		size:    Range{2, 6}.Random(e.rng),
		base:    e.theme.Intensity * Range{0.5, 1}.Random(e.rng),
		maxLife: randInt(e.rng, 60, 160),
	}
}

func advanceSparkle(p *particle, _ *env) {
	p.opacity = linearFade(p)
}

func drawSparkle(s Surface, p *particle, alpha float64) {
	c := p.color.WithAlpha(alpha)
	s.StrokeLine(p.x-p.size, p.y, p.x+p.size, p.y, 1, c)
	s.StrokeLine(p.x, p.y-p.size, p.x, p.y+p.size, 1, c)
	s.FillCircle(p.x, p.y, p.size*0.3, c)
}

var lightningBehavior = behavior{
	policy:  EdgeNeverRemove,
	rate:    0.024,
	spawn:   spawnLightning,
	advance: advanceLightning,
	edge:    keepAlways,
	draw:    drawLightning,
}

const (
	lightningMaxBranches = 5
	lightningSegments    = 8
	lightningJitter      = 24.0
)

func spawnLightning(e *env) particle {
	return particle{
		x:       Range{0.15, 0.85}.Random(e.rng) * e.w(),
		y:       Range{0, 0.35}.Random(e.rng) * e.h(),
		angle:   math.Pi/2 + Range{-0.5, 0.5}.Random(e.rng),
		width:   Range{0.3, 0.6}.Random(e.rng) * e.h(), // full bolt length
		size:    1.5,
		seed:    e.rng.Uint32(),
		base:    e.theme.Intensity,
		maxLife: randInt(e.rng, 40, 90),
	}
}

func advanceLightning(p *particle, _ *env) {
	p.opacity = linearFade(p)
}

// lightningShape returns the branch count and path chaos for a bolt at
// progress t. Both are non-decreasing in t.
func lightningShape(t float64) (branches int, chaos float64) {
	t = clamp01(t)
	branches = 1 + int(t*float64(lightningMaxBranches-1))
	chaos = 0.15 + 0.85*t
	return branches, chaos
}

// lightningPath returns the jagged polyline of branch k. Jitter is derived
// from the particle seed so the path is stable from tick to tick and only
// grows as the bolt ages.
func lightningPath(p *particle, k int, t float64) []Vec2 {
	_, chaos := lightningShape(t)
	length := p.width * (0.3 + 0.7*t)
	angle := p.angle
	ox, oy := p.x, p.y
	segs := lightningSegments
	if k > 0 {
		trunk := lightningPath(p, 0, t)
		at := 2 + int(hash32(int(p.seed), k)%uint32(len(trunk)-3))
		ox, oy = trunk[at].X, trunk[at].Y
		if hash32(k, int(p.seed))&1 == 0 {
			angle += 0.6
		} else {
			angle -= 0.6
		}
		length *= 0.35
		segs = lightningSegments / 2
	}
	dx, dy := math.Cos(angle), math.Sin(angle)
	pts := make([]Vec2, segs+1)
	pts[0] = Vec2{ox, oy}
	for i := 1; i <= segs; i++ {
		along := length * float64(i) / float64(segs)
		j := 0.0
		if i < segs || k > 0 {
			j = (hashUnit(int(p.seed)+k*131, i) - 0.5) * 2 * chaos * lightningJitter
		}
		pts[i] = Vec2{ox + dx*along - dy*j, oy + dy*along + dx*j}
	}
	return pts
}

func drawLightning(s Surface, p *particle, alpha float64) {
	t := p.progress()
	branches, _ := lightningShape(t)
	c := p.color.WithAlpha(alpha)
	for k := 0; k < branches; k++ {
		pts := lightningPath(p, k, t)
		w := p.size
		if k > 0 {
			w *= 0.6
		}
		for i := 1; i < len(pts); i++ {
			s.StrokeLine(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, w, c)
		}
	}
}
