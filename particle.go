package ambient

import "math/rand/v2"

// particle holds per-particle simulation state. Unexported; owned by a
// particleStore. A particle is live while life < maxLife.
type particle struct {
	x, y    float64
	vx, vy  float64
	size    float64
	opacity float64
	base    float64 // opacity ceiling before envelopes
	color   Color
	life    int // frames elapsed
	maxLife int
	kind    ParticleType

	// Type-specific state. Not every field is meaningful for every kind.
	angle     float64
	width     float64
	height    float64
	swayPhase float64
	fadeStart int
	originY   float64
	radius    float64
	seed      uint32
}

func (p *particle) alive() bool {
	return p.life < p.maxLife
}

// progress returns life/maxLife in [0, 1].
func (p *particle) progress() float64 {
	if p.maxLife <= 0 {
		return 1
	}
	return clamp01(float64(p.life) / float64(p.maxLife))
}

// particleStore is an unordered, bounded collection of live particles.
// Removal swaps the last element into the freed slot.
type particleStore struct {
	particles []particle
}

func newParticleStore(capacityHint int) *particleStore {
	if capacityHint <= 0 {
		capacityHint = 128
	}
	return &particleStore{particles: make([]particle, 0, capacityHint)}
}

// Len returns the number of live particles.
func (s *particleStore) Len() int {
	return len(s.particles)
}

// add appends p. The caller enforces capacity.
func (s *particleStore) add(p particle) {
	s.particles = append(s.particles, p)
}

// reset drops every particle and keeps the backing array.
func (s *particleStore) reset() {
	s.particles = s.particles[:0]
}

// truncate drops particles beyond the first n.
func (s *particleStore) truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.particles) {
		s.particles = s.particles[:n]
	}
}

// each calls fn for every particle. When fn returns false the particle is
// removed with swap-remove.
func (s *particleStore) each(fn func(p *particle) bool) {
	i := 0
	for i < len(s.particles) {
		if fn(&s.particles[i]) {
			i++
			continue
		}
		last := len(s.particles) - 1
		s.particles[i] = s.particles[last]
		s.particles = s.particles[:last]
	}
}

// Random returns a value in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// randInt returns an int in [lo, hi].
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
