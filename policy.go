package ambient

import (
	"math"
	"math/rand/v2"
)

// fillTarget is the fraction of capacity that fill-type behaviors spawn
// toward at their fill rate before dropping to the steady rate.
const fillTarget = 0.6

// mixEntry is one sub-behavior of a mixture theme.
type mixEntry struct {
	kind   ParticleType
	weight float64
}

// themePolicy holds the per-theme special cases keyed by theme ID.
type themePolicy struct {
	mixture []mixEntry
}

var themePolicies = map[string]themePolicy{
	"nebula": {mixture: []mixEntry{
		{ParticleShootingStar, 0.20},
		{ParticleStardust, 0.15},
		{ParticleCosmicWave, 0.65},
	}},
	"tempest": {mixture: []mixEntry{
		{ParticleLightning, 0.10},
		{ParticleGrain, 0.90},
	}},
	"static-field": {mixture: []mixEntry{
		{ParticleSparkle, 0.30},
		{ParticleRadio, 0.70},
	}},
}

func policyFor(id string) themePolicy {
	return themePolicies[id]
}

// pick returns the sub-type to spawn for one successful spawn roll. Themes
// without a mixture spawn their own type.
func (pol themePolicy) pick(rng *rand.Rand, fallback ParticleType) ParticleType {
	if len(pol.mixture) == 0 {
		return fallback
	}
	var total float64
	for _, m := range pol.mixture {
		total += m.weight
	}
	r := rng.Float64() * total
	for _, m := range pol.mixture {
		if r < m.weight {
			return m.kind
		}
		r -= m.weight
	}
	return pol.mixture[len(pol.mixture)-1].kind
}

// capacityFor returns round(count × capacity scale for mode).
func capacityFor(count int, mode Mode, cfg GovernorConfig) int {
	if count <= 0 {
		return 0
	}
	return int(math.Round(float64(count) * cfg.CapacityScale.For(mode)))
}

// spawnChance returns the per-tick spawn probability for t. Fill-type
// behaviors use their fill rate until live reaches fillTarget of capacity.
func spawnChance(t ParticleType, mode Mode, live, capacity int, cfg GovernorConfig) float64 {
	b := behaviorFor(t)
	rate := b.rate
	if b.fillRate > 0 && float64(live) < fillTarget*float64(capacity) {
		rate = b.fillRate
	}
	return rate * cfg.SpawnScale.For(mode)
}
