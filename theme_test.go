package ambient

import (
	"errors"
	"testing"
)

func TestParseParticleType(t *testing.T) {
	for i := ParticleType(0); i < particleTypeCount; i++ {
		got, err := ParseParticleType(i.String())
		if err != nil || got != i {
			t.Errorf("ParseParticleType(%q) = %v, %v", i.String(), got, err)
		}
	}
	if _, err := ParseParticleType("confetti"); !errors.Is(err, ErrUnknownParticleType) {
		t.Errorf("err = %v, want ErrUnknownParticleType", err)
	}
}

func TestParticleTypeText(t *testing.T) {
	b, err := ParticleCosmicWave.MarshalText()
	if err != nil || string(b) != "cosmic-wave" {
		t.Errorf("MarshalText = %q, %v", b, err)
	}
	if _, err := particleTypeCount.MarshalText(); err == nil {
		t.Error("MarshalText of out-of-range type: want error")
	}
	var pt ParticleType
	if err := pt.UnmarshalText([]byte("bars")); err != nil || pt != ParticleBars {
		t.Errorf("UnmarshalText = %v, %v", pt, err)
	}
}

func TestIsPattern(t *testing.T) {
	patterns := map[ParticleType]bool{ParticleBounce: true, ParticleSpiral: true, ParticleHex: true, ParticleBars: true}
	for i := ParticleType(0); i < particleTypeCount; i++ {
		if i.IsPattern() != patterns[i] {
			t.Errorf("%v.IsPattern() = %v", i, i.IsPattern())
		}
	}
}

func TestScrollDirection(t *testing.T) {
	var d ScrollDirection
	if err := d.UnmarshalText([]byte("left")); err != nil || d != ScrollLeft {
		t.Errorf("UnmarshalText = %v, %v", d, err)
	}
	if !ScrollRight.Horizontal() || ScrollUp.Horizontal() {
		t.Error("Horizontal mismatch")
	}
	if ScrollUp.sign() != -1 || ScrollDown.sign() != 1 {
		t.Error("sign mismatch")
	}
	if err := d.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("unknown direction: want error")
	}
}

func TestThemeNormalize(t *testing.T) {
	th := Theme{Intensity: 3, Speed: -1, Count: -5, ParticleType: particleTypeCount + 2}.Normalize()
	if th.Intensity != 1 || th.Speed != 1 || th.Count != 0 || th.RotationSpeedMultiplier != 1 {
		t.Errorf("Normalize = %+v", th)
	}
	if th.ParticleType != ParticleSparkle {
		t.Errorf("ParticleType = %v, want sparkle", th.ParticleType)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	ids := c.IDs()
	if len(ids) != 17 {
		t.Errorf("len(IDs) = %d, want 17", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("IDs not sorted: %q before %q", ids[i-1], ids[i])
		}
	}
	th, err := c.Get("hypnosis")
	if err != nil {
		t.Fatal(err)
	}
	if th.ParticleType != ParticleSpiral || th.ScrollDirection != ScrollLeft || th.RotationSpeedMultiplier != 1.5 {
		t.Errorf("hypnosis = %+v", th)
	}
	for _, id := range ids {
		th, _ := c.Get(id)
		if _, err := ParseColor(th.Color); err != nil {
			t.Errorf("theme %q: %v", id, err)
		}
	}
	if _, err := c.Get("nope"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("err = %v, want ErrUnknownTheme", err)
	}
}

func TestLoadThemesErrors(t *testing.T) {
	tests := []struct {
		name, data string
	}{
		{"missing id", "themes:\n  - particle_type: grain\n"},
		{"duplicate", "themes:\n  - id: a\n  - id: a\n"},
		{"bad type", "themes:\n  - id: a\n    particle_type: confetti\n"},
		{"bad yaml", "themes: {\n"},
	}
	for _, tt := range tests {
		if _, err := LoadThemes([]byte(tt.data)); err == nil {
			t.Errorf("%s: want error", tt.name)
		}
	}
}
