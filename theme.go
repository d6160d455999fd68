package ambient

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ParticleType selects the behavior a theme runs.
type ParticleType uint8

const (
	ParticleGrain        ParticleType = iota // falling grains with sway
	ParticleFlow                             // rising streams that expire near the top
	ParticleRadio                            // expanding rings
	ParticleSpeed                            // horizontal speed lines
	ParticleClock                            // stationary clock faces
	ParticleSparkle                          // stationary four-point stars
	ParticleLightning                        // branching bolts
	ParticleCosmicWave                       // drifting soft glows
	ParticleStardust                         // drifting specks
	ParticleShootingStar                     // edge-to-edge streaks
	ParticleBounce                           // polka-dot pattern
	ParticleBubble                           // rising bubbles
	ParticleSpiral                           // spiral pattern
	ParticleHex                              // hex grid pattern
	ParticleBars                             // horizontal bar pattern
	particleTypeCount
)

var particleTypeNames = [particleTypeCount]string{
	ParticleGrain:        "grain",
	ParticleFlow:         "flow",
	ParticleRadio:        "radio",
	ParticleSpeed:        "speed",
	ParticleClock:        "clock",
	ParticleSparkle:      "sparkle",
	ParticleLightning:    "lightning",
	ParticleCosmicWave:   "cosmic-wave",
	ParticleStardust:     "stardust",
	ParticleShootingStar: "shooting-star",
	ParticleBounce:       "bounce",
	ParticleBubble:       "bubble",
	ParticleSpiral:       "spiral",
	ParticleHex:          "hex",
	ParticleBars:         "bars",
}

// ErrUnknownParticleType is returned when a particle type name is not recognized.
var ErrUnknownParticleType = errors.New("unknown particle type")

// ErrUnknownTheme is returned by Catalog.Get for a missing theme ID.
var ErrUnknownTheme = errors.New("unknown theme")

func (t ParticleType) String() string {
	if t < particleTypeCount {
		return particleTypeNames[t]
	}
	return fmt.Sprintf("ParticleType(%d)", uint8(t))
}

// IsPattern reports whether the type is drawn by the pattern renderer instead
// of the particle store.
func (t ParticleType) IsPattern() bool {
	switch t {
	case ParticleBounce, ParticleSpiral, ParticleHex, ParticleBars:
		return true
	}
	return false
}

// ParseParticleType maps a name such as "cosmic-wave" to its ParticleType.
func ParseParticleType(name string) (ParticleType, error) {
	for i, n := range particleTypeNames {
		if n == name {
			return ParticleType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParticleType, name)
}

func (t ParticleType) MarshalText() ([]byte, error) {
	if t >= particleTypeCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParticleType, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *ParticleType) UnmarshalText(b []byte) error {
	v, err := ParseParticleType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ScrollDirection is the travel direction of scrolling patterns.
type ScrollDirection uint8

const (
	ScrollDown ScrollDirection = iota // default
	ScrollUp
	ScrollLeft
	ScrollRight
)

var scrollDirectionNames = [...]string{"down", "up", "left", "right"}

func (d ScrollDirection) String() string {
	if int(d) < len(scrollDirectionNames) {
		return scrollDirectionNames[d]
	}
	return fmt.Sprintf("ScrollDirection(%d)", uint8(d))
}

// Horizontal reports whether the direction scrolls along the X axis.
func (d ScrollDirection) Horizontal() bool {
	return d == ScrollLeft || d == ScrollRight
}

// sign is +1 for directions that move content toward increasing coordinates.
func (d ScrollDirection) sign() float64 {
	if d == ScrollUp || d == ScrollLeft {
		return -1
	}
	return 1
}

func (d ScrollDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *ScrollDirection) UnmarshalText(b []byte) error {
	for i, n := range scrollDirectionNames {
		if n == string(b) {
			*d = ScrollDirection(i)
			return nil
		}
	}
	return fmt.Errorf("unknown scroll direction %q", b)
}

// Theme is the descriptor the host supplies whenever the visual theme
// changes. Count is an upper bound on live particles, not a target.
type Theme struct {
	ID                      string          `yaml:"id"`
	ParticleType            ParticleType    `yaml:"particle_type"`
	Color                   string          `yaml:"color"`
	Intensity               float64         `yaml:"intensity"`
	Speed                   float64         `yaml:"speed"`
	Count                   int             `yaml:"count"`
	RotationSpeedMultiplier float64         `yaml:"rotation_speed_multiplier,omitempty"`
	ScrollDirection         ScrollDirection `yaml:"scroll_direction,omitempty"`
}

// Normalize clamps out-of-range fields to usable values.
func (t Theme) Normalize() Theme {
	t.Intensity = clamp01(t.Intensity)
	if t.Speed <= 0 {
		t.Speed = 1
	}
	if t.Count < 0 {
		t.Count = 0
	}
	if t.RotationSpeedMultiplier == 0 {
		t.RotationSpeedMultiplier = 1
	}
	if t.ParticleType >= particleTypeCount {
		t.ParticleType = ParticleSparkle
	}
	return t
}

//go:embed themes.yaml
var themesYAML []byte

// Catalog is a set of named themes.
type Catalog struct {
	themes map[string]Theme
}

// DefaultCatalog returns the built-in theme catalog.
func DefaultCatalog() *Catalog {
	c, err := LoadThemes(themesYAML)
	if err != nil {
		panic(fmt.Sprintf("ambient: embedded themes: %v", err))
	}
	return c
}

// LoadThemes parses a YAML theme list of the form `themes: [...]`.
func LoadThemes(data []byte) (*Catalog, error) {
	var doc struct {
		Themes []Theme `yaml:"themes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}
	c := &Catalog{themes: make(map[string]Theme, len(doc.Themes))}
	for i, th := range doc.Themes {
		if th.ID == "" {
			return nil, fmt.Errorf("parse themes: entry %d has no id", i)
		}
		if _, dup := c.themes[th.ID]; dup {
			return nil, fmt.Errorf("parse themes: duplicate id %q", th.ID)
		}
		c.themes[th.ID] = th.Normalize()
	}
	return c, nil
}

// Get returns the theme with the given ID.
func (c *Catalog) Get(id string) (Theme, error) {
	th, ok := c.themes[id]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	return th, nil
}

// IDs returns the catalog's theme IDs in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.themes))
	for id := range c.themes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
