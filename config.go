package ambient

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the engine's tunable constants. The numeric defaults were
// tuned by eye; treat them as knobs.
type Config struct {
	Governor  GovernorConfig  `yaml:"governor"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Pattern   PatternConfig   `yaml:"pattern"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	// ReferenceFrameMs is the frame duration that pattern speeds are
	// expressed against.
	ReferenceFrameMs float64 `yaml:"reference_frame_ms"`
}

// ModeScale holds one value per performance mode.
type ModeScale struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// For returns the value for mode m.
func (s ModeScale) For(m Mode) float64 {
	switch m {
	case ModeMedium:
		return s.Medium
	case ModeLow:
		return s.Low
	default:
		return s.High
	}
}

// GovernorConfig holds the hysteresis thresholds and per-mode scales.
type GovernorConfig struct {
	Window        time.Duration `yaml:"window"`
	HighToMedium  float64       `yaml:"high_to_medium"`  // fps below this steps high → medium
	MediumToLow   float64       `yaml:"medium_to_low"`   // fps below this steps medium → low
	LowToMedium   float64       `yaml:"low_to_medium"`   // fps above this steps low → medium
	MediumToHigh  float64       `yaml:"medium_to_high"`  // fps above this steps medium → high
	SpawnScale    ModeScale     `yaml:"spawn_scale"`
	CapacityScale ModeScale     `yaml:"capacity_scale"`
	UpdateSkipLow float64       `yaml:"update_skip_low"` // probability of skipping update work in low mode
	RenderSkipLow float64       `yaml:"render_skip_low"` // probability of skipping render work in low mode
}

// LifecycleConfig holds fade sequence timing.
type LifecycleConfig struct {
	InitialDelay    time.Duration `yaml:"initial_delay"`
	FadeIn          time.Duration `yaml:"fade_in"`
	FadeOut         time.Duration `yaml:"fade_out"`
	Pause           time.Duration `yaml:"pause"`
	NoParticleGrace time.Duration `yaml:"no_particle_grace"`
}

// PatternConfig holds per-pattern geometry and speed.
type PatternConfig struct {
	DotSpacing    float64 `yaml:"dot_spacing"`
	DotRadius     float64 `yaml:"dot_radius"`
	DotSpeed      float64 `yaml:"dot_speed"`
	SpiralSpacing float64 `yaml:"spiral_spacing"`
	SpiralSpeed   float64 `yaml:"spiral_speed"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	HexSize       float64 `yaml:"hex_size"`
	HexSpeed      float64 `yaml:"hex_speed"`
	HexBufferRows int     `yaml:"hex_buffer_rows"`
	BarSpacing    float64 `yaml:"bar_spacing"`
	BarHeight     float64 `yaml:"bar_height"`
	BarSpeed      float64 `yaml:"bar_speed"`
	BarOpacity    float64 `yaml:"bar_opacity"`
	Margin        float64 `yaml:"margin"`
}

// FallbackConfig sizes the degraded marker set.
type FallbackConfig struct {
	Markers     int           `yaml:"markers"`
	MarkerSize  float64       `yaml:"marker_size"`
	PulsePeriod time.Duration `yaml:"pulse_period"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("ambient: embedded defaults: %v", err))
	}
	return cfg
}

// LoadConfig overlays the YAML file at path on the embedded defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	g := c.Governor
	if g.Window <= 0 {
		return fmt.Errorf("governor.window must be positive")
	}
	if g.HighToMedium >= g.MediumToHigh || g.MediumToLow >= g.LowToMedium {
		return fmt.Errorf("governor thresholds must leave a hysteresis band")
	}
	if c.ReferenceFrameMs <= 0 {
		return fmt.Errorf("reference_frame_ms must be positive")
	}
	if c.Pattern.DotSpacing <= 0 || c.Pattern.SpiralSpacing <= 0 || c.Pattern.HexSize <= 0 || c.Pattern.BarSpacing <= 0 {
		return fmt.Errorf("pattern spacings must be positive")
	}
	return nil
}
