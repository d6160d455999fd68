// Package ambient is a theme-driven background animation engine. One [Engine]
// animates one [Surface] with particles or a scrolling pattern chosen by a
// [Theme], adapting its workload to the frame rate it actually gets.
//
// # Quick start
//
// Engines are driven by a [Loop], a single-threaded frame clock that the
// host steps once per displayed frame. The ebitenhost package does this for
// you:
//
//	loop := ambient.NewLoop(960, 600, 1)
//	surface := ebitenhost.New(960, 600, 1)
//	th, _ := ambient.DefaultCatalog().Get("nebula")
//	engine := ambient.New(loop, surface, th)
//	engine.Start()
//	ebitenhost.Run("Ambient", 960, 600, ebitenhost.NewHost(loop, engine, surface))
//
// Headless hosts call [Loop.Step] directly; see the canvas and term packages
// for an offscreen PNG surface and a terminal surface. Neither depends on
// ebiten.
//
// # Themes
//
// A [Theme] names a [ParticleType], a color, an intensity, a speed and a
// particle budget. [DefaultCatalog] holds the built-in themes; [LoadThemes]
// parses more from YAML. Changing to a theme with a new ID fades the old one
// out, clears it, pauses and fades the new one in. Changing to the same ID
// updates color and intensity in place.
//
// Pattern types (bounce, spiral, hex, bars) draw a seamless tiling pattern
// from scroll accumulators instead of simulating particles.
//
// # Performance
//
// A [Governor] measures frames per second over one-second windows and steps
// between [ModeHigh], [ModeMedium] and [ModeLow] with hysteresis. Lower modes
// shrink the particle budget and spawn rate, and low mode skips a share of
// update and render passes.
//
// # Fallback
//
// If the surface cannot be drawn on, nothing appears within a grace period,
// or low mode still yields no particles, the engine releases its frame clock
// and reports [StateFallback]. Hosts then draw the static [Marker] set with
// [DrawMarkers]. A zero-area surface recovers when a resize gives it area.
//
// # Configuration and logging
//
// Every tuning constant lives in [Config]; [LoadConfig] overlays a YAML file
// on the embedded defaults. Logging uses [log/slog] and is silent unless
// [SetLogger] or [WithLogger] installs a handler.
package ambient
