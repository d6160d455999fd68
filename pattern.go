package ambient

import "math"

// accumulators are the raw, ever-increasing scroll counters for the pattern
// renderer. They are reset only when the engine swaps themes; wrapping is
// applied at draw time.
type accumulators struct {
	scroll   float64 // dot and spiral scroll
	rotation float64 // spiral rotation and hex flicker time
	hex      float64
	bar      float64
}

// patternRenderer draws the full-surface tiled patterns. It never touches
// the particle store.
type patternRenderer struct {
	cfg PatternConfig
	acc accumulators
}

// advance moves the accumulators used by kind forward by one tick of
// elapsedMs, scaled against refMs so motion is frame-rate independent.
func (r *patternRenderer) advance(kind ParticleType, th Theme, elapsedMs, refMs float64) {
	f := elapsedMs / refMs
	switch kind {
	case ParticleBounce:
		r.acc.scroll += th.Speed * r.cfg.DotSpeed * f
	case ParticleSpiral:
		r.acc.scroll += th.Speed * r.cfg.SpiralSpeed * f
		r.acc.rotation += th.RotationSpeedMultiplier * r.cfg.RotationSpeed * f
	case ParticleHex:
		r.acc.hex += th.Speed * r.cfg.HexSpeed * f
		r.acc.rotation += r.cfg.RotationSpeed * f
	case ParticleBars:
		r.acc.bar += th.Speed * r.cfg.BarSpeed * f
	}
}

func (r *patternRenderer) reset() {
	r.acc = accumulators{}
}

func (r *patternRenderer) draw(s Surface, kind ParticleType, th Theme, c Color, alpha float64) {
	w, h := s.Size()
	view := Rect{Width: w, Height: h}
	switch kind {
	case ParticleBounce:
		r.drawDots(s, view, th, c, alpha)
	case ParticleSpiral:
		r.drawSpirals(s, view, th, c, alpha)
	case ParticleHex:
		r.drawHexes(s, view, th, c, alpha)
	case ParticleBars:
		r.drawBars(s, view, th, c, alpha)
	}
}

// hash32 mixes two integers into a well-distributed 32-bit value.
func hash32(a, b int) uint32 {
	h := uint32(a)*0x27d4eb2d ^ uint32(b)*0x165667b1
	h ^= h >> 15
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// hashUnit maps hash32 to [0, 1).
func hashUnit(a, b int) float64 {
	return float64(hash32(a, b)) / (1 << 32)
}

// scrollSlots splits a raw accumulator into the wrapped draw offset in
// [0, spacing) and the number of whole cells scrolled.
func scrollSlots(acc, spacing float64) (offset float64, scrolled int) {
	offset = math.Mod(acc, spacing)
	if offset < 0 {
		offset += spacing
	}
	return offset, int(math.Floor(acc / spacing))
}

// gridCell is one visible cell of an infinite pattern grid. col and row are
// its grid identity; x and y its current screen position.
type gridCell struct {
	col, row int
	x, y     float64
}

// gridAxis is one axis of a scrolling grid.
type gridAxis struct {
	spacing float64
	acc     float64 // signed raw accumulator along this axis
	extent  float64 // visible length
	buffer  int     // extra slots before and after the visible range
}

// slots calls fn for every slot on the axis with the cell identity and
// position at that slot. The position of identity i is i*spacing + acc.
func (a gridAxis) slots(fn func(id int, pos float64)) {
	offset, scrolled := scrollSlots(a.acc, a.spacing)
	n := int(math.Ceil(a.extent/a.spacing)) + a.buffer
	for i := -1 - a.buffer; i <= n; i++ {
		fn(i-scrolled, float64(i)*a.spacing+offset)
	}
}

// eachCell visits every cell of the grid that lies within view grown by
// margin. stagger shifts odd identity rows by half a column.
func eachCell(view Rect, margin float64, cols, rows gridAxis, stagger bool, fn func(c gridCell)) {
	area := view.Grow(margin)
	rows.slots(func(row int, y float64) {
		if y < area.Y || y > area.Y+area.Height {
			return
		}
		shift := 0.0
		if stagger && row&1 != 0 {
			shift = cols.spacing / 2
		}
		cols.slots(func(col int, x float64) {
			x += shift
			if x < area.X || x > area.X+area.Width {
				return
			}
			fn(gridCell{col: col, row: row, x: x, y: y})
		})
	})
}

// dotScale is the per-cell size variation of the polka-dot grid.
func dotScale(col, row int) float64 {
	return 0.8 + 0.4*hashUnit(col, row)
}

func (r *patternRenderer) drawDots(s Surface, view Rect, th Theme, c Color, alpha float64) {
	sp := r.cfg.DotSpacing
	cols := gridAxis{spacing: sp, extent: view.Width, buffer: 1}
	rows := gridAxis{spacing: sp, acc: r.acc.scroll, extent: view.Height, buffer: 1}
	col := c.WithAlpha(th.Intensity * alpha)
	eachCell(view, r.cfg.Margin, cols, rows, true, func(g gridCell) {
		s.FillCircle(g.x, g.y, r.cfg.DotRadius*dotScale(g.col, g.row), col)
	})
}

// spiralSeed returns the intrinsic rotation phase and spin direction of a
// spiral cell. It depends only on the cell identity.
func spiralSeed(col, row int) (phase, dir float64) {
	h := hash32(col, row)
	phase = float64(h>>1) / (1 << 31) * 2 * math.Pi
	dir = 1
	if h&1 == 1 {
		dir = -1
	}
	return phase, dir
}

// spiralAxes routes the scroll accumulator onto the axis selected by the
// theme's scroll direction.
func (r *patternRenderer) spiralAxes(view Rect, th Theme) (cols, rows gridAxis) {
	sp := r.cfg.SpiralSpacing
	cols = gridAxis{spacing: sp, extent: view.Width, buffer: 1}
	rows = gridAxis{spacing: sp, extent: view.Height, buffer: 1}
	acc := th.ScrollDirection.sign() * r.acc.scroll
	if th.ScrollDirection.Horizontal() {
		cols.acc = acc
	} else {
		rows.acc = acc
	}
	return cols, rows
}

const spiralPoints = 28

func (r *patternRenderer) drawSpirals(s Surface, view Rect, th Theme, c Color, alpha float64) {
	cols, rows := r.spiralAxes(view, th)
	maxR := r.cfg.SpiralSpacing * 0.35
	eachCell(view, r.cfg.Margin, cols, rows, false, func(g gridCell) {
		phase, dir := spiralSeed(g.col, g.row)
		angle := phase + dir*r.acc.rotation
		col := c.WithAlpha(th.Intensity * alpha * (0.6 + 0.4*hashUnit(g.row, g.col)))
		px, py := g.x, g.y
		for i := 1; i <= spiralPoints; i++ {
			t := float64(i) / spiralPoints
			rad := maxR * t
			theta := angle + dir*t*4*math.Pi
			x, y := g.x+math.Cos(theta)*rad, g.y+math.Sin(theta)*rad
			s.StrokeLine(px, py, x, y, 1.5, col)
			px, py = x, y
		}
	})
}

// flicker is the brightness modulation style of a hex cell.
type flicker uint8

const (
	flickerSteady flicker = iota
	flickerPulse
	flickerBlink
	flickerShimmer
)

// hexStyle is the intrinsic appearance of a hex cell, derived from its
// identity only.
type hexStyle struct {
	tier    int     // 0 dim, 1 lit, 2 glowing
	glow    float64 // base brightness
	flicker flicker
	phase   float64
}

func hexSeed(col, row int) hexStyle {
	h := hash32(col, row)
	st := hexStyle{
		tier:    int(h % 3),
		flicker: flicker((h >> 8) % 4),
		phase:   float64((h>>16)&0xffff) / 0x10000 * 2 * math.Pi,
	}
	st.glow = [3]float64{0.25, 0.5, 1}[st.tier] * (0.75 + 0.25*hashUnit(row, col))
	return st
}

// level returns the flicker multiplier at time t.
func (st hexStyle) level(t float64) float64 {
	x := t + st.phase
	switch st.flicker {
	case flickerPulse:
		return 0.6 + 0.4*math.Sin(x)
	case flickerBlink:
		if math.Sin(x*0.7) > 0.6 {
			return 0.3
		}
		return 1
	case flickerShimmer:
		return 0.7 + 0.15*math.Sin(x*2.3) + 0.15*math.Sin(x*3.7)
	}
	return 1
}

func (r *patternRenderer) hexAxes(view Rect) (cols, rows gridAxis) {
	size := r.cfg.HexSize
	cols = gridAxis{spacing: math.Sqrt(3) * size, extent: view.Width, buffer: 1}
	rows = gridAxis{spacing: 1.5 * size, acc: r.acc.hex, extent: view.Height, buffer: r.cfg.HexBufferRows}
	return cols, rows
}

func (r *patternRenderer) drawHexes(s Surface, view Rect, th Theme, c Color, alpha float64) {
	cols, rows := r.hexAxes(view)
	size := r.cfg.HexSize
	// Buffer rows are drawn past the margin so wrap teleports are offscreen.
	margin := r.cfg.Margin + float64(r.cfg.HexBufferRows)*rows.spacing
	eachCell(view, margin, cols, rows, true, func(g gridCell) {
		st := hexSeed(g.col, g.row)
		col := c.WithAlpha(th.Intensity * alpha * st.glow * st.level(r.acc.rotation))
		for k := 0; k < 6; k++ {
			a0 := math.Pi/6 + float64(k)*math.Pi/3
			a1 := a0 + math.Pi/3
			s.StrokeLine(
				g.x+math.Cos(a0)*size*0.92, g.y+math.Sin(a0)*size*0.92,
				g.x+math.Cos(a1)*size*0.92, g.y+math.Sin(a1)*size*0.92,
				1, col)
		}
		if st.tier == 2 {
			s.FillCircle(g.x, g.y, size*0.2, col.WithAlpha(0.5))
		}
	})
}

func (r *patternRenderer) drawBars(s Surface, view Rect, th Theme, c Color, alpha float64) {
	rows := gridAxis{spacing: r.cfg.BarSpacing, acc: r.acc.bar, extent: view.Height, buffer: 1}
	col := c.WithAlpha(r.cfg.BarOpacity * th.Intensity * alpha)
	rows.slots(func(_ int, y float64) {
		if y+r.cfg.BarHeight < 0 || y > view.Height {
			return
		}
		s.FillRect(0, y, view.Width, r.cfg.BarHeight, col)
	})
}
