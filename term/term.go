// Package term renders ambient engines into a terminal. Each character cell
// is a block of logical pixels; shapes are composited into a per-cell color
// buffer and flushed to a tcell screen as background colors.
package term

import (
	"errors"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/ambient"
)

// Default cell size in logical pixels. Terminal cells are about twice as tall
// as they are wide.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// ErrNoScreen is returned by Probe when the surface has no screen.
var ErrNoScreen = errors.New("term: no screen")

// Surface is an ambient.Surface drawn onto a tcell.Screen.
type Surface struct {
	screen     tcell.Screen
	cellW      float64
	cellH      float64
	background ambient.Color

	cols, rows int
	cells      []ambient.Color
	mark       []uint32
	gen        uint32
}

var (
	_ ambient.Surface = (*Surface)(nil)
	_ ambient.Prober  = (*Surface)(nil)
	_ ambient.Resizer = (*Surface)(nil)
)

// New creates a surface for screen sized to the screen's current cell grid.
// The screen must already be initialized.
func New(screen tcell.Screen, background ambient.Color) *Surface {
	background.A = 1
	s := &Surface{
		screen:     screen,
		cellW:      DefaultCellWidth,
		cellH:      DefaultCellHeight,
		background: background,
	}
	w, h := s.Viewport()
	s.Resize(w, h, 1)
	return s
}

// Viewport returns the screen's size in logical pixels.
func (s *Surface) Viewport() (w, h float64) {
	if s.screen == nil {
		return 0, 0
	}
	cols, rows := s.screen.Size()
	return float64(cols) * s.cellW, float64(rows) * s.cellH
}

func (s *Surface) Size() (w, h float64) {
	return float64(s.cols) * s.cellW, float64(s.rows) * s.cellH
}

// Scale is always 1; cell size already maps logical pixels to cells.
func (s *Surface) Scale() float64 { return 1 }

func (s *Surface) Probe() error {
	if s.screen == nil {
		return ErrNoScreen
	}
	return nil
}

// Resize reallocates the cell buffer for a w×h logical viewport.
func (s *Surface) Resize(w, h, _ float64) {
	cols := int(math.Max(w, 0) / s.cellW)
	rows := int(math.Max(h, 0) / s.cellH)
	if cols == s.cols && rows == s.rows && s.cells != nil {
		return
	}
	s.cols, s.rows = cols, rows
	s.cells = make([]ambient.Color, cols*rows)
	s.mark = make([]uint32, cols*rows)
	s.Clear()
}

// Cell returns the composited color of the cell at column x, row y.
func (s *Surface) Cell(x, y int) ambient.Color {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return ambient.Color{}
	}
	return s.cells[y*s.cols+x]
}

func (s *Surface) Clear() {
	for i := range s.cells {
		s.cells[i] = s.background
	}
}

// blend composites c over the cell at coverage k.
func (s *Surface) blend(x, y int, c ambient.Color, k float64) {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return
	}
	a := c.A * k
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	d := &s.cells[y*s.cols+x]
	d.R = d.R*(1-a) + c.R*a
	d.G = d.G*(1-a) + c.G*a
	d.B = d.B*(1-a) + c.B*a
}

// blendOnce blends a cell at most once per generation, so overlapping
// samples of one stroke do not stack.
func (s *Surface) blendOnce(x, y int, c ambient.Color) {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return
	}
	i := y*s.cols + x
	if s.mark[i] == s.gen {
		return
	}
	s.mark[i] = s.gen
	s.blend(x, y, c, 1)
}

func (s *Surface) nextGen() {
	s.gen++
	if s.gen == 0 {
		clear(s.mark)
		s.gen = 1
	}
}

func (s *Surface) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / s.cellW)), int(math.Floor(y / s.cellH))
}

// subsamples per cell axis for circle coverage.
const subsamples = 4

func (s *Surface) FillCircle(x, y, r float64, c ambient.Color) {
	if r <= 0 {
		return
	}
	x0, y0 := s.cellOf(x-r, y-r)
	x1, y1 := s.cellOf(x+r, y+r)
	cx, cy := s.cellOf(x, y)
	// A shape smaller than a cell still shows, scaled by its area.
	small := math.Min(1, math.Pi*r*r/(s.cellW*s.cellH))
	r2 := r * r
	for row := max(y0, 0); row <= min(y1, s.rows-1); row++ {
		for col := max(x0, 0); col <= min(x1, s.cols-1); col++ {
			hits := 0
			for j := range subsamples {
				py := (float64(row) + (float64(j)+0.5)/subsamples) * s.cellH
				for i := range subsamples {
					px := (float64(col) + (float64(i)+0.5)/subsamples) * s.cellW
					if dx, dy := px-x, py-y; dx*dx+dy*dy <= r2 {
						hits++
					}
				}
			}
			k := float64(hits) / (subsamples * subsamples)
			if col == cx && row == cy {
				k = math.Max(k, small)
			}
			s.blend(col, row, c, k)
		}
	}
}

// step returns the sampling distance along strokes.
func (s *Surface) step() float64 {
	return math.Min(s.cellW, s.cellH) / 2
}

func (s *Surface) StrokeCircle(x, y, r, _ float64, c ambient.Color) {
	if r <= 0 {
		return
	}
	s.nextGen()
	n := max(8, int(math.Ceil(2*math.Pi*r/s.step())))
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		col, row := s.cellOf(x+r*math.Cos(a), y+r*math.Sin(a))
		s.blendOnce(col, row, c)
	}
}

func (s *Surface) StrokeLine(x0, y0, x1, y1, _ float64, c ambient.Color) {
	s.nextGen()
	n := max(1, int(math.Ceil(math.Hypot(x1-x0, y1-y0)/s.step())))
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		col, row := s.cellOf(x0+(x1-x0)*t, y0+(y1-y0)*t)
		s.blendOnce(col, row, c)
	}
}

func (s *Surface) FillRect(x, y, w, h float64, c ambient.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := s.cellOf(x, y)
	x1, y1 := s.cellOf(x+w, y+h)
	area := s.cellW * s.cellH
	for row := max(y0, 0); row <= min(y1, s.rows-1); row++ {
		top := float64(row) * s.cellH
		oy := math.Min(y+h, top+s.cellH) - math.Max(y, top)
		if oy <= 0 {
			continue
		}
		for col := max(x0, 0); col <= min(x1, s.cols-1); col++ {
			left := float64(col) * s.cellW
			ox := math.Min(x+w, left+s.cellW) - math.Max(x, left)
			if ox <= 0 {
				continue
			}
			s.blend(col, row, c, ox*oy/area)
		}
	}
}

// Flush writes the cell buffer to the screen and shows it.
func (s *Surface) Flush() {
	if s.screen == nil {
		return
	}
	for row := range s.rows {
		for col := range s.cols {
			c := s.cells[row*s.cols+col].RGBA()
			style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			s.screen.SetContent(col, row, ' ', nil, style)
		}
	}
	s.screen.Show()
}
