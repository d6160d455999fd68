package ebitenhost

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/ambient"
)

// overlayRefresh is how often the overlay text is redrawn.
const overlayRefresh = 500 * time.Millisecond

// overlay shows FPS, performance mode, live count and render state in the
// top-left corner. It redraws its own image every ~0.5 seconds.
type overlay struct {
	img     *ebiten.Image
	elapsed time.Duration
	text    string
}

func newOverlay() *overlay {
	// 140x64 is enough for four short lines of debug text.
	return &overlay{img: ebiten.NewImage(140, 64), elapsed: overlayRefresh}
}

func (o *overlay) update(dt time.Duration, e *ambient.Engine) {
	o.elapsed += dt
	if o.elapsed < overlayRefresh {
		return
	}
	o.elapsed = 0
	o.text = overlayText(ebiten.ActualFPS(), e)

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

func (o *overlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}

func overlayText(fps float64, e *ambient.Engine) string {
	return fmt.Sprintf("FPS: %.1f\nmode: %s\nlive: %d/%d\nstate: %s",
		fps, e.Mode(), e.LiveCount(), e.Capacity(), e.State())
}
