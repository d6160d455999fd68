package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/ambient"
)

// FrameInterval is the terminal refresh period (~60 FPS).
const FrameInterval = 16 * time.Millisecond

// Run drives loop from a ticker and flushes s after every step until ctx is
// done, the engine closes, or the user presses Escape, q or Ctrl-C. Screen
// resizes are forwarded to the loop. The caller owns the screen.
func Run(ctx context.Context, screen tcell.Screen, s *Surface, loop *ambient.Loop, e *ambient.Engine) error {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if !handleEvent(ev, screen, s, loop) {
				return nil
			}

		case now := <-ticker.C:
			loop.Step(now.Sub(last))
			last = now
			if e.State() == ambient.StateFallback {
				s.Clear()
				ambient.DrawMarkers(s, e.Markers(), loop.Now())
			}
			s.Flush()
			if e.Closed() {
				return nil
			}
		}
	}
}

// handleEvent reports false when the user asked to quit.
func handleEvent(ev tcell.Event, screen tcell.Screen, s *Surface, loop *ambient.Loop) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		screen.Sync()
		w, h := s.Viewport()
		loop.Resize(w, h, 1)
	}
	return true
}
