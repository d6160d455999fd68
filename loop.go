package ambient

import (
	"sort"
	"time"
)

// FrameID identifies a pending frame request.
type FrameID uint64

type frameRequest struct {
	id FrameID
	fn func(now time.Duration)
}

// Loop is a single-threaded host frame clock. Frame callbacks and timers run
// only from Step, so nothing an engine registers ever runs concurrently with
// a tick. Hosts call Step once per displayed frame; tests call it directly.
type Loop struct {
	now       time.Duration
	nextID    uint64
	frames    []frameRequest
	timers    []*Timer
	listeners map[uint64]func(w, h, scale float64)

	width, height, scale float64
}

// Timer is a one-shot callback scheduled on a Loop.
type Timer struct {
	loop *Loop
	due  time.Duration
	seq  uint64
	fn   func()
	done bool
}

// Pending counts the registrations outstanding on a Loop.
type Pending struct {
	Frames    int
	Timers    int
	Listeners int
}

// NewLoop creates a loop with the given initial viewport.
func NewLoop(width, height, scale float64) *Loop {
	if scale <= 0 {
		scale = 1
	}
	return &Loop{
		listeners: make(map[uint64]func(w, h, scale float64)),
		width:     width,
		height:    height,
		scale:     scale,
	}
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Duration {
	return l.now
}

// Viewport returns the current logical size and device scale.
func (l *Loop) Viewport() (w, h, scale float64) {
	return l.width, l.height, l.scale
}

// RequestFrame schedules fn to run on the next Step.
func (l *Loop) RequestFrame(fn func(now time.Duration)) FrameID {
	l.nextID++
	id := FrameID(l.nextID)
	l.frames = append(l.frames, frameRequest{id: id, fn: fn})
	return id
}

// CancelFrame drops a pending frame request. Unknown IDs are ignored.
func (l *Loop) CancelFrame(id FrameID) {
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

// AfterFunc schedules fn to run on the first Step at or after d from now.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.nextID++
	t := &Timer{loop: l, due: l.now + d, seq: l.nextID, fn: fn}
	l.timers = append(l.timers, t)
	return t
}

// Stop cancels the timer. It reports whether the call prevented fn from
// running. Stop on a nil timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil || t.done {
		return false
	}
	t.done = true
	t.loop.removeTimer(t)
	return true
}

func (l *Loop) removeTimer(t *Timer) {
	for i, x := range l.timers {
		if x == t {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
}

// OnResize registers fn for viewport changes and returns its cancel func.
func (l *Loop) OnResize(fn func(w, h, scale float64)) (cancel func()) {
	l.nextID++
	id := l.nextID
	l.listeners[id] = fn
	return func() { delete(l.listeners, id) }
}

// Resize updates the viewport and notifies listeners if it changed.
func (l *Loop) Resize(w, h, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	if w == l.width && h == l.height && scale == l.scale {
		return
	}
	l.width, l.height, l.scale = w, h, scale
	ids := make([]uint64, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if fn, ok := l.listeners[id]; ok {
			fn(w, h, scale)
		}
	}
}

// Step advances the clock by dt, fires due timers in deadline order, then
// runs the frame callbacks that were pending before the step. Callbacks that
// request another frame are queued for the next Step.
func (l *Loop) Step(dt time.Duration) {
	l.now += dt

	for {
		t := l.nextDue()
		if t == nil {
			break
		}
		t.done = true
		l.removeTimer(t)
		t.fn()
	}

	frames := l.frames
	l.frames = nil
	for _, f := range frames {
		f.fn(l.now)
	}
}

func (l *Loop) nextDue() *Timer {
	var best *Timer
	for _, t := range l.timers {
		if t.due > l.now {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Pending reports outstanding frames, timers and resize listeners.
func (l *Loop) Pending() Pending {
	return Pending{Frames: len(l.frames), Timers: len(l.timers), Listeners: len(l.listeners)}
}
