package ambient

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep is a single action in a scene script.
type scriptStep struct {
	Action string  `json:"action"`
	Theme  string  `json:"theme,omitempty"`
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a scene script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences theme changes, resizes and snapshots across frames for
// headless runs and visual checks. Call Step once per frame before the loop
// advances.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool

	// OnSnapshot receives each "snapshot" step's label.
	OnSnapshot func(label string)
}

// LoadScript parses a JSON scene script.
func LoadScript(jsonData []byte) (*Script, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "theme":
			if st.Theme == "" {
				return nil, fmt.Errorf("parse script: step %d: theme action needs a theme", i)
			}
		case "wait", "resize", "snapshot", "close":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: sc.Steps}, nil
}

// Done reports whether all steps have been executed.
func (s *Script) Done() bool {
	return s.done
}

// Frames returns how many frames the script runs for, counting each step as
// one frame and each wait as its frame count.
func (s *Script) Frames() int {
	n := 0
	for _, st := range s.steps {
		if st.Action == "wait" && st.Frames > 1 {
			n += st.Frames
			continue
		}
		n++
	}
	return n
}

// Step executes at most one action for the current frame. Theme IDs are
// resolved against catalog.
func (s *Script) Step(e *Engine, loop *Loop, catalog *Catalog) error {
	if s.done {
		return nil
	}
	if s.waitCount > 0 {
		s.waitCount--
		return nil
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return nil
	}

	st := s.steps[s.cursor]
	s.cursor++

	var err error
	switch st.Action {
	case "theme":
		var th Theme
		th, err = catalog.Get(st.Theme)
		if err == nil {
			e.SetTheme(th)
		}
	case "resize":
		loop.Resize(st.Width, st.Height, st.Scale)
	case "snapshot":
		if s.OnSnapshot != nil {
			s.OnSnapshot(st.Label)
		}
	case "close":
		e.Close()
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 {
		s.done = true
	}
	if err != nil {
		return fmt.Errorf("script step %d: %w", s.cursor-1, err)
	}
	return nil
}

// RunScript drives loop and e through every step of s, stepping the loop by
// frame after each scripted frame.
func RunScript(s *Script, e *Engine, loop *Loop, catalog *Catalog, frame time.Duration) error {
	for !s.Done() {
		if err := s.Step(e, loop, catalog); err != nil {
			return err
		}
		loop.Step(frame)
	}
	return nil
}
