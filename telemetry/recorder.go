// Package telemetry records governor samples from ambient engines as CSV and
// summarizes a run's frame rate.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/phanxgames/ambient"
)

// Record is one closed governor window.
type Record struct {
	AtMs     int64   `csv:"at_ms"`
	Theme    string  `csv:"theme"`
	FPS      float64 `csv:"fps"`
	Frames   int     `csv:"frames"`
	Mode     string  `csv:"mode"`
	Previous string  `csv:"previous"`
	Live     int     `csv:"live"`
}

// NewRecord converts a sample taken while theme was showing.
func NewRecord(s ambient.Sample, theme string) Record {
	return Record{
		AtMs:     s.At.Milliseconds(),
		Theme:    theme,
		FPS:      s.FPS,
		Frames:   s.Frames,
		Mode:     s.Mode.String(),
		Previous: s.Previous.String(),
		Live:     s.Live,
	}
}

// Recorder appends records to a CSV stream and keeps them for Summarize.
// A nil Recorder discards everything.
type Recorder struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
	records       []Record
	err           error
}

// NewRecorder writes CSV to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Create opens dir/perf.csv for writing. Returns nil if dir is empty
// (recording disabled).
func Create(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	return &Recorder{w: f, closer: f}, nil
}

// Write appends one record.
func (r *Recorder) Write(rec Record) error {
	if r == nil {
		return nil
	}
	r.records = append(r.records, rec)
	if r.w == nil {
		return nil
	}

	records := []Record{rec}
	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Hook returns a sample hook for ambient.WithSampleHook. theme reports the
// theme showing when each sample closes. The first write error is kept and
// returned by Err.
func (r *Recorder) Hook(theme func() string) func(ambient.Sample) {
	return func(s ambient.Sample) {
		if r == nil {
			return
		}
		name := ""
		if theme != nil {
			name = theme()
		}
		if err := r.Write(NewRecord(s, name)); err != nil && r.err == nil {
			r.err = err
		}
	}
}

// Records returns every record written so far.
func (r *Recorder) Records() []Record {
	if r == nil {
		return nil
	}
	return r.records
}

// Err returns the first error seen by a hook.
func (r *Recorder) Err() error {
	if r == nil {
		return nil
	}
	return r.err
}

// Close closes the underlying file when the recorder owns one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
