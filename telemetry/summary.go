package telemetry

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the frame rate and mode behavior over a run.
type Summary struct {
	Windows     int
	MeanFPS     float64
	StdDevFPS   float64
	MinFPS      float64
	P10FPS      float64 // 10th percentile
	MeanLive    float64
	ModeChanges int
	Windowed    map[string]int // windows spent in each mode
}

// Summarize computes a Summary over records.
func Summarize(records []Record) Summary {
	s := Summary{Windows: len(records), Windowed: make(map[string]int)}
	if len(records) == 0 {
		return s
	}
	fps := make([]float64, len(records))
	live := make([]float64, len(records))
	for i, r := range records {
		fps[i] = r.FPS
		live[i] = float64(r.Live)
		s.Windowed[r.Mode]++
		if r.Mode != r.Previous {
			s.ModeChanges++
		}
	}
	s.MeanFPS, s.StdDevFPS = stat.MeanStdDev(fps, nil)
	if len(fps) < 2 {
		s.StdDevFPS = 0
	}
	s.MeanLive = stat.Mean(live, nil)

	slices.Sort(fps)
	s.MinFPS = fps[0]
	s.P10FPS = stat.Quantile(0.1, stat.Empirical, fps, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("windows=%d fps mean=%.1f sd=%.1f min=%.1f p10=%.1f live=%.1f mode changes=%d high=%d medium=%d low=%d",
		s.Windows, s.MeanFPS, s.StdDevFPS, s.MinFPS, s.P10FPS, s.MeanLive, s.ModeChanges,
		s.Windowed["high"], s.Windowed["medium"], s.Windowed["low"])
}
