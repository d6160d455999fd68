package canvas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phanxgames/ambient"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-swap", "after-swap"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSurfaceSize(t *testing.T) {
	s := New(100, 50, 2)
	w, h := s.Size()
	if w != 100 || h != 50 {
		t.Errorf("Size() = (%v, %v), want (100, 50)", w, h)
	}
	if s.Scale() != 2 {
		t.Errorf("Scale() = %v, want 2", s.Scale())
	}
	b := s.Image().Bounds()
	if b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("image bounds = %v, want 200x100", b)
	}
}

func TestFillCircleDrawsPixels(t *testing.T) {
	s := New(40, 40, 1)
	s.FillCircle(20, 20, 8, ambient.Color{R: 1, A: 1})
	if err := s.Probe(); err != nil {
		t.Fatalf("Probe() = %v", err)
	}
	_, _, _, a := s.Image().At(20, 20).RGBA()
	if a == 0 {
		t.Error("center pixel is transparent after FillCircle")
	}
	_, _, _, a = s.Image().At(1, 1).RGBA()
	if a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}

	s.Clear()
	_, _, _, a = s.Image().At(20, 20).RGBA()
	if a != 0 {
		t.Errorf("center alpha after Clear = %d, want 0", a)
	}
}

func TestZeroAreaHasNoImage(t *testing.T) {
	s := New(0, 30, 1)
	if s.Image() != nil {
		t.Error("Image() should be nil for zero width")
	}
	// Draw calls are ignored rather than panicking.
	s.FillRect(0, 0, 1, 1, ambient.Color{A: 1})
	if err := ambient.CheckArea(s); !errors.Is(err, ambient.ErrZeroArea) {
		t.Errorf("CheckArea() = %v, want ErrZeroArea", err)
	}

	s.Resize(30, 30, 1)
	if s.Image() == nil {
		t.Error("Image() should exist after growing")
	}
}

func TestProbeAfterClose(t *testing.T) {
	s := New(10, 10, 1)
	if err := ambient.Probe(s); err != nil {
		t.Fatalf("Probe() = %v", err)
	}
	s.Close()
	err := ambient.Probe(s)
	if !errors.Is(err, ambient.ErrCapability) || !errors.Is(err, ErrClosed) {
		t.Errorf("Probe() after Close = %v, want ErrCapability wrapping ErrClosed", err)
	}
}

func TestWriteFrame(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	s := New(16, 16, 1)
	s.FillCircle(8, 8, 4, ambient.Color{G: 1, A: 1})
	path, err := s.WriteFrame(dir, "first frame", 3)
	if err != nil {
		t.Fatalf("WriteFrame() = %v", err)
	}
	if filepath.Base(path) != "0003_first_frame.png" {
		t.Errorf("path = %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PNG is empty")
	}
}

func TestEngineRendersOnCanvas(t *testing.T) {
	loop := ambient.NewLoop(120, 80, 1)
	s := New(120, 80, 1)
	th, err := ambient.DefaultCatalog().Get("polka")
	if err != nil {
		t.Fatal(err)
	}
	e := ambient.New(loop, s, th)
	e.Start()
	for range 120 {
		loop.Step(16 * time.Millisecond)
	}
	if e.State() != ambient.StateActive {
		t.Fatalf("State() = %v, want active", e.State())
	}
	if e.Opacity() <= 0 {
		t.Fatalf("Opacity() = %v, want > 0", e.Opacity())
	}
	img := s.Image()
	b := img.Bounds()
	drawn := false
	for y := b.Min.Y; y < b.Max.Y && !drawn; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Error("no pixels drawn for a pattern theme")
	}
	e.Close()
}
