package segment

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
)

func newSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestSegment_UniformInsideBand(t *testing.T) {
	s := newSegmenter(t)

	tests := []struct {
		name string
		band band.Band
		fill color.RGBA
	}{
		{"red", band.Red, color.RGBA{255, 0, 0, 255}},
		{"green", band.Green, color.RGBA{0, 255, 0, 255}},
		{"blue", band.Blue, color.RGBA{0, 0, 255, 255}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := frame.Uniform(64, 48, tc.fill)
			mask, err := s.Segment(f, tc.band)
			if err != nil {
				t.Fatalf("Segment failed: %v", err)
			}
			defer mask.Close()

			if mask.Width() != 64 || mask.Height() != 48 {
				t.Fatalf("mask size %dx%d, want 64x48", mask.Width(), mask.Height())
			}
			if !mask.Full() {
				t.Errorf("expected all-255 mask, got %d/%d set", mask.Count(), 64*48)
			}
			if mask.At(0, 0) != 255 {
				t.Errorf("expected 255 at origin, got %d", mask.At(0, 0))
			}
		})
	}
}

func TestSegment_UniformOutsideAllBands(t *testing.T) {
	s := newSegmenter(t)
	gray := frame.Uniform(64, 48, color.RGBA{128, 128, 128, 255})

	for _, b := range band.All() {
		mask, err := s.Segment(gray, b)
		if err != nil {
			t.Fatalf("Segment(%s) failed: %v", b, err)
		}
		if n := mask.Count(); n != 0 {
			t.Errorf("%s: expected empty mask for gray, got %d pixels", b, n)
		}
		mask.Close()
	}
}

func TestSegment_RedWrapsHue(t *testing.T) {
	s := newSegmenter(t)

	// OpenCV hue is degrees/2: (255,17,0) is ~4 deg -> H~2,
	// (255,0,43) is ~350 deg -> H~175.
	tests := []struct {
		name string
		fill color.RGBA
	}{
		{"low hue", color.RGBA{255, 17, 0, 255}},
		{"high hue", color.RGBA{255, 0, 43, 255}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mask, err := s.Segment(frame.Uniform(32, 32, tc.fill), band.Red)
			if err != nil {
				t.Fatalf("Segment failed: %v", err)
			}
			defer mask.Close()
			if mask.Count() == 0 {
				t.Error("expected non-empty red mask")
			}
		})
	}
}

func TestSegment_DoesNotMutateFrame(t *testing.T) {
	s := newSegmenter(t)
	f := frame.Uniform(32, 32, color.RGBA{0, 255, 0, 255})
	before := append([]byte(nil), f.Pix...)

	mask, err := s.Segment(f, band.Green)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	mask.Close()

	for i := range before {
		if f.Pix[i] != before[i] {
			t.Fatalf("frame modified at byte %d", i)
		}
	}
}

func TestSegment_OpeningRemovesSpecks(t *testing.T) {
	s := newSegmenter(t)
	f := frame.Uniform(80, 80, color.RGBA{128, 128, 128, 255})
	f.Fill(image.Rect(5, 5, 7, 7), color.RGBA{0, 0, 255, 255})     // 2x2 speck
	f.Fill(image.Rect(30, 30, 60, 60), color.RGBA{0, 0, 255, 255}) // marker

	mask, err := s.Segment(f, band.Blue)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	defer mask.Close()

	if mask.At(5, 5) != 0 {
		t.Error("expected speck to be removed by opening")
	}
	if mask.At(45, 45) != 255 {
		t.Error("expected marker interior to survive")
	}
}

func TestSegment_Errors(t *testing.T) {
	s := newSegmenter(t)

	if _, err := s.Segment(frame.Frame{}, band.Red); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("expected ErrEmptyFrame, got %v", err)
	}
	f := frame.Uniform(8, 8, color.RGBA{A: 255})
	if _, err := s.Segment(f, band.Band(7)); !errors.Is(err, ErrUnknownBand) {
		t.Errorf("expected ErrUnknownBand, got %v", err)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(WithKernelSize(4)); err == nil {
		t.Error("expected error for even kernel size")
	}

	bad := DefaultThresholds()
	delete(bad, band.Blue)
	if _, err := New(WithThresholds(bad)); !errors.Is(err, ErrBadThresholds) {
		t.Errorf("expected ErrBadThresholds, got %v", err)
	}
}

func TestThresholds_Match(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		in   HSV
		want band.Band
		ok   bool
	}{
		{"red low", HSV{2, 200, 200}, band.Red, true},
		{"red high", HSV{175, 200, 200}, band.Red, true},
		{"green", HSV{60, 255, 255}, band.Green, true},
		{"blue", HSV{120, 255, 255}, band.Blue, true},
		{"gray", HSV{60, 0, 128}, 0, false},
		{"dark", HSV{60, 255, 20}, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := th.Match(tc.in)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("Match(%v) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestNewMask(t *testing.T) {
	pix := make([]byte, 4*3)
	pix[5] = 255
	m, err := NewMask(4, 3, pix)
	if err != nil {
		t.Fatalf("NewMask failed: %v", err)
	}
	defer m.Close()

	if m.Count() != 1 || m.At(1, 1) != 255 {
		t.Errorf("unexpected mask contents: count=%d at(1,1)=%d", m.Count(), m.At(1, 1))
	}
	if _, err := NewMask(4, 3, pix[:5]); err == nil {
		t.Error("expected size mismatch error")
	}
}
