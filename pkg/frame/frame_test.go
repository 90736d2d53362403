package frame

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNew_ValidatesBuffer(t *testing.T) {
	if _, err := New(2, 2, make([]byte, 16)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(2, 2, make([]byte, 15)); !errors.Is(err, ErrBadBuffer) {
		t.Errorf("expected ErrBadBuffer, got %v", err)
	}
	if _, err := New(0, 2, nil); !errors.Is(err, ErrBadBuffer) {
		t.Errorf("expected ErrBadBuffer for zero width, got %v", err)
	}
}

func TestCrop_CopiesAndClips(t *testing.T) {
	f := Uniform(10, 10, color.RGBA{0, 0, 0, 255})
	f.Fill(image.Rect(2, 2, 4, 4), color.RGBA{255, 0, 0, 255})

	c := f.Crop(image.Rect(2, 2, 20, 20))
	if c.Width != 8 || c.Height != 8 {
		t.Fatalf("expected clipped 8x8 crop, got %dx%d", c.Width, c.Height)
	}
	if c.Pix[0] != 255 {
		t.Errorf("expected red at crop origin, got R=%d", c.Pix[0])
	}

	// Writing into the crop must not touch the source.
	c.Set(0, 0, color.RGBA{0, 255, 0, 255})
	if f.Pix[(2*10+2)*4+1] != 0 {
		t.Error("crop shares memory with source frame")
	}
}

func TestCrop_Empty(t *testing.T) {
	f := Uniform(4, 4, color.RGBA{A: 255})
	if c := f.Crop(image.Rect(10, 10, 20, 20)); !c.Empty() {
		t.Errorf("expected empty crop, got %dx%d", c.Width, c.Height)
	}
}

func TestScale(t *testing.T) {
	f := Uniform(8, 4, color.RGBA{10, 20, 30, 255})
	s := f.Scale(16, 8)
	if s.Width != 16 || s.Height != 8 || len(s.Pix) != 16*8*4 {
		t.Fatalf("unexpected scaled size %dx%d (%d bytes)", s.Width, s.Height, len(s.Pix))
	}
	if s.Pix[0] != 10 || s.Pix[1] != 20 || s.Pix[2] != 30 {
		t.Errorf("uniform color not preserved: %v", s.Pix[:4])
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	img.Set(5, 5, color.NRGBA{1, 2, 3, 255})

	f := FromImage(img)
	if f.Width != 3 || f.Height != 2 {
		t.Fatalf("expected 3x2, got %dx%d", f.Width, f.Height)
	}
	if f.Pix[0] != 1 || f.Pix[1] != 2 || f.Pix[2] != 3 {
		t.Errorf("unexpected first pixel %v", f.Pix[:4])
	}
}
