package segment

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Mask is a single-channel binary image: 255 where a pixel matched the
// band, 0 elsewhere. It owns native memory and must be closed.
type Mask struct {
	mat gocv.Mat
}

// NewMask copies a row-major 0/255 buffer into a mask.
func NewMask(width, height int, pix []byte) (*Mask, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil, fmt.Errorf("segment: mask buffer %d bytes does not fit %dx%d", len(pix), width, height)
	}
	view, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, pix)
	if err != nil {
		return nil, fmt.Errorf("segment: wrap mask: %w", err)
	}
	defer view.Close()
	return &Mask{mat: view.Clone()}, nil
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.mat.Cols() }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.mat.Rows() }

// At returns the mask value at (x, y).
func (m *Mask) At(x, y int) uint8 { return m.mat.GetUCharAt(y, x) }

// Count returns the number of set pixels.
func (m *Mask) Count() int { return gocv.CountNonZero(m.mat) }

// Full reports whether every pixel is set.
func (m *Mask) Full() bool { return m.Count() == m.Width()*m.Height() }

// Mat exposes the underlying matrix for contour extraction. The caller
// must not close it.
func (m *Mask) Mat() gocv.Mat { return m.mat }

// Bytes copies the mask out as a row-major buffer.
func (m *Mask) Bytes() []byte { return m.mat.ToBytes() }

// Close releases the native matrix.
func (m *Mask) Close() error { return m.mat.Close() }
