package region

import (
	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
)

// FixedWindow always returns a centered square scan window. The window is
// cached and only recomputed when the frame dimensions change.
type FixedWindow struct {
	side int

	width, height int
	cached        Region
}

// NewFixedWindow returns a selector with the given square side.
func NewFixedWindow(side int) *FixedWindow {
	return &FixedWindow{side: side}
}

// Policy implements Selector.
func (w *FixedWindow) Policy() Policy { return PolicyFixed }

// Select implements Selector. The band is ignored.
func (w *FixedWindow) Select(f frame.Frame, _ band.Band) (Region, bool, error) {
	if f.Empty() {
		return Region{}, false, nil
	}
	return w.Window(f.Width, f.Height), true, nil
}

// Window returns the centered square for a frame of the given size.
func (w *FixedWindow) Window(frameW, frameH int) Region {
	if frameW == w.width && frameH == w.height {
		return w.cached
	}
	side := min(w.side, frameW, frameH)
	w.width, w.height = frameW, frameH
	w.cached = Region{
		X:      (frameW - side) / 2,
		Y:      (frameH - side) / 2,
		Width:  side,
		Height: side,
	}
	return w.cached
}
