// Package region decides which rectangle of a frame is handed to the decoder.
//
// Two policies implement Selector: a fixed centered scan window that never
// looks at color, and a blob tracker that follows the largest patch of the
// selected marker color.
package region

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
)

// Policy names a region selection strategy.
type Policy string

const (
	PolicyFixed Policy = "fixed"
	PolicyBlob  Policy = "blob"
)

// ErrUnknownPolicy is returned by New and ParsePolicy for unrecognized names.
var ErrUnknownPolicy = errors.New("region: unknown policy")

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFixed, PolicyBlob:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Region is an axis-aligned rectangle in frame pixels.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromRect converts an image.Rectangle.
func FromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// MinSide returns the shorter side.
func (r Region) MinSide() int {
	return min(r.Width, r.Height)
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Selector picks the decode region for one frame.
type Selector interface {
	// Select returns the region to decode and whether one was found.
	Select(f frame.Frame, b band.Band) (Region, bool, error)

	// Policy identifies the strategy so callers can apply policy-specific
	// gating and padding.
	Policy() Policy
}

// CloseEnough reports whether the region's shorter side exceeds fraction of
// the frame's shorter side. Smaller regions are too far away to decode.
func CloseEnough(r Region, frameW, frameH int, fraction float64) bool {
	return float64(r.MinSide()) > float64(min(frameW, frameH))*fraction
}

// Pad grows r on every side by fraction of its shorter side, clamped to the
// frame bounds.
func Pad(r Region, fraction float64, frameW, frameH int) Region {
	pad := int(math.Round(float64(r.MinSide()) * fraction))
	x := max(0, r.X-pad)
	y := max(0, r.Y-pad)
	w := min(frameW-x, r.Width+pad*2)
	h := min(frameH-y, r.Height+pad*2)
	return Region{X: x, Y: y, Width: max(0, w), Height: max(0, h)}
}
