package segment

import (
	"fmt"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"gocv.io/x/gocv"
)

// HSV is a color in OpenCV 8-bit HSV units: hue 0-180, saturation and value 0-255.
type HSV struct {
	H, S, V float64
}

// Range is an inclusive HSV box.
type Range struct {
	Low  HSV
	High HSV
}

// Contains reports whether c lies inside the range on all three channels.
func (r Range) Contains(c HSV) bool {
	return c.H >= r.Low.H && c.H <= r.High.H &&
		c.S >= r.Low.S && c.S <= r.High.S &&
		c.V >= r.Low.V && c.V <= r.High.V
}

func (r Range) scalars() (gocv.Scalar, gocv.Scalar) {
	return gocv.NewScalar(r.Low.H, r.Low.S, r.Low.V, 0),
		gocv.NewScalar(r.High.H, r.High.S, r.High.V, 0)
}

// Thresholds maps each band to the hue ranges that select it. A band with
// more than one range is the union of them; red needs two because hue wraps
// around at 180.
type Thresholds map[band.Band][]Range

// DefaultThresholds returns ranges tuned for indoor lighting.
func DefaultThresholds() Thresholds {
	return Thresholds{
		band.Red: {
			{Low: HSV{0, 120, 80}, High: HSV{10, 255, 255}},
			{Low: HSV{170, 120, 80}, High: HSV{180, 255, 255}},
		},
		band.Green: {
			{Low: HSV{35, 80, 80}, High: HSV{85, 255, 255}},
		},
		band.Blue: {
			{Low: HSV{90, 80, 80}, High: HSV{130, 255, 255}},
		},
	}
}

// Validate checks that every band has at least one well-formed range.
func (t Thresholds) Validate() error {
	for _, b := range band.All() {
		ranges, ok := t[b]
		if !ok || len(ranges) == 0 {
			return fmt.Errorf("%w: no range for %s", ErrBadThresholds, b)
		}
		for i, r := range ranges {
			if r.Low.H < 0 || r.High.H > 180 || r.Low.H > r.High.H {
				return fmt.Errorf("%w: %s range %d hue %v..%v", ErrBadThresholds, b, i, r.Low.H, r.High.H)
			}
			if r.Low.S > r.High.S || r.Low.V > r.High.V || r.High.S > 255 || r.High.V > 255 {
				return fmt.Errorf("%w: %s range %d saturation/value", ErrBadThresholds, b, i)
			}
		}
	}
	return nil
}

// Match returns the first band whose ranges contain c, in enumeration order.
func (t Thresholds) Match(c HSV) (band.Band, bool) {
	for _, b := range band.All() {
		for _, r := range t[b] {
			if r.Contains(c) {
				return b, true
			}
		}
	}
	return 0, false
}
