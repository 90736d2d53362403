package region

import (
	"fmt"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
	"github.com/teslashibe/go-wayfinder/pkg/segment"
	"gocv.io/x/gocv"
)

// Masker produces a band mask for a frame. *segment.Segmenter satisfies it.
type Masker interface {
	Segment(f frame.Frame, b band.Band) (*segment.Mask, error)
}

// BlobTracker follows the largest connected patch of the selected color.
type BlobTracker struct {
	masker  Masker
	minSide int
}

// NewBlobTracker returns a tracker that ignores components whose width or
// height is not strictly greater than minSide.
func NewBlobTracker(m Masker, minSide int) *BlobTracker {
	return &BlobTracker{masker: m, minSide: minSide}
}

// Policy implements Selector.
func (t *BlobTracker) Policy() Policy { return PolicyBlob }

// Select implements Selector.
func (t *BlobTracker) Select(f frame.Frame, b band.Band) (Region, bool, error) {
	mask, err := t.masker.Segment(f, b)
	if err != nil {
		return Region{}, false, fmt.Errorf("region: segment: %w", err)
	}
	defer mask.Close()

	r, ok := t.Largest(mask)
	return r, ok, nil
}

// Largest returns the bounding box of the biggest outer contour in mask
// whose box clears the minimum side on both axes.
func (t *BlobTracker) Largest(mask *segment.Mask) (Region, bool) {
	contours := gocv.FindContours(mask.Mat(), gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best Region
	bestArea := 0.0
	found := false

	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area <= bestArea {
			continue
		}
		rect := gocv.BoundingRect(c)
		if rect.Dx() > t.minSide && rect.Dy() > t.minSide {
			bestArea = area
			best = FromRect(rect)
			found = true
		}
	}
	return best, found
}
