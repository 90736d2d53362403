// Package segment turns camera frames into binary masks of marker-colored pixels.
//
// A frame is converted to HSV, thresholded against the selected band's ranges,
// then cleaned with a morphological opening (drops specks) followed by a
// closing (fills pinholes inside the marker card).
package segment

import (
	"errors"
	"fmt"
	"image"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
	"gocv.io/x/gocv"
)

var (
	// ErrEmptyFrame is returned when asked to segment a frame with no pixels.
	ErrEmptyFrame = errors.New("segment: empty frame")

	// ErrBadThresholds is returned when the threshold table is malformed.
	ErrBadThresholds = errors.New("segment: invalid thresholds")

	// ErrUnknownBand is returned for a band with no configured range.
	ErrUnknownBand = errors.New("segment: unknown band")
)

// Config holds segmentation parameters.
type Config struct {
	Thresholds Thresholds
	KernelSize int // Side of the square structuring element (odd, 3-7)
}

// Option is a functional option for the segmenter.
type Option func(*Config)

// WithThresholds replaces the default band table.
func WithThresholds(t Thresholds) Option {
	return func(c *Config) {
		c.Thresholds = t
	}
}

// WithKernelSize sets the morphology kernel side.
func WithKernelSize(n int) Option {
	return func(c *Config) {
		c.KernelSize = n
	}
}

// DefaultConfig returns a 5x5 kernel and the default thresholds.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		KernelSize: 5,
	}
}

// Segmenter builds masks for a band. It holds no per-frame state.
type Segmenter struct {
	cfg Config
}

// New validates the configuration and returns a segmenter.
func New(opts ...Option) (*Segmenter, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if cfg.KernelSize < 3 || cfg.KernelSize > 7 || cfg.KernelSize%2 == 0 {
		return nil, fmt.Errorf("segment: kernel size %d must be odd and within 3..7", cfg.KernelSize)
	}
	return &Segmenter{cfg: cfg}, nil
}

// Config returns the active configuration.
func (s *Segmenter) Config() Config {
	return s.cfg
}

// Segment returns the cleaned mask of pixels in f that fall inside b's ranges.
// The input frame is never modified.
func (s *Segmenter) Segment(f frame.Frame, b band.Band) (*Mask, error) {
	if f.Empty() {
		return nil, ErrEmptyFrame
	}
	ranges, ok := s.cfg.Thresholds[b]
	if !ok || len(ranges) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownBand, b)
	}

	hsv, err := ToHSV(f)
	if err != nil {
		return nil, err
	}
	defer hsv.Close()

	mask := gocv.NewMat()
	for i, r := range ranges {
		lo, hi := r.scalars()
		if i == 0 {
			gocv.InRangeWithScalar(hsv, lo, hi, &mask)
			continue
		}
		part := gocv.NewMat()
		gocv.InRangeWithScalar(hsv, lo, hi, &part)
		gocv.BitwiseOr(mask, part, &mask)
		part.Close()
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(s.cfg.KernelSize, s.cfg.KernelSize))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

	return &Mask{mat: mask}, nil
}

// ToHSV converts an RGBA frame into an OpenCV HSV matrix. The caller owns
// the returned Mat.
func ToHSV(f frame.Frame) (gocv.Mat, error) {
	if f.Empty() {
		return gocv.NewMat(), ErrEmptyFrame
	}
	rgba, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC4, f.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("segment: wrap frame: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	hsv := gocv.NewMat()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)
	return hsv, nil
}
