package decode

import (
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/go-wayfinder/pkg/frame"
	"github.com/teslashibe/go-wayfinder/pkg/region"
)

// AdapterConfig tunes how regions are prepared for the decoder.
type AdapterConfig struct {
	// MinSide upscales crops whose shorter side is below this many pixels.
	// Zero disables upscaling.
	MinSide int

	Logger *slog.Logger
}

// AdapterOption is a functional option for the adapter.
type AdapterOption func(*AdapterConfig)

// WithMinSide sets the upscale threshold.
func WithMinSide(px int) AdapterOption {
	return func(c *AdapterConfig) {
		c.MinSide = px
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

// DefaultAdapterConfig returns the default adapter settings.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		MinSide: 160,
		Logger:  slog.Default(),
	}
}

// Adapter crops a frame to a region and hands the pixels to a Decoder.
type Adapter struct {
	decoder Decoder
	cfg     AdapterConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdapter wraps a decoder.
func NewAdapter(d Decoder, opts ...AdapterOption) *Adapter {
	cfg := DefaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{
		decoder: d,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "decode.adapter"),
		now:     time.Now,
	}
}

// Decoder returns the wrapped decoder.
func (a *Adapter) Decoder() Decoder {
	return a.decoder
}

// Decode crops f to r, grown by padFraction of its shorter side and clamped
// to the frame, and decodes it. A nil payload with a nil error means no
// payload was found in this frame.
func (a *Adapter) Decode(f frame.Frame, r region.Region, padFraction float64) (*Payload, error) {
	if f.Empty() {
		return nil, nil
	}
	if padFraction > 0 {
		r = region.Pad(r, padFraction, f.Width, f.Height)
	}

	crop := f.Crop(r.Rect())
	if crop.Empty() {
		return nil, nil
	}
	if short := min(crop.Width, crop.Height); a.cfg.MinSide > 0 && short < a.cfg.MinSide {
		scale := float64(a.cfg.MinSide) / float64(short)
		crop = crop.Scale(int(float64(crop.Width)*scale+0.5), int(float64(crop.Height)*scale+0.5))
	}

	text, ok, err := a.decoder.Decode(crop.Pix, crop.Width, crop.Height)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return nil, nil
	}

	a.logger.Debug("payload decoded", "decoder", a.decoder.Name(), "text", text,
		"region", r, "crop_w", crop.Width, "crop_h", crop.Height)

	return &Payload{
		Text:      text,
		DecodedAt: a.now(),
		Decoder:   a.decoder.Name(),
	}, nil
}
