package region

import (
	"fmt"
)

// Config selects and tunes a region policy.
type Config struct {
	Policy Policy

	// Fixed window
	WindowSide int // Side of the centered scan square in pixels

	// Blob tracking
	MinBlobSide       int     // Components must exceed this on both axes
	ProximityFraction float64 // Blob must exceed this share of the frame's shorter side
	PadFraction       float64 // Crop padding as a share of the blob's shorter side
}

// DefaultConfig returns blob tracking with the empirically tuned limits.
func DefaultConfig() Config {
	return Config{
		Policy:            PolicyBlob,
		WindowSide:        280,
		MinBlobSide:       20,
		ProximityFraction: 0.18,
		PadFraction:       0.12,
	}
}

// FixedConfig returns the color-independent scan window setup.
func FixedConfig() Config {
	cfg := DefaultConfig()
	cfg.Policy = PolicyFixed
	return cfg
}

// Validate checks the configuration for the selected policy.
func (c Config) Validate() error {
	switch c.Policy {
	case PolicyFixed:
		if c.WindowSide <= 0 {
			return fmt.Errorf("region: window side must be positive, got %d", c.WindowSide)
		}
	case PolicyBlob:
		if c.MinBlobSide < 0 {
			return fmt.Errorf("region: min blob side must not be negative, got %d", c.MinBlobSide)
		}
		if c.ProximityFraction < 0 || c.ProximityFraction >= 1 {
			return fmt.Errorf("region: proximity fraction %v out of range [0, 1)", c.ProximityFraction)
		}
		if c.PadFraction < 0 || c.PadFraction > 1 {
			return fmt.Errorf("region: pad fraction %v out of range [0, 1]", c.PadFraction)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, c.Policy)
	}
	return nil
}

// New builds the selector named by cfg.Policy. The masker is only used by
// the blob policy and may be nil for the fixed window.
func New(cfg Config, m Masker) (Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Policy == PolicyFixed {
		return NewFixedWindow(cfg.WindowSide), nil
	}
	if m == nil {
		return nil, fmt.Errorf("region: blob policy needs a masker")
	}
	return NewBlobTracker(m, cfg.MinBlobSide), nil
}
