// Package camera provides frame sources for the scanner: a live capture
// device through OpenCV and a directory replay source for bench testing.
// Capture settings are runtime-configurable through a Manager.
package camera

import (
	"strconv"
	"time"
)

// Config holds the capture parameters.
type Config struct {
	// Device is a capture index ("0") or a video file / stream URL.
	Device string `json:"device"`

	Width     int `json:"width"`     // Requested frame width in pixels
	Height    int `json:"height"`    // Requested frame height in pixels
	Framerate int `json:"framerate"` // Target FPS, also the scan tick rate

	// Loop replays a directory source from the start when it runs out.
	Loop bool `json:"loop"`
}

// Capture limits accepted by Validate.
const (
	MinWidth     = 160
	MinHeight    = 120
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 60
)

// DefaultConfig returns 640x480 at 30 FPS from the first capture device.
// Marker segmentation does not benefit from higher resolutions.
func DefaultConfig() Config {
	return Config{
		Device:    "0",
		Width:     640,
		Height:    480,
		Framerate: 30,
		Loop:      true,
	}
}

// FrameInterval is the time between frames at the configured rate.
func (c Config) FrameInterval() time.Duration {
	if c.Framerate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Framerate)
}

// DeviceIndex reports whether Device is a numeric capture index.
func (c Config) DeviceIndex() (int, bool) {
	i, err := strconv.Atoi(c.Device)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Device == "" {
		errs = append(errs, "device must not be empty")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, "width must be between 160 and 3840")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errs = append(errs, "framerate must be between 1 and 60")
	}

	return errs
}
