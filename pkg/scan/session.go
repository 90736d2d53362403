// Package scan drives the per-frame wayfinding pipeline: region selection,
// proximity gating, throttled decoding, dedup, waypoint resolution and
// guidance. Pipeline.Tick is a pure step over an explicit Session value;
// Runner owns the session and the loop goroutine.
package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/throttle"
)

// Session is the mutable scanning state carried from one tick to the next.
type Session struct {
	ID       uuid.UUID
	Selected band.Band
	Gate     throttle.Gate
	Dedup    throttle.Dedup
	Running  bool
}

// NewSession returns a running session for the selected color.
func NewSession(selected band.Band, cooldown time.Duration) Session {
	return Session{
		ID:       uuid.New(),
		Selected: selected,
		Gate:     throttle.NewGate(cooldown),
		Running:  true,
	}
}

// WithColor switches the selected color. The last payload is forgotten so
// the marker in view is evaluated again against the new color.
func (s Session) WithColor(b band.Band) Session {
	s.Selected = b
	s.Dedup = s.Dedup.Reset()
	return s
}

// Start resumes scanning with a clean gate and dedup.
func (s Session) Start() Session {
	s.Running = true
	s.Gate = s.Gate.Reset()
	s.Dedup = s.Dedup.Reset()
	return s
}

// Stop pauses scanning.
func (s Session) Stop() Session {
	s.Running = false
	return s
}
