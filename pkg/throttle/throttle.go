// Package throttle caps how often the decoder runs and suppresses repeat
// notifications for a marker the camera is still looking at.
//
// Both types are small values: callers keep them in their session state and
// replace them with the value returned by each call.
package throttle

import "time"

// DefaultCooldown is the minimum spacing between decode attempts.
const DefaultCooldown = 220 * time.Millisecond

// State is the decode gate state.
type State int

const (
	Idle State = iota
	Busy
)

// String returns the state name.
func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Gate admits at most one decode attempt per cooldown. It goes Busy when an
// attempt is admitted and returns to Idle once the cooldown has elapsed,
// whatever the outcome of the attempt. Requests while Busy are dropped.
type Gate struct {
	Cooldown  time.Duration
	BusyUntil time.Time
}

// NewGate returns an idle gate.
func NewGate(cooldown time.Duration) Gate {
	return Gate{Cooldown: cooldown}
}

// State reports the gate state at now.
func (g Gate) State(now time.Time) State {
	if now.Before(g.BusyUntil) {
		return Busy
	}
	return Idle
}

// Acquire admits an attempt if the gate is idle at now. The returned gate
// must replace the receiver.
func (g Gate) Acquire(now time.Time) (Gate, bool) {
	if g.State(now) == Busy {
		return g, false
	}
	g.BusyUntil = now.Add(g.Cooldown)
	return g, true
}

// Reset returns the gate to Idle immediately.
func (g Gate) Reset() Gate {
	g.BusyUntil = time.Time{}
	return g
}

// Dedup remembers the last payload that produced a notification.
type Dedup struct {
	Last string
}

// Observe reports whether payload should notify the user. Only a payload
// different from the last notified one notifies, and it becomes the new Last.
func (d Dedup) Observe(payload string) (Dedup, bool) {
	if payload == d.Last {
		return d, false
	}
	d.Last = payload
	return d, true
}

// Reset forgets the last payload so the next decode always notifies.
func (d Dedup) Reset() Dedup {
	return Dedup{}
}
