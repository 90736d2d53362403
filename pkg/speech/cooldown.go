package speech

import (
	"context"
	"sync"
	"time"
)

// Cooldown drops utterances that arrive within a window of the last
// accepted one. Dropped utterances are not queued.
type Cooldown struct {
	speaker Speaker
	window  time.Duration
	now     func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewCooldown wraps s.
func NewCooldown(s Speaker, window time.Duration) *Cooldown {
	return &Cooldown{
		speaker: s,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether an utterance at the current time would be spoken,
// and if so reserves the slot.
func (c *Cooldown) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < c.window {
		return false
	}
	c.last = now
	return true
}

// Speak speaks text unless the cooldown is active.
func (c *Cooldown) Speak(ctx context.Context, text string) error {
	if !c.Allow() {
		return nil
	}
	return c.speaker.Speak(ctx, text)
}

// Close closes the wrapped speaker.
func (c *Cooldown) Close() error {
	return c.speaker.Close()
}

var _ Speaker = (*Cooldown)(nil)
