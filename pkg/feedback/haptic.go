// Package feedback delivers guidance to the user: the result line on the
// display, the spoken sentence and the haptic pattern.
package feedback

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Haptic plays a vibration pattern of alternating on/off durations.
type Haptic interface {
	Vibrate(ctx context.Context, pattern ...time.Duration) error
}

// LogHaptic stands in for a vibration motor on hosts without one.
type LogHaptic struct {
	logger *slog.Logger
}

// NewLogHaptic logs patterns at debug level.
func NewLogHaptic(logger *slog.Logger) *LogHaptic {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHaptic{logger: logger.With("component", "feedback.haptic")}
}

// Vibrate logs the pattern.
func (h *LogHaptic) Vibrate(ctx context.Context, pattern ...time.Duration) error {
	h.logger.Debug("vibrate", "pattern", pattern)
	return nil
}

// MockHaptic records patterns for tests.
type MockHaptic struct {
	VibrateFunc func(ctx context.Context, pattern ...time.Duration) error

	mu       sync.Mutex
	patterns [][]time.Duration
}

// Vibrate records the pattern and calls VibrateFunc if set.
func (m *MockHaptic) Vibrate(ctx context.Context, pattern ...time.Duration) error {
	m.mu.Lock()
	m.patterns = append(m.patterns, append([]time.Duration(nil), pattern...))
	m.mu.Unlock()
	if m.VibrateFunc != nil {
		return m.VibrateFunc(ctx, pattern...)
	}
	return nil
}

// Patterns returns every recorded pattern.
func (m *MockHaptic) Patterns() [][]time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]time.Duration(nil), m.patterns...)
}

var (
	_ Haptic = (*LogHaptic)(nil)
	_ Haptic = (*MockHaptic)(nil)
)
