package speech

import (
	"context"
	"sync"
	"time"
)

// Utterance is one recorded Speak call.
type Utterance struct {
	Text string
	At   time.Time
	Err  error
}

// Mock is a Speaker that records utterances instead of playing them.
type Mock struct {
	// SpeakFunc, when set, decides the result of each Speak call.
	SpeakFunc func(ctx context.Context, text string) error

	mu         sync.Mutex
	utterances []Utterance
	closes     int
	notify     chan struct{}
}

// NewMock returns a mock that accepts everything.
func NewMock() *Mock {
	return &Mock{notify: make(chan struct{}, 1)}
}

// WithError returns a mock whose every Speak fails with err.
func WithError(err error) *Mock {
	m := NewMock()
	m.SpeakFunc = func(context.Context, string) error { return err }
	return m
}

// Speak records text and returns SpeakFunc's result.
func (m *Mock) Speak(ctx context.Context, text string) error {
	var err error
	if m.SpeakFunc != nil {
		err = m.SpeakFunc(ctx, text)
	}

	m.mu.Lock()
	m.utterances = append(m.utterances, Utterance{Text: text, At: time.Now(), Err: err})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return err
}

// Close counts the call.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

// Utterances returns every recorded Speak call.
func (m *Mock) Utterances() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Utterance(nil), m.utterances...)
}

// Spoken returns the texts passed to Speak, in order.
func (m *Mock) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.utterances))
	for i, u := range m.utterances {
		out[i] = u.Text
	}
	return out
}

// WaitSpoken blocks until at least n texts were spoken or timeout passes,
// and returns what was spoken so far.
func (m *Mock) WaitSpoken(n int, timeout time.Duration) []string {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if got := m.Spoken(); len(got) >= n {
			return got
		}
		select {
		case <-m.notify:
		case <-deadline.C:
			return m.Spoken()
		}
	}
}

// Closes returns how many times Close was called.
func (m *Mock) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Reset forgets recorded utterances and closes.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.utterances = nil
	m.closes = 0
}

var _ Speaker = (*Mock)(nil)
