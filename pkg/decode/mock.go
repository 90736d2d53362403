package decode

import (
	"sync"
)

// Mock implements Decoder for testing.
// All behavior can be customized via DecodeFunc.
type Mock struct {
	// DecodeFunc is called when Decode is invoked.
	// If nil, Decode reports nothing found.
	DecodeFunc func(pixels []byte, width, height int) (string, bool, error)

	// MockName is returned by Name. Defaults to "mock".
	MockName string

	mu     sync.Mutex
	calls  []MockCall
	closed bool
}

// MockCall records a Decode invocation.
type MockCall struct {
	Width  int
	Height int
	Bytes  int
}

// NewMock returns a mock that always decodes the given text.
func NewMock(text string) *Mock {
	return &Mock{
		DecodeFunc: func(pixels []byte, width, height int) (string, bool, error) {
			return text, true, nil
		},
	}
}

// NewSequenceMock returns a mock that yields texts in order, then nothing.
// An empty string in the sequence means "nothing found" for that call.
func NewSequenceMock(texts ...string) *Mock {
	var mu sync.Mutex
	i := 0
	return &Mock{
		DecodeFunc: func(pixels []byte, width, height int) (string, bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(texts) {
				return "", false, nil
			}
			text := texts[i]
			i++
			return text, text != "", nil
		},
	}
}

// WithError returns a mock that always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		DecodeFunc: func(pixels []byte, width, height int) (string, bool, error) {
			return "", false, err
		},
	}
}

// Name implements Decoder.
func (m *Mock) Name() string {
	if m.MockName != "" {
		return m.MockName
	}
	return "mock"
}

// Decode records the call and delegates to DecodeFunc.
func (m *Mock) Decode(pixels []byte, width, height int) (string, bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Width: width, Height: height, Bytes: len(pixels)})
	m.mu.Unlock()

	if m.DecodeFunc == nil {
		return "", false, nil
	}
	return m.DecodeFunc(pixels, width, height)
}

// Close implements Decoder.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls returns all recorded Decode calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of Decode calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Decoder at compile time.
var _ Decoder = (*Mock)(nil)
