package speech

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoCommand is returned when no TTS command is configured.
	ErrNoCommand = errors.New("speech: command required")

	// ErrBadTimeout is returned for a non-positive utterance timeout.
	ErrBadTimeout = errors.New("speech: timeout must be positive")

	// ErrClosed is returned when speaking through a closed speaker.
	ErrClosed = errors.New("speech: speaker closed")
)

// SpeakerError wraps an error with the speaker that produced it.
type SpeakerError struct {
	Speaker string
	Err     error
}

// Error implements the error interface.
func (e *SpeakerError) Error() string {
	return fmt.Sprintf("speech [%s]: %v", e.Speaker, e.Err)
}

// Unwrap returns the underlying error.
func (e *SpeakerError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with speaker context.
func WrapError(speaker string, err error) error {
	if err == nil {
		return nil
	}
	return &SpeakerError{Speaker: speaker, Err: err}
}
