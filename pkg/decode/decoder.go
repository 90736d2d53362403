// Package decode turns a cropped region of a frame into a marker payload.
//
// Symbol decoding itself is delegated to a Decoder capability (a QR
// detector, an OCR engine, a test fake). The Adapter owns cropping, padding
// and upscaling so every Decoder sees a clean RGBA buffer.
package decode

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common error conditions.
var (
	// ErrBadBuffer is returned when a pixel buffer does not match its size.
	ErrBadBuffer = errors.New("decode: pixel buffer does not match dimensions")

	// ErrNoDecoders is returned when a chain is built without decoders.
	ErrNoDecoders = errors.New("decode: no decoders available")

	// ErrClosed is returned when decoding with a closed decoder.
	ErrClosed = errors.New("decode: decoder closed")
)

// Decoder extracts a text payload from an RGBA pixel buffer.
// Finding nothing is not an error: ok is false and err is nil.
type Decoder interface {
	// Decode reads width*height RGBA pixels (stride 4*width).
	Decode(pixels []byte, width, height int) (text string, ok bool, err error)

	// Name identifies the decoder in logs and payloads.
	Name() string

	// Close releases native resources.
	Close() error
}

// Payload is a successfully decoded marker text.
type Payload struct {
	Text      string    `json:"text"`
	DecodedAt time.Time `json:"decoded_at"`
	Decoder   string    `json:"decoder"`
}

// DecoderError wraps an error with decoder context.
type DecoderError struct {
	Decoder string
	Err     error
}

// Error implements the error interface.
func (e *DecoderError) Error() string {
	return fmt.Sprintf("decode [%s]: %v", e.Decoder, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecoderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with decoder context.
func WrapError(decoder string, err error) error {
	if err == nil {
		return nil
	}
	return &DecoderError{Decoder: decoder, Err: err}
}

func checkBuffer(pixels []byte, width, height int) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrBadBuffer, width, height, len(pixels))
	}
	return nil
}
