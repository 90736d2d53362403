// Package band defines the closed set of marker colors the scanner gates on.
package band

import (
	"errors"
	"fmt"
	"strings"
)

// Band is one of the target marker hues.
type Band int

const (
	Red Band = iota
	Green
	Blue
)

// ErrUnknown is returned when a name does not match any band.
var ErrUnknown = errors.New("band: unknown color")

var names = [...]string{
	Red:   "red",
	Green: "green",
	Blue:  "blue",
}

// All returns every band in enumeration order.
// Lookups that search across bands use this order, so the first match wins.
func All() []Band {
	return []Band{Red, Green, Blue}
}

// Valid reports whether b is one of the enumerated bands.
func (b Band) Valid() bool {
	return b >= Red && b <= Blue
}

// String returns the lowercase color name.
func (b Band) String() string {
	if !b.Valid() {
		return fmt.Sprintf("band(%d)", int(b))
	}
	return names[b]
}

// Title returns the color name with a leading capital, for spoken text.
func (b Band) Title() string {
	s := b.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Parse converts a case-insensitive color name into a Band.
func Parse(s string) (Band, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, b := range All() {
		if names[b] == key {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknown, s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Band) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
