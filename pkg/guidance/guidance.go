// Package guidance turns a waypoint resolution into the text shown and
// spoken to the user. Build is pure: the same inputs always produce the
// same Message.
package guidance

import (
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
)

// Kind classifies a message.
type Kind string

const (
	KindMatched    Kind = "matched"
	KindMismatched Kind = "mismatched"
	KindUnknown    Kind = "unknown"
)

// Haptic patterns: alternating vibrate/pause durations.
var (
	HapticMatched    = []time.Duration{250 * time.Millisecond}
	HapticUnknown    = []time.Duration{120 * time.Millisecond}
	HapticMismatched = []time.Duration{150 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond}
)

// UnknownSpeech is spoken for codes that are not in the graph.
const UnknownSpeech = "This code is not recognized."

// Message is the user-facing result of one decoded payload.
type Message struct {
	Kind     Kind            `json:"kind"`
	Code     string          `json:"code"`
	Display  string          `json:"display"`
	Speech   string          `json:"speech"`
	Category string          `json:"category,omitempty"`
	Next     string          `json:"next,omitempty"`
	Haptic   []time.Duration `json:"haptic"`
}

// Successors finds the node a Next code points to. *waypoint.Graph
// satisfies it.
type Successors interface {
	Lookup(code string) (*waypoint.Node, bool)
}

// Build composes the message for res while selected is the active color.
// A successor that cannot be found is left out of the speech.
func Build(g Successors, res waypoint.Resolution, selected band.Band) Message {
	switch {
	case !res.Found || res.Node == nil:
		return Message{
			Kind:    KindUnknown,
			Code:    res.Code,
			Display: "Unknown code: " + res.Code,
			Speech:  UnknownSpeech,
			Haptic:  clone(HapticUnknown),
		}

	case res.Mismatched:
		n := res.Node
		return Message{
			Kind:     KindMismatched,
			Code:     res.Code,
			Display:  fmt.Sprintf("[%s] %s", strings.ToUpper(res.Expected.String()), n.Text),
			Speech:   mismatchSpeech(n.Text, res.Expected, selected),
			Category: n.Category,
			Haptic:   clone(HapticMismatched),
		}
	}

	n := res.Node
	msg := Message{
		Kind:     KindMatched,
		Code:     res.Code,
		Display:  n.Text,
		Speech:   n.Spoken(),
		Category: n.Category,
		Haptic:   clone(HapticMatched),
	}
	if n.Next != "" && g != nil {
		if next, ok := g.Lookup(n.Next); ok {
			msg.Next = next.Text
			msg.Speech = appendSentence(msg.Speech, "Next, head to "+next.Text+".")
		}
	}
	return msg
}

func mismatchSpeech(text string, expected, selected band.Band) string {
	return fmt.Sprintf(
		"Wrong color. This %s marker is %s, but you are following the %s route. Please find a %s marker.",
		expected, text, selected, selected,
	)
}

func appendSentence(s, sentence string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return sentence
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s + " " + sentence
}

func clone(p []time.Duration) []time.Duration {
	return append([]time.Duration(nil), p...)
}
