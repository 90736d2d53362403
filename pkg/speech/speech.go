// Package speech speaks short guidance phrases through a local
// text-to-speech command.
//
// All speakers implement the Speaker interface. Callers normally wrap the
// command speaker in a Cooldown so utterances do not pile up while the user
// walks past several markers.
//
// Example usage:
//
//	spk, _ := speech.NewCommand(speech.WithCommand("espeak-ng"))
//	s := speech.NewCooldown(spk, speech.DefaultCooldown)
//	defer s.Close()
//
//	_ = s.Speak(ctx, "Block N Entrance. Next, head to Walkway.")
package speech

import (
	"context"
)

// Speaker speaks text aloud.
type Speaker interface {
	// Speak blocks until the utterance finishes or ctx is done.
	Speak(ctx context.Context, text string) error

	// Close releases any resources held by the speaker.
	Close() error
}
