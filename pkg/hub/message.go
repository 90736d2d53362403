// Package hub fans dashboard events out to websocket clients through a
// single goroutine that owns the client set.
package hub

import (
	"encoding/json"
	"strings"
	"time"
)

// Message is an encoded event ready to write to clients.
type Message struct {
	Event string // Event type, matched against client subscriptions
	Data  []byte
}

// Event is the envelope every dashboard message is sent in.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// NewEvent encodes an event of the given type.
func NewEvent(kind string, data any) (Message, error) {
	b, err := json.Marshal(Event{Type: kind, Time: time.Now(), Data: data})
	if err != nil {
		return Message{}, err
	}
	return Message{Event: kind, Data: b}, nil
}

// ParseTypes splits a comma-separated subscription list such as
// "status,result". Blank entries are ignored.
func ParseTypes(s string) []string {
	var types []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}
