package hub

import (
	"context"
	"log/slog"
	"sync"
)

const broadcastBuffer = 256

// Hub owns the client set. Register, unregister and broadcast requests are
// serialized through Run, so clients are only ever touched by one goroutine.
type Hub struct {
	name   string
	logger *slog.Logger

	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	count   int
	countMu sync.RWMutex
}

// New creates a hub. name tags its log lines.
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		logger:     logger.With("component", "hub", "hub", name),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Debug("hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount()
			h.logger.Debug("client connected", "clients", len(h.clients), "filtered", c.types != nil)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("client disconnected", "clients", len(h.clients))
			}

		case m := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(m) {
					continue
				}
				select {
				case c.send <- m:
				default:
					h.drop(c)
					h.logger.Warn("dropped slow client", "event", m.Event)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.countMu.Lock()
	h.count = len(h.clients)
	h.countMu.Unlock()
}

// Broadcast queues m for every subscribed client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(m Message) {
	select {
	case h.broadcast <- m:
	default:
		h.logger.Warn("broadcast queue full, dropping message", "event", m.Event)
	}
}

// BroadcastEvent encodes and broadcasts an event.
func (h *Hub) BroadcastEvent(kind string, data any) error {
	m, err := NewEvent(kind, data)
	if err != nil {
		return err
	}
	h.Broadcast(m)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.count
}
