package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// Connection timing.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
)

// Client is one websocket subscriber. Only its write pump writes to conn.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan Message
	types map[string]bool // nil receives every event
}

// ClientOption configures a client before it registers.
type ClientOption func(*Client)

// WithTypes limits the client to the given event types. An empty list
// keeps every event.
func WithTypes(types ...string) ClientOption {
	return func(c *Client) {
		if len(types) == 0 {
			return
		}
		c.types = make(map[string]bool, len(types))
		for _, t := range types {
			c.types[t] = true
		}
	}
}

// NewClient registers a client on hub. initial messages that pass the
// client's filter are queued ahead of any broadcast.
func NewClient(hub *Hub, conn *websocket.Conn, initial []Message, opts ...ClientOption) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}

	queued := 0
	for _, m := range initial {
		if queued == sendBuffer {
			break
		}
		if c.wants(m) {
			c.send <- m
			queued++
		}
	}

	select {
	case hub.register <- c:
	case <-hub.done:
		close(c.send)
	}
	return c
}

func (c *Client) wants(m Message) bool {
	return c.types == nil || c.types[m.Event]
}

// Run pumps messages until the connection closes. It blocks, which keeps
// the fiber websocket handler alive.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump discards inbound frames; it exists to process pongs and notice
// disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case m, ok := <-c.send:
			if !ok {
				// Hub dropped us or shut down.
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			kind, data = websocket.TextMessage, m.Data
		case <-ping.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}
