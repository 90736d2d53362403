package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub, buf int) *Client {
	c := &Client{hub: h, send: make(chan Message, buf)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case m, ok := <-c.send:
		return m, ok
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}, false
	}
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := h.ClientCount(); got != n {
		t.Fatalf("expected %d clients, got %d", n, got)
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := newTestClient(h, 4)
	b := newTestClient(h, 4)
	waitClients(t, h, 2)

	if err := h.BroadcastEvent("status", map[string]string{"status": "Stopped."}); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*Client{a, b} {
		m, ok := receive(t, c)
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		var ev struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != "status" || ev.Data["status"] != "Stopped." {
			t.Errorf("unexpected event %+v", ev)
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	slow := newTestClient(h, 1)
	h.Broadcast(Message{Data: []byte(`1`)})
	h.Broadcast(Message{Data: []byte(`2`)})

	waitClients(t, h, 0)
	if m, ok := <-slow.send; !ok || string(m.Data) != "1" {
		t.Errorf("expected the first message to be delivered, got %q %v", m.Data, ok)
	}
	if _, ok := <-slow.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestHub_Unregister(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newTestClient(h, 1)
	h.unregister <- c
	if _, ok := receive(t, c); ok {
		t.Error("unregister should close the send channel")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := newTestClient(h, 1)
	cancel()
	<-h.done

	if _, ok := <-c.send; ok {
		t.Error("shutdown should close client channels")
	}
	if h.ClientCount() != 0 {
		t.Error("no clients should remain after shutdown")
	}
}

func TestNewEvent(t *testing.T) {
	m, err := NewEvent("result", "Walkway")
	if err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != "result" || ev.Data != "Walkway" || ev.Time.IsZero() {
		t.Errorf("unexpected event %+v", ev)
	}
	if _, err := NewEvent("bad", func() {}); err == nil {
		t.Error("expected marshal error")
	}
}

func TestHub_Subscriptions(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	all := newTestClient(h, 4)
	results := &Client{hub: h, send: make(chan Message, 4)}
	WithTypes("result")(results)
	h.register <- results
	waitClients(t, h, 2)

	h.BroadcastEvent("status", "Scanning")
	h.BroadcastEvent("result", "Library")

	if m, _ := receive(t, all); m.Event != "status" {
		t.Errorf("expected status first, got %q", m.Event)
	}
	if m, _ := receive(t, all); m.Event != "result" {
		t.Errorf("expected result second, got %q", m.Event)
	}
	if m, _ := receive(t, results); m.Event != "result" {
		t.Errorf("filtered client should only see results, got %q", m.Event)
	}
	select {
	case m := <-results.send:
		t.Errorf("unexpected extra message %q", m.Event)
	default:
	}
}

func TestNewClient_InitialFiltered(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	status, _ := NewEvent("status", "Stopped.")
	snap, _ := NewEvent("snapshot", map[string]bool{"running": false})

	c := NewClient(h, nil, []Message{status, snap}, WithTypes("snapshot"))
	waitClients(t, h, 1)

	if m, _ := receive(t, c); m.Event != "snapshot" {
		t.Errorf("expected snapshot replay, got %q", m.Event)
	}
	if len(c.send) != 0 {
		t.Errorf("expected status to be filtered out, %d queued", len(c.send))
	}
}

func TestNewClient_HubStopped(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Run(ctx)

	c := NewClient(h, nil, nil)
	if _, ok := <-c.send; ok {
		t.Error("client of a stopped hub should be closed")
	}
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"status", []string{"status"}},
		{" status, result ,,snapshot", []string{"status", "result", "snapshot"}},
	}
	for _, tt := range tests {
		got := ParseTypes(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("ParseTypes(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTypes(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
