// Wayfinder-watch follows a running scanner's dashboard from the terminal.
// It can also change the route color or start and stop scanning.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-wayfinder/internal/config"
	"github.com/teslashibe/go-wayfinder/internal/httpc"
	"github.com/teslashibe/go-wayfinder/pkg/hub"
	"github.com/teslashibe/go-wayfinder/pkg/metrics"
	"github.com/teslashibe/go-wayfinder/pkg/scan"
	"github.com/teslashibe/go-wayfinder/pkg/web"
)

// event mirrors the dashboard envelope with the payload left encoded.
type event struct {
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

func main() {
	base := flag.String("addr", config.DashboardURL(config.DefaultDashboardPort), "Dashboard base URL")
	color := flag.String("color", "", "Switch the route color before watching")
	start := flag.Bool("start", false, "Start scanning")
	stop := flag.Bool("stop", false, "Stop scanning")
	stats := flag.Bool("metrics", false, "Print scan metrics and exit")
	logs := flag.Bool("logs", false, "Watch the activity log instead of status")
	events := flag.String("events", "", "Comma-separated status events to show (status, result, snapshot)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := control(ctx, *base, *color, *start, *stop); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *stats {
		if err := printMetrics(ctx, *base); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	path := "/ws/status"
	if *logs {
		path = "/ws/logs"
	}
	target, err := wsURL(*base, path, *events)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := watch(ctx, target); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func control(ctx context.Context, base, color string, start, stop bool) error {
	if start && stop {
		return errors.New("-start and -stop are exclusive")
	}
	if color != "" {
		if err := httpc.PostJSON(ctx, base+"/api/color", web.ColorRequest{Color: color}, nil); err != nil {
			return fmt.Errorf("set color: %w", err)
		}
		fmt.Printf("🎨 following %s\n", color)
	}
	if start {
		if err := httpc.PostJSON(ctx, base+"/api/start", nil, nil); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if stop {
		if err := httpc.PostJSON(ctx, base+"/api/stop", nil, nil); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
	}
	return nil
}

func printMetrics(ctx context.Context, base string) error {
	var m metrics.Snapshot
	if err := httpc.GetJSON(ctx, base+"/api/metrics", &m); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	fmt.Printf("ticks=%d attempts=%d hits=%d hit_rate=%.2f notified=%v\n",
		m.Ticks, m.Attempts, m.Hits, m.HitRate, m.Notified)
	fmt.Println(m.FormatLatency())
	return nil
}

func wsURL(base, path, events string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if types := hub.ParseTypes(events); len(types) > 0 {
		u.RawQuery = url.Values{"events": {strings.Join(types, ",")}}.Encode()
	}
	return u.String(), nil
}

func watch(ctx context.Context, target string) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	fmt.Printf("👀 watching %s\n", target)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				fmt.Println("dashboard closed the connection")
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			fmt.Fprintf(os.Stderr, "bad message: %v\n", err)
			continue
		}
		if line := format(ev); line != "" {
			fmt.Println(line)
		}
	}
}

func format(ev event) string {
	ts := ev.Time.Format("15:04:05")
	switch ev.Type {
	case web.EventStatus:
		var s string
		if json.Unmarshal(ev.Data, &s) != nil {
			return ""
		}
		return fmt.Sprintf("%s  · %s", ts, s)
	case web.EventResult:
		var s string
		if json.Unmarshal(ev.Data, &s) != nil {
			return ""
		}
		return fmt.Sprintf("%s  ▶ %s", ts, s)
	case web.EventSnapshot:
		var snap scan.Snapshot
		if json.Unmarshal(ev.Data, &snap) != nil {
			return ""
		}
		state := "stopped"
		if snap.Running {
			state = "running"
		}
		return fmt.Sprintf("%s  [%s %s %s] %s", ts, snap.Color, snap.Policy, state, snap.LastCode)
	case web.EventLog:
		var e web.LogEntry
		if json.Unmarshal(ev.Data, &e) != nil {
			return ""
		}
		return fmt.Sprintf("%s  %-8s %s", e.Time, e.Type, e.Message)
	default:
		return fmt.Sprintf("%s  %s %s", ts, ev.Type, ev.Data)
	}
}
