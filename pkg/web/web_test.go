package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/metrics"
	"github.com/teslashibe/go-wayfinder/pkg/scan"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
)

type fakeController struct {
	mu      sync.Mutex
	color   band.Band
	running bool
	err     error
	calls   []string
}

func (f *fakeController) Snapshot() scan.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return scan.Snapshot{Color: f.color, Running: f.running, Status: scan.StatusReady}
}

func (f *fakeController) SetColor(ctx context.Context, b band.Band) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "color:"+b.String())
	if f.err != nil {
		return f.err
	}
	f.color = b
	return nil
}

func (f *fakeController) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start")
	f.running = true
	return f.err
}

func (f *fakeController) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop")
	f.running = false
	return f.err
}

func testGraph() *waypoint.Graph {
	return waypoint.New(map[band.Band][]waypoint.Node{
		band.Red:  {{Code: "R_ENTR", Text: "Block N Entrance", Next: "R_WALKWAY"}, {Code: "R_WALKWAY", Text: "Walkway"}},
		band.Blue: {{Code: "B_DESK", Text: "Help Desk"}},
	})
}

func newTestServer() (*Server, *fakeController) {
	s := NewServer("0", testGraph(), nil)
	ctrl := &fakeController{color: band.Red, running: true}
	s.SetScanner(ctrl)
	return s, ctrl
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
	}
	return resp.StatusCode, out
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer()
	s.ShowStatus(scan.StatusReady)
	s.ShowResult("Block N Entrance")

	code, body := do(t, s, http.MethodGet, "/api/status", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	display := body["display"].(map[string]any)
	if display["status"] != scan.StatusReady || display["result"] != "Block N Entrance" {
		t.Errorf("unexpected display %v", display)
	}
	scanner := body["scanner"].(map[string]any)
	if scanner["color"] != "red" {
		t.Errorf("unexpected scanner %v", scanner)
	}
}

func TestColor(t *testing.T) {
	s, ctrl := newTestServer()

	code, body := do(t, s, http.MethodGet, "/api/color", "")
	if code != http.StatusOK || body["color"] != "red" {
		t.Fatalf("unexpected GET /api/color: %d %v", code, body)
	}
	if colors := body["colors"].([]any); len(colors) != 3 || colors[0] != "red" {
		t.Errorf("unexpected colors %v", colors)
	}

	code, body = do(t, s, http.MethodPost, "/api/color", `{"color":"Green"}`)
	if code != http.StatusOK || body["color"] != "green" {
		t.Fatalf("unexpected POST /api/color: %d %v", code, body)
	}
	if ctrl.Snapshot().Color != band.Green {
		t.Error("controller color not updated")
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown color", `{"color":"purple"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := do(t, s, http.MethodPost, "/api/color", tt.body); code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	s, ctrl := newTestServer()

	if code, _ := do(t, s, http.MethodPost, "/api/stop", ""); code != http.StatusOK {
		t.Fatalf("stop: %d", code)
	}
	if ctrl.Snapshot().Running {
		t.Error("expected stopped")
	}
	if code, _ := do(t, s, http.MethodPost, "/api/start", ""); code != http.StatusOK {
		t.Fatalf("start: %d", code)
	}
	if !ctrl.Snapshot().Running {
		t.Error("expected running")
	}

	ctrl.err = scan.ErrNotRunning
	if code, _ := do(t, s, http.MethodPost, "/api/start", ""); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the loop is gone, got %d", code)
	}
}

func TestNoScanner(t *testing.T) {
	s := NewServer("0", testGraph(), nil)
	for _, path := range []string{"/api/color", "/api/metrics", "/api/camera"} {
		if code, _ := do(t, s, http.MethodGet, path, ""); code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, code)
		}
	}
	if code, body := do(t, s, http.MethodGet, "/api/status", ""); code != http.StatusOK || body["scanner"] != nil {
		t.Errorf("status without scanner: %d %v", code, body)
	}
}

func TestGraph(t *testing.T) {
	s, _ := newTestServer()
	code, body := do(t, s, http.MethodGet, "/api/graph", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["total"] != float64(3) {
		t.Errorf("unexpected total %v", body["total"])
	}
	parts := body["partitions"].(map[string]any)
	red := parts["red"].([]any)
	if len(red) != 2 || red[0].(map[string]any)["code"] != "R_ENTR" {
		t.Errorf("unexpected red partition %v", red)
	}
	if green, ok := parts["green"].([]any); !ok || len(green) != 0 {
		t.Errorf("expected empty green partition, got %v", parts["green"])
	}
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer()
	c := metrics.NewCollector()
	c.RecordTick(scan.StatusScanning)
	s.SetMetrics(c)

	code, body := do(t, s, http.MethodGet, "/api/metrics", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["metrics"].(map[string]any)["ticks"] != float64(1) {
		t.Errorf("unexpected metrics %v", body)
	}
}

func TestCamera(t *testing.T) {
	s, _ := newTestServer()
	var applied int
	m := camera.NewManager(camera.DefaultConfig(), func(camera.Config) error {
		applied++
		return nil
	})
	s.SetCamera(m)

	code, body := do(t, s, http.MethodPost, "/api/camera", `{"preset":"far"}`)
	if code != http.StatusOK || body["config"].(map[string]any)["width"] != float64(1280) {
		t.Fatalf("unexpected response %d %v", code, body)
	}
	if presets := body["presets"].([]any); len(presets) != len(camera.Presets()) {
		t.Errorf("expected preset list, got %v", presets)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/camera", `{"framerate":0}`); code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid framerate, got %d", code)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/camera", `{"preset":"720p"}`); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown preset, got %d", code)
	}

	_, body = do(t, s, http.MethodGet, "/api/camera", "")
	if body["config"].(map[string]any)["framerate"] != float64(30) {
		t.Errorf("invalid update must not apply, got %v", body)
	}
	if applied != 1 {
		t.Errorf("expected one applied change, got %d", applied)
	}
}

func TestLogs(t *testing.T) {
	s, _ := newTestServer()
	for i := 0; i < maxLogs+10; i++ {
		s.AddLog("status", "x")
	}
	do(t, s, http.MethodPost, "/api/stop", "")

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var logs []LogEntry
	if err := json.NewDecoder(resp.Body).Decode(&logs); err != nil {
		t.Fatal(err)
	}
	if len(logs) != maxLogs {
		t.Errorf("expected %d logs, got %d", maxLogs, len(logs))
	}
	if last := logs[len(logs)-1]; last.Type != "control" || last.Message != "stop" {
		t.Errorf("unexpected last log %+v", last)
	}
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer()
	if code, _ := do(t, s, http.MethodGet, "/ws/status", ""); code != http.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", code)
	}
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "/ws/status") {
		t.Error("index should connect to the status websocket")
	}
}
