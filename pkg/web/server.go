// Package web provides the scanner dashboard: live status over websocket and
// a small JSON API for selecting the route color and starting or stopping
// scanning.
package web

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/hub"
	"github.com/teslashibe/go-wayfinder/pkg/metrics"
	"github.com/teslashibe/go-wayfinder/pkg/scan"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
)

//go:embed static/index.html
var indexHTML []byte

// Event types sent on the websocket hubs.
const (
	EventStatus   = "status"
	EventResult   = "result"
	EventSnapshot = "snapshot"
	EventLog      = "log"
)

const maxLogs = 200

// Controller is the scanner the dashboard drives. *scan.Runner satisfies it.
type Controller interface {
	Snapshot() scan.Snapshot
	SetColor(ctx context.Context, b band.Band) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Graph is the read-only waypoint view. *waypoint.Graph satisfies it.
type Graph interface {
	Partition(b band.Band) []waypoint.Node
	Len() int
}

// MetricsSource reports scanning metrics. *metrics.Collector satisfies it.
type MetricsSource interface {
	Snapshot() metrics.Snapshot
}

// DisplayState is what the display currently shows.
type DisplayState struct {
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // status, result, control, error
	Message string `json:"message"`
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	graph Graph

	depsMu  sync.RWMutex
	scanner Controller
	metrics MetricsSource
	camera  *camera.Manager

	state   DisplayState
	stateMu sync.RWMutex

	logs   []LogEntry
	logsMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
}

// NewServer creates a dashboard for graph on port.
func NewServer(port string, graph Graph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:      port,
		logger:    logger.With("component", "web"),
		graph:     graph,
		logs:      make([]LogEntry, 0, maxLogs),
		statusHub: hub.New("status", logger),
		logHub:    hub.New("logs", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Wayfinder Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/color", s.handleGetColor)
	api.Post("/color", s.handleSetColor)
	api.Post("/start", s.handleStart)
	api.Post("/stop", s.handleStop)
	api.Get("/graph", s.handleGraph)
	api.Get("/metrics", s.handleMetrics)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleSetCamera)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))

	s.app = app
	return s
}

// SetScanner attaches the scanner controlled by the API.
func (s *Server) SetScanner(c Controller) {
	s.depsMu.Lock()
	defer s.depsMu.Unlock()
	s.scanner = c
}

// SetMetrics attaches the metrics source.
func (s *Server) SetMetrics(m MetricsSource) {
	s.depsMu.Lock()
	defer s.depsMu.Unlock()
	s.metrics = m
}

// SetCamera attaches the camera configuration manager.
func (s *Server) SetCamera(m *camera.Manager) {
	s.depsMu.Lock()
	defer s.depsMu.Unlock()
	s.camera = m
}

func (s *Server) deps() (Controller, MetricsSource, *camera.Manager) {
	s.depsMu.RLock()
	defer s.depsMu.RUnlock()
	return s.scanner, s.metrics, s.camera
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the hubs and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.statusHub.Run(ctx)
	go s.logHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "url", "http://localhost:"+s.port)
		errCh <- s.app.Listen(":" + s.port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

// ShowStatus implements scan.Display.
func (s *Server) ShowStatus(status string) {
	s.stateMu.Lock()
	s.state.Status = status
	s.state.UpdatedAt = time.Now()
	s.stateMu.Unlock()

	s.AddLog("status", status)
	s.broadcast(s.statusHub, EventStatus, status)
}

// ShowResult implements scan.Display.
func (s *Server) ShowResult(result string) {
	s.stateMu.Lock()
	s.state.Result = result
	s.state.UpdatedAt = time.Now()
	s.stateMu.Unlock()

	s.AddLog("result", result)
	s.broadcast(s.statusHub, EventResult, result)
}

// PublishSnapshot pushes a scanner snapshot to status clients.
func (s *Server) PublishSnapshot(snap scan.Snapshot) {
	s.broadcast(s.statusHub, EventSnapshot, snap)
}

// State returns what the display currently shows.
func (s *Server) State() DisplayState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.broadcast(s.logHub, EventLog, entry)
}

func (s *Server) broadcast(h *hub.Hub, kind string, data any) {
	if err := h.BroadcastEvent(kind, data); err != nil {
		s.logger.Warn("broadcast failed", "type", kind, "error", err)
	}
}

var _ scan.Display = (*Server)(nil)
