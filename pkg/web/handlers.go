package web

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/hub"
	"github.com/teslashibe/go-wayfinder/pkg/scan"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func unavailable(c *fiber.Ctx, what string) error {
	return errorJSON(c, fiber.StatusServiceUnavailable, what+" not configured")
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(indexHTML)
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Display DisplayState   `json:"display"`
	Scanner *scan.Snapshot `json:"scanner,omitempty"`
	Clients int            `json:"clients"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		Display: s.State(),
		Clients: s.statusHub.ClientCount(),
	}
	if scanner, _, _ := s.deps(); scanner != nil {
		snap := scanner.Snapshot()
		resp.Scanner = &snap
	}
	return c.JSON(resp)
}

// ColorRequest is the body of POST /api/color.
type ColorRequest struct {
	Color string `json:"color"`
}

func (s *Server) handleGetColor(c *fiber.Ctx) error {
	scanner, _, _ := s.deps()
	if scanner == nil {
		return unavailable(c, "scanner")
	}
	return c.JSON(fiber.Map{
		"color":  scanner.Snapshot().Color,
		"colors": band.All(),
	})
}

func (s *Server) handleSetColor(c *fiber.Ctx) error {
	scanner, _, _ := s.deps()
	if scanner == nil {
		return unavailable(c, "scanner")
	}

	var req ColorRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body")
	}
	b, err := band.Parse(req.Color)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if err := scanner.SetColor(c.UserContext(), b); err != nil {
		return controlError(c, err)
	}

	s.AddLog("control", "color set to "+b.String())
	return c.JSON(fiber.Map{"color": b})
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	return s.control(c, "start", Controller.Start)
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	return s.control(c, "stop", Controller.Stop)
}

func (s *Server) control(c *fiber.Ctx, name string, op func(Controller, context.Context) error) error {
	scanner, _, _ := s.deps()
	if scanner == nil {
		return unavailable(c, "scanner")
	}
	if err := op(scanner, c.UserContext()); err != nil {
		return controlError(c, err)
	}
	s.AddLog("control", name)
	return c.JSON(fiber.Map{"ok": true, "action": name})
}

func controlError(c *fiber.Ctx, err error) error {
	if errors.Is(err, scan.ErrNotRunning) {
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return errorJSON(c, fiber.StatusInternalServerError, err.Error())
}

// GraphResponse is returned by GET /api/graph.
type GraphResponse struct {
	Total      int                        `json:"total"`
	Partitions map[string][]waypoint.Node `json:"partitions"`
}

func (s *Server) handleGraph(c *fiber.Ctx) error {
	if s.graph == nil {
		return unavailable(c, "graph")
	}
	resp := GraphResponse{
		Total:      s.graph.Len(),
		Partitions: make(map[string][]waypoint.Node),
	}
	for _, b := range band.All() {
		resp.Partitions[b.String()] = s.graph.Partition(b)
	}
	return c.JSON(resp)
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	_, m, _ := s.deps()
	if m == nil {
		return unavailable(c, "metrics")
	}
	snap := m.Snapshot()
	return c.JSON(fiber.Map{
		"metrics": snap,
		"summary": snap.FormatLatency(),
	})
}

// CameraResponse is returned by the camera endpoints.
type CameraResponse struct {
	Config  camera.Config   `json:"config"`
	Presets []camera.Preset `json:"presets"`
}

func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	_, _, cam := s.deps()
	if cam == nil {
		return unavailable(c, "camera")
	}
	return c.JSON(CameraResponse{Config: cam.Config(), Presets: camera.Presets()})
}

func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	_, _, cam := s.deps()
	if cam == nil {
		return unavailable(c, "camera")
	}

	var u camera.Update
	if err := c.BodyParser(&u); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body")
	}
	cfg, err := cam.Update(u)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	s.AddLog("control", fmt.Sprintf("camera %dx%d@%d", cfg.Width, cfg.Height, cfg.Framerate))
	return c.JSON(CameraResponse{Config: cfg, Presets: camera.Presets()})
}

func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStatusWS sends the current display and scanner state, then streams
// updates from the status hub. ?events=status,result limits the stream.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	var initial []hub.Message
	if msg, err := hub.NewEvent(EventStatus, s.State().Status); err == nil {
		initial = append(initial, msg)
	}
	if scanner, _, _ := s.deps(); scanner != nil {
		if msg, err := hub.NewEvent(EventSnapshot, scanner.Snapshot()); err == nil {
			initial = append(initial, msg)
		}
	}
	hub.NewClient(s.statusHub, c, initial, hub.WithTypes(hub.ParseTypes(c.Query("events"))...)).Run()
}

// handleLogsWS replays recent log entries, then streams new ones.
func (s *Server) handleLogsWS(c *websocket.Conn) {
	s.logsMu.RLock()
	initial := make([]hub.Message, 0, len(s.logs))
	for _, entry := range s.logs {
		if msg, err := hub.NewEvent(EventLog, entry); err == nil {
			initial = append(initial, msg)
		}
	}
	s.logsMu.RUnlock()

	hub.NewClient(s.logHub, c, initial).Run()
}
