// Package wayfinder wires the scanner together: camera, segmentation,
// decoding, waypoint graph, feedback sinks and the dashboard.
package wayfinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-wayfinder/internal/config"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/decode"
	"github.com/teslashibe/go-wayfinder/pkg/feedback"
	"github.com/teslashibe/go-wayfinder/pkg/metrics"
	"github.com/teslashibe/go-wayfinder/pkg/region"
	"github.com/teslashibe/go-wayfinder/pkg/scan"
	"github.com/teslashibe/go-wayfinder/pkg/segment"
	"github.com/teslashibe/go-wayfinder/pkg/speech"
	"github.com/teslashibe/go-wayfinder/pkg/throttle"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
	"github.com/teslashibe/go-wayfinder/pkg/web"
)

// App is the main scanner application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config config.App
	camera camera.Config
	logger *slog.Logger

	// Recognition
	graph    *waypoint.Graph
	decoder  decode.Decoder
	pipeline *scan.Pipeline

	// Capture
	source        *camera.Switch
	cameraManager *camera.Manager

	// Feedback
	display    *displays
	speaker    speech.Speaker
	dispatcher *feedback.Dispatcher
	metrics    *metrics.Collector

	runner    *scan.Runner
	webServer *web.Server
}

// New creates an application. The camera device comes from cfg; other
// capture settings from cam.
func New(cfg config.App, cam camera.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Color.Valid() {
		return nil, fmt.Errorf("wayfinder: invalid color %v", cfg.Color)
	}
	if cfg.Camera != "" {
		cam.Device = cfg.Camera
	}
	if errs := cam.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("wayfinder: camera config: %v", errs)
	}

	return &App{
		config:  cfg,
		camera:  cam,
		logger:  logger,
		display: &displays{},
		metrics: metrics.NewCollector(),
	}, nil
}

// Init builds every component. A missing camera is reported on the
// display and returned as camera.ErrUnavailable.
// Call this after New() and before Run().
func (a *App) Init() error {
	a.display.add(newConsoleDisplay(a.logger))

	if err := a.initGraph(); err != nil {
		return fmt.Errorf("waypoints: %w", err)
	}
	if a.config.DashboardPort != "" {
		a.webServer = web.NewServer(a.config.DashboardPort, a.graph, a.logger)
		a.display.add(a.webServer)
	}
	if err := a.initPipeline(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := a.initCamera(); err != nil {
		if errors.Is(err, camera.ErrUnavailable) {
			a.display.ShowStatus(scan.StatusUnavailable)
		}
		return err
	}
	a.initFeedback()

	a.runner = scan.NewRunner(a.pipeline, a.source, a.display, a.dispatcher, a.metrics, scan.RunnerConfig{
		FrameInterval: a.camera.FrameInterval(),
		Cooldown:      throttle.DefaultCooldown,
		Color:         a.config.Color,
		AutoStart:     true,
		Logger:        a.logger,
	})

	if a.webServer != nil {
		a.webServer.SetScanner(a.runner)
		a.webServer.SetMetrics(a.metrics)
		a.webServer.SetCamera(a.cameraManager)
		a.runner.OnChange(a.webServer.PublishSnapshot)
	}
	return nil
}

func (a *App) initGraph() error {
	var (
		g   *waypoint.Graph
		err error
	)
	if a.config.Graph == "" {
		g, err = waypoint.Default()
	} else {
		g, err = waypoint.LoadFile(a.config.Graph)
	}
	if err != nil {
		return err
	}
	a.graph = g
	a.logger.Info("waypoints loaded", "nodes", g.Len(), "source", graphSource(a.config.Graph))
	return nil
}

func graphSource(path string) string {
	if path == "" {
		return "embedded:" + waypoint.DefaultGraphName
	}
	return path
}

func (a *App) initPipeline() error {
	seg, err := segment.New()
	if err != nil {
		return err
	}

	rc := region.DefaultConfig()
	rc.Policy = a.config.Policy
	sel, err := region.New(rc, seg)
	if err != nil {
		return err
	}

	decoders := []decode.Decoder{decode.NewQRDecoder(true)}
	if a.config.OCR {
		ocr, err := decode.NewOCRDecoder(nil)
		if err != nil {
			a.logger.Warn("OCR decoder unavailable, continuing with QR only", "error", err)
		} else {
			decoders = append(decoders, ocr)
		}
	}
	chain, err := decode.NewChainWithLogger(a.logger, decoders...)
	if err != nil {
		return err
	}
	a.decoder = chain

	a.pipeline = scan.NewPipeline(sel, decode.NewAdapter(chain, decode.WithLogger(a.logger)), a.graph,
		scan.WithProximityFraction(rc.ProximityFraction),
		scan.WithPadFraction(rc.PadFraction),
		scan.WithLogger(a.logger),
	)
	return nil
}

func (a *App) initCamera() error {
	src, err := camera.OpenSource(a.camera)
	if err != nil {
		return err
	}
	a.source = camera.NewSwitch(src)

	a.cameraManager = camera.NewManager(a.camera, func(cfg camera.Config) error {
		next, err := camera.OpenSource(cfg)
		if err != nil {
			return err
		}
		if err := a.source.Replace(next); err != nil {
			a.logger.Warn("closing previous camera", "error", err)
		}
		if a.runner != nil {
			a.runner.SetFrameInterval(cfg.FrameInterval())
		}
		a.logger.Info("camera reconfigured", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height, "fps", cfg.Framerate)
		return nil
	})

	a.logger.Info("camera opened", "device", a.camera.Device, "fps", a.camera.Framerate)
	return nil
}

func (a *App) initFeedback() {
	if a.config.SpeechCmd != "" {
		cmd, err := speech.NewCommand(speech.WithCommand(a.config.SpeechCmd), speech.WithLogger(a.logger))
		if err != nil {
			a.logger.Warn("speech disabled", "error", err)
		} else {
			a.speaker = speech.NewCooldown(cmd, speech.DefaultCooldown)
		}
	}

	a.dispatcher = feedback.NewDispatcher(a.display, a.speaker, feedback.NewLogHaptic(a.logger),
		feedback.WithLogger(a.logger))
}

// Run starts the background workers and scans until ctx is cancelled or
// the camera goes away.
func (a *App) Run(ctx context.Context) error {
	go a.dispatcher.Run(ctx)

	if a.webServer != nil {
		go func() {
			if err := a.webServer.Run(ctx); err != nil {
				a.logger.Error("dashboard stopped", "error", err)
			}
		}()
	}

	a.logger.Info("scanning",
		"color", a.config.Color,
		"policy", a.config.Policy,
		"dashboard", a.config.DashboardPort != "",
	)
	return a.runner.Run(ctx)
}

// Shutdown releases the camera, decoders and speaker.
func (a *App) Shutdown() {
	var errs []error
	if a.source != nil {
		errs = append(errs, a.source.Close())
	}
	if a.decoder != nil {
		errs = append(errs, a.decoder.Close())
	}
	if a.speaker != nil {
		errs = append(errs, a.speaker.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown", "error", err)
	}
	a.logger.Info("goodbye", "summary", a.metrics.Snapshot().FormatLatency())
}

// displays fans status and result lines out to every attached display.
type displays struct {
	mu   sync.RWMutex
	list []scan.Display
}

func (d *displays) add(disp scan.Display) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = append(d.list, disp)
}

func (d *displays) ShowStatus(status string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, disp := range d.list {
		disp.ShowStatus(status)
	}
}

func (d *displays) ShowResult(result string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, disp := range d.list {
		disp.ShowResult(result)
	}
}

// consoleDisplay prints lines through the logger for headless runs.
type consoleDisplay struct {
	logger *slog.Logger
}

func newConsoleDisplay(logger *slog.Logger) *consoleDisplay {
	return &consoleDisplay{logger: logger.With("component", "display")}
}

func (c *consoleDisplay) ShowStatus(status string) {
	c.logger.Info("status", "line", status)
}

func (c *consoleDisplay) ShowResult(result string) {
	c.logger.Info("result", "line", result)
}

var (
	_ scan.Display     = (*displays)(nil)
	_ feedback.Display = (*displays)(nil)
)
