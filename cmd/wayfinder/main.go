// Wayfinder - color-marker scanner that speaks the next waypoint on a route
// Reads a camera (or a directory of frames), decodes markers of the chosen
// color and guides the user along that color's route.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-wayfinder/internal/config"
	wlog "github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/region"
	"github.com/teslashibe/go-wayfinder/pkg/wayfinder"
)

func main() {
	cfg, cam := parseFlags()

	wlog.Init(cfg.LogLevel)
	wlog.Component("main").Info("starting wayfinder",
		"color", cfg.Color,
		"camera", cfg.Camera,
		"preset", fmt.Sprintf("%dx%d@%d", cam.Width, cam.Height, cam.Framerate),
	)

	app, err := wayfinder.New(cfg, cam, wlog.L())
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if err := app.Init(); err != nil {
		if errors.Is(err, camera.ErrUnavailable) {
			log.Fatalf("❌ Camera unavailable: %v", err)
		}
		log.Fatalf("❌ Initialization failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = app.Run(ctx)
	cancel()
	app.Shutdown()

	if err != nil {
		log.Printf("❌ Runtime error: %v", err)
		os.Exit(1)
	}
}

// parseFlags reads the environment and lets command line flags override it.
func parseFlags() (config.App, camera.Config) {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	color := flag.String("color", cfg.Color.String(), "Route color to follow: red, green, blue")
	policy := flag.String("policy", string(cfg.Policy), "Region policy: blob or fixed")
	device := flag.String("camera", cfg.Camera, "Camera index, video URL or directory of frames")
	preset := flag.String("preset", "default", "Capture preset: default, battery, far, detail")
	loop := flag.Bool("loop", false, "Loop a directory of frames")
	graph := flag.String("graph", cfg.Graph, "Waypoint file (JSON or YAML); empty uses the built-in campus")
	port := flag.String("port", cfg.DashboardPort, "Dashboard port; empty disables the dashboard")
	speechCmd := flag.String("speech", cfg.SpeechCmd, "Speech command; empty disables speech")
	ocr := flag.Bool("ocr", cfg.OCR, "Fall back to OCR when no QR code is found")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	b, err := band.Parse(*color)
	if err != nil {
		log.Fatalf("❌ -color: %v", err)
	}
	p, err := region.ParsePolicy(*policy)
	if err != nil {
		log.Fatalf("❌ -policy: %v", err)
	}
	cam, ok := camera.LookupPreset(*preset)
	if !ok {
		log.Fatalf("❌ -preset: unknown preset %q (have %s)", *preset, strings.Join(camera.PresetNames(), ", "))
	}

	cfg.Color, cfg.Policy = b, p
	cfg.Camera, cfg.Graph = *device, *graph
	cfg.DashboardPort, cfg.SpeechCmd, cfg.OCR = *port, *speechCmd, *ocr
	cam.Loop = *loop
	if *debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cam
}
