// Package config provides configuration helpers for go-wayfinder commands.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	wlog "github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/region"
)

// Environment variables read by FromEnv.
const (
	EnvColor         = "WAYFINDER_COLOR"
	EnvPolicy        = "WAYFINDER_POLICY"
	EnvCamera        = "WAYFINDER_CAMERA"
	EnvGraph         = "WAYFINDER_GRAPH"
	EnvDashboardPort = "WAYFINDER_DASHBOARD_PORT"
	EnvSpeechCmd     = "WAYFINDER_SPEECH_CMD"
	EnvOCR           = "WAYFINDER_OCR"
	EnvLogLevel      = "LOG_LEVEL"
)

// Defaults used when the environment is silent.
const (
	DefaultDashboardPort = "8090"
	DefaultCamera        = "0"
	DefaultLogLevel      = "info"
)

// App is the scanner's top-level configuration.
type App struct {
	Color         band.Band
	Policy        region.Policy
	Camera        string // Capture index, video URL or image directory
	Graph         string // Waypoint file; empty uses the embedded graph
	DashboardPort string // Empty disables the dashboard
	SpeechCmd     string // Empty disables speech
	OCR           bool   // Add the OCR fallback decoder
	LogLevel      string
}

// Default returns the configuration used with an empty environment.
func Default() App {
	return App{
		Color:         band.Red,
		Policy:        region.PolicyBlob,
		Camera:        DefaultCamera,
		DashboardPort: DefaultDashboardPort,
		SpeechCmd:     "espeak",
		LogLevel:      DefaultLogLevel,
	}
}

// FromEnv overlays environment variables on Default.
func FromEnv() (App, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (App, error) {
	cfg := Default()

	if v, ok := lookup(EnvColor); ok && v != "" {
		b, err := band.Parse(v)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvColor, err)
		}
		cfg.Color = b
	}
	if v, ok := lookup(EnvPolicy); ok && v != "" {
		p, err := region.ParsePolicy(v)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvPolicy, err)
		}
		cfg.Policy = p
	}
	if v, ok := lookup(EnvOCR); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvOCR, err)
		}
		cfg.OCR = on
	}

	cfg.Camera = stringOr(lookup, EnvCamera, cfg.Camera)
	cfg.Graph = stringOr(lookup, EnvGraph, cfg.Graph)
	cfg.LogLevel = strings.ToLower(stringOr(lookup, EnvLogLevel, cfg.LogLevel))
	if _, err := wlog.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
	}

	// Set but empty disables these.
	if v, ok := lookup(EnvDashboardPort); ok {
		cfg.DashboardPort = v
	}
	if v, ok := lookup(EnvSpeechCmd); ok {
		cfg.SpeechCmd = v
	}

	return cfg, nil
}

func stringOr(lookup func(string) (string, bool), key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

// DashboardURL returns the local dashboard base URL for port.
func DashboardURL(port string) string {
	return fmt.Sprintf("http://localhost:%s", port)
}
