package config

import (
	"testing"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/region"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg App)
		wantErr bool
	}{
		{
			name: "defaults",
			env:  nil,
			check: func(t *testing.T, cfg App) {
				if cfg != Default() {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				EnvColor:         "Blue",
				EnvPolicy:        "fixed",
				EnvCamera:        "/data/frames",
				EnvGraph:         "campus.yaml",
				EnvDashboardPort: "9000",
				EnvOCR:           "true",
				EnvLogLevel:      "DEBUG",
			},
			check: func(t *testing.T, cfg App) {
				if cfg.Color != band.Blue || cfg.Policy != region.PolicyFixed {
					t.Errorf("unexpected color/policy %v/%v", cfg.Color, cfg.Policy)
				}
				if cfg.Camera != "/data/frames" || cfg.Graph != "campus.yaml" || cfg.DashboardPort != "9000" {
					t.Errorf("unexpected strings %+v", cfg)
				}
				if !cfg.OCR || cfg.LogLevel != "debug" {
					t.Errorf("unexpected ocr/log level %v/%q", cfg.OCR, cfg.LogLevel)
				}
			},
		},
		{
			name: "empty disables dashboard and speech",
			env:  map[string]string{EnvDashboardPort: "", EnvSpeechCmd: ""},
			check: func(t *testing.T, cfg App) {
				if cfg.DashboardPort != "" || cfg.SpeechCmd != "" {
					t.Errorf("expected disabled, got %+v", cfg)
				}
			},
		},
		{
			name: "empty camera keeps default",
			env:  map[string]string{EnvCamera: ""},
			check: func(t *testing.T, cfg App) {
				if cfg.Camera != DefaultCamera {
					t.Errorf("expected default camera, got %q", cfg.Camera)
				}
			},
		},
		{name: "bad color", env: map[string]string{EnvColor: "purple"}, wantErr: true},
		{name: "bad policy", env: map[string]string{EnvPolicy: "magic"}, wantErr: true},
		{name: "bad ocr flag", env: map[string]string{EnvOCR: "maybe"}, wantErr: true},
		{name: "bad log level", env: map[string]string{EnvLogLevel: "chatty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := fromLookup(lookupFrom(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvColor, "green")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Color != band.Green {
		t.Errorf("expected green, got %v", cfg.Color)
	}
}

func TestDashboardURL(t *testing.T) {
	if got := DashboardURL("8090"); got != "http://localhost:8090" {
		t.Errorf("unexpected url %q", got)
	}
}
