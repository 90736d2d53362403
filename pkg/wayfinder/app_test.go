package wayfinder

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-wayfinder/internal/config"
	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/scan"
)

type recordingDisplay struct {
	mu       sync.Mutex
	statuses []string
	results  []string
}

func (d *recordingDisplay) ShowStatus(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, s)
}

func (d *recordingDisplay) ShowResult(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, s)
}

func (d *recordingDisplay) Statuses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.statuses...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headless(device string) config.App {
	cfg := config.Default()
	cfg.Camera = device
	cfg.DashboardPort = ""
	cfg.SpeechCmd = ""
	return cfg
}

func writeFrames(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 64, 48))
		for y := 0; y < 48; y++ {
			for x := 0; x < 64; x++ {
				img.SetRGBA(x, y, color.RGBA{40, 40, 40, 255})
			}
		}
		f, err := os.Create(filepath.Join(dir, string(rune('a'+i))+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := headless("0")
	cfg.Color = band.Band(9)
	if _, err := New(cfg, camera.DefaultConfig(), quietLogger()); err == nil {
		t.Error("expected error for invalid color")
	}

	cam := camera.DefaultConfig()
	cam.Width = 1
	if _, err := New(headless("0"), cam, quietLogger()); err == nil {
		t.Error("expected error for invalid camera config")
	}

	a, err := New(headless("frames"), camera.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.camera.Device != "frames" {
		t.Errorf("expected device override, got %q", a.camera.Device)
	}
}

func TestInit_CameraUnavailable(t *testing.T) {
	dir := t.TempDir() // no images
	a, err := New(headless(dir), camera.DefaultConfig(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	rec := &recordingDisplay{}
	a.display.add(rec)

	err = a.Init()
	if !errors.Is(err, camera.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	got := rec.Statuses()
	if len(got) == 0 || got[len(got)-1] != scan.StatusUnavailable {
		t.Errorf("expected unavailable status, got %v", got)
	}
}

func TestInit_BadGraph(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 1)

	cfg := headless(dir)
	cfg.Graph = filepath.Join(dir, "missing.json")
	a, err := New(cfg, camera.DefaultConfig(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Init(); err == nil {
		t.Error("expected graph load error")
	}
}

func TestApp_RunReplay(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 3)

	a, err := New(headless(dir), camera.DefaultConfig(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	rec := &recordingDisplay{}
	a.display.add(rec)
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := rec.Statuses()
	if len(got) == 0 || got[0] != scan.StatusReady {
		t.Errorf("expected ready status first, got %v", got)
	}
	if a.metrics.Snapshot().Ticks == 0 {
		t.Error("expected ticks to be recorded")
	}
}

func TestApp_CameraFramerateChange(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 2)

	cam := camera.DefaultConfig()
	cam.Framerate = 1
	cam.Loop = true
	a, err := New(headless(dir), cam, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	fps := 30
	if _, err := a.cameraManager.Update(camera.Update{Framerate: &fps}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for a.metrics.Snapshot().Ticks < 5 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ticks := a.metrics.Snapshot().Ticks; ticks < 5 {
		t.Errorf("tick rate should follow the new framerate, got %d ticks", ticks)
	}
}

func TestDisplays_FanOut(t *testing.T) {
	d := &displays{}
	a, b := &recordingDisplay{}, &recordingDisplay{}
	d.add(a)
	d.add(b)

	d.ShowStatus("s")
	d.ShowResult("r")

	for i, r := range []*recordingDisplay{a, b} {
		if len(r.statuses) != 1 || r.statuses[0] != "s" {
			t.Errorf("display %d statuses %v", i, r.statuses)
		}
		if len(r.results) != 1 || r.results[0] != "r" {
			t.Errorf("display %d results %v", i, r.results)
		}
	}
}
