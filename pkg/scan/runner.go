package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/camera"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
	"github.com/teslashibe/go-wayfinder/pkg/guidance"
	"github.com/teslashibe/go-wayfinder/pkg/region"
	"github.com/teslashibe/go-wayfinder/pkg/throttle"
)

// ErrNotRunning is returned for control requests after the loop exited.
var ErrNotRunning = errors.New("scan: runner not running")

// Spoken notices on start and stop.
const (
	AnnounceStarted = "Scanning started"
	AnnounceStopped = "Scanning stopped"
)

// FrameSource yields camera frames. camera.Source satisfies it.
type FrameSource interface {
	Read() (frame.Frame, error)
}

// Display shows status and result lines.
type Display interface {
	ShowStatus(status string)
	ShowResult(result string)
}

// Sink delivers guidance and spoken notices to the user.
type Sink interface {
	Guide(ctx context.Context, msg guidance.Message)
	Announce(ctx context.Context, text string)
}

// Recorder receives per-tick measurements.
type Recorder interface {
	RecordTick(status string)
	RecordDecode(latency time.Duration, hit bool)
	RecordGuidance(kind string)
}

// RunnerConfig holds the loop settings.
type RunnerConfig struct {
	FrameInterval time.Duration
	Cooldown      time.Duration
	Color         band.Band
	AutoStart     bool
	Logger        *slog.Logger
}

// DefaultRunnerConfig scans red at 30 FPS with the default decode cooldown.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		FrameInterval: time.Second / 30,
		Cooldown:      throttle.DefaultCooldown,
		Color:         band.Red,
		AutoStart:     true,
		Logger:        slog.Default(),
	}
}

// Snapshot is the dashboard view of the runner.
type Snapshot struct {
	SessionID   uuid.UUID         `json:"session_id"`
	Color       band.Band         `json:"color"`
	Policy      region.Policy     `json:"policy"`
	Running     bool              `json:"running"`
	Status      string            `json:"status"`
	Region      *region.Region    `json:"region,omitempty"`
	LastCode    string            `json:"last_code,omitempty"`
	LastMessage *guidance.Message `json:"last_message,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Runner owns the session and drives the pipeline from a ticker. Control
// requests are applied on the loop goroutine.
type Runner struct {
	pipeline *Pipeline
	source   FrameSource
	display  Display
	sink     Sink
	recorder Recorder
	cfg      RunnerConfig
	logger   *slog.Logger

	session Session

	colorCh    chan band.Band
	startCh    chan struct{}
	stopCh     chan struct{}
	intervalCh chan time.Duration
	done       chan struct{}

	mu       sync.RWMutex
	snapshot Snapshot
	onChange func(Snapshot)
}

// NewRunner creates a runner. display, sink and recorder may be nil.
func NewRunner(p *Pipeline, src FrameSource, display Display, sink Sink, recorder Recorder, cfg RunnerConfig) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultRunnerConfig().FrameInterval
	}

	s := NewSession(cfg.Color, cfg.Cooldown)
	s.Running = cfg.AutoStart

	r := &Runner{
		pipeline: p,
		source:   src,
		display:  display,
		sink:     sink,
		recorder: recorder,
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "scan.runner"),
		session:  s,
		colorCh:  make(chan band.Band, 1),
		startCh:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}, 1),
		done:     make(chan struct{}),

		intervalCh: make(chan time.Duration, 1),
	}
	r.snapshot = Snapshot{
		SessionID: s.ID,
		Color:     s.Selected,
		Policy:    p.Policy(),
		Running:   s.Running,
		UpdatedAt: time.Now(),
	}
	return r
}

// OnChange sets a callback fired from the loop whenever the snapshot's
// status, color, running state or message changes.
func (r *Runner) OnChange(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Snapshot returns the latest published state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// SetColor asks the loop to switch the selected color.
func (r *Runner) SetColor(ctx context.Context, b band.Band) error {
	if !b.Valid() {
		return fmt.Errorf("scan: %w: %v", band.ErrUnknown, b)
	}
	select {
	case r.colorCh <- b:
		return nil
	case <-r.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start asks the loop to resume scanning.
func (r *Runner) Start(ctx context.Context) error {
	return r.signal(ctx, r.startCh)
}

// Stop asks the loop to pause scanning.
func (r *Runner) Stop(ctx context.Context) error {
	return r.signal(ctx, r.stopCh)
}

// SetFrameInterval changes the tick rate, e.g. after the camera framerate
// changed. It never blocks; the latest value wins.
func (r *Runner) SetFrameInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		select {
		case r.intervalCh <- d:
			return
		default:
		}
		select {
		case <-r.intervalCh:
		default:
		}
	}
}

func (r *Runner) signal(ctx context.Context, ch chan struct{}) error {
	select {
	case ch <- struct{}{}:
		return nil
	case <-r.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes frames until ctx is done. It returns an error only when the
// camera becomes unavailable.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.FrameInterval)
	defer ticker.Stop()

	r.logger.Info("scanner started",
		"session", r.session.ID,
		"color", r.session.Selected,
		"policy", r.pipeline.Policy(),
		"interval", r.cfg.FrameInterval,
	)
	if r.session.Running {
		r.showStatus(StatusReady)
	} else {
		r.showStatus(StatusStopped)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scanner stopped", "session", r.session.ID)
			return nil

		case b := <-r.colorCh:
			r.applyColor(b)

		case <-r.startCh:
			r.applyStart(ctx)

		case <-r.stopCh:
			r.applyStop(ctx)

		case d := <-r.intervalCh:
			if d != r.cfg.FrameInterval {
				r.cfg.FrameInterval = d
				ticker.Reset(d)
				r.logger.Info("frame interval changed", "interval", d)
			}

		case now := <-ticker.C:
			if err := r.step(ctx, now); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) applyColor(b band.Band) {
	if b == r.session.Selected {
		return
	}
	r.session = r.session.WithColor(b)
	r.logger.Info("color changed", "session", r.session.ID, "color", b)
	r.publish(func(s *Snapshot) {
		s.Color = b
		s.LastCode = ""
		s.LastMessage = nil
	})
}

func (r *Runner) applyStart(ctx context.Context) {
	if r.session.Running {
		return
	}
	r.session = r.session.Start()
	r.showStatus(StatusReady)
	if r.sink != nil {
		r.sink.Announce(ctx, AnnounceStarted)
	}
}

func (r *Runner) applyStop(ctx context.Context) {
	if !r.session.Running {
		return
	}
	r.session = r.session.Stop()
	r.showStatus(StatusStopped)
	if r.sink != nil {
		r.sink.Announce(ctx, AnnounceStopped)
	}
}

func (r *Runner) step(ctx context.Context, now time.Time) error {
	if !r.session.Running {
		return nil
	}

	f, err := r.source.Read()
	if err != nil {
		if errors.Is(err, camera.ErrUnavailable) || errors.Is(err, camera.ErrClosed) {
			r.logger.Error("camera unavailable", "error", err)
			r.showStatus(StatusUnavailable)
			return fmt.Errorf("scan: %w", err)
		}
		if errors.Is(err, camera.ErrExhausted) {
			r.logger.Info("replay finished", "session", r.session.ID)
			r.session = r.session.Stop()
			r.showStatus(StatusExhausted)
			return nil
		}
		r.logger.Debug("frame read failed", "error", err)
		return nil
	}

	var out Outcome
	r.session, out = r.pipeline.Tick(r.session, f, now)

	if r.recorder != nil {
		r.recorder.RecordTick(out.Status)
		if out.Attempted {
			r.recorder.RecordDecode(out.Latency, out.Payload != nil)
		}
	}

	r.showStatus(out.Status)

	if out.Message != nil {
		if r.sink != nil {
			r.sink.Guide(ctx, *out.Message)
		} else if r.display != nil {
			r.display.ShowResult(out.Message.Display)
		}
		if r.recorder != nil {
			r.recorder.RecordGuidance(string(out.Message.Kind))
		}
	}

	r.publish(func(s *Snapshot) {
		if out.HasRegion {
			reg := out.Region
			s.Region = &reg
		} else {
			s.Region = nil
		}
		if out.Payload != nil {
			s.LastCode = out.Payload.Text
		}
		if out.Message != nil {
			msg := *out.Message
			s.LastMessage = &msg
		}
	})
	return nil
}

// showStatus updates the display only when the status line changes.
func (r *Runner) showStatus(status string) {
	if status == "" {
		return
	}
	r.mu.RLock()
	same := r.snapshot.Status == status
	r.mu.RUnlock()
	if same {
		return
	}

	if r.display != nil {
		r.display.ShowStatus(status)
	}
	r.publish(func(s *Snapshot) {
		s.Status = status
	})
}

func (r *Runner) publish(update func(*Snapshot)) {
	r.mu.Lock()
	prev := r.snapshot
	update(&r.snapshot)
	r.snapshot.SessionID = r.session.ID
	r.snapshot.Color = r.session.Selected
	r.snapshot.Running = r.session.Running
	r.snapshot.UpdatedAt = time.Now()
	next := r.snapshot
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil && changed(prev, next) {
		fn(next)
	}
}

func changed(a, b Snapshot) bool {
	return a.Status != b.Status ||
		a.Color != b.Color ||
		a.Running != b.Running ||
		a.LastMessage != b.LastMessage
}
