package feedback

import (
	"context"
	"log/slog"
	"time"

	"github.com/teslashibe/go-wayfinder/pkg/guidance"
	"github.com/teslashibe/go-wayfinder/pkg/speech"
)

// Display shows the latest guidance result.
type Display interface {
	ShowResult(text string)
}

// Config tunes a Dispatcher.
type Config struct {
	SpeechTimeout time.Duration
	QueueSize     int
	Logger        *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Config)

// WithSpeechTimeout bounds each utterance.
func WithSpeechTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.SpeechTimeout = d
	}
}

// WithQueueSize sets how many pending utterances are kept.
func WithQueueSize(n int) Option {
	return func(c *Config) {
		c.QueueSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns the dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		SpeechTimeout: 10 * time.Second,
		QueueSize:     4,
		Logger:        slog.Default(),
	}
}

type job struct {
	speech string
	haptic []time.Duration
}

// Dispatcher routes guidance to the display immediately and to speech and
// haptics on its own goroutine, so a slow TTS command never stalls scanning.
type Dispatcher struct {
	display Display
	speaker speech.Speaker
	haptic  Haptic
	cfg     Config
	logger  *slog.Logger
	queue   chan job
}

// NewDispatcher wires the sinks. Any sink may be nil.
func NewDispatcher(d Display, s speech.Speaker, h Haptic, opts ...Option) *Dispatcher {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Dispatcher{
		display: d,
		speaker: s,
		haptic:  h,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "feedback.dispatcher"),
		queue:   make(chan job, cfg.QueueSize),
	}
}

// Guide shows msg and queues its speech and haptic pattern.
func (d *Dispatcher) Guide(ctx context.Context, msg guidance.Message) {
	if d.display != nil {
		d.display.ShowResult(msg.Display)
	}
	d.enqueue(job{speech: msg.Speech, haptic: msg.Haptic})
}

// Announce queues a spoken notice with no haptic.
func (d *Dispatcher) Announce(ctx context.Context, text string) {
	d.enqueue(job{speech: text})
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.queue <- j:
	default:
		d.logger.Warn("feedback queue full, dropping", "speech", j.speech)
	}
}

// Run delivers queued feedback until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.queue:
			d.deliver(ctx, j)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	if d.haptic != nil && len(j.haptic) > 0 {
		if err := d.haptic.Vibrate(ctx, j.haptic...); err != nil {
			d.logger.Warn("haptic failed", "error", err)
		}
	}
	if d.speaker != nil && j.speech != "" {
		sctx, cancel := context.WithTimeout(ctx, d.cfg.SpeechTimeout)
		defer cancel()
		if err := d.speaker.Speak(sctx, j.speech); err != nil {
			d.logger.Warn("speech failed", "error", err)
		}
	}
}
