package scan

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/decode"
	"github.com/teslashibe/go-wayfinder/pkg/frame"
	"github.com/teslashibe/go-wayfinder/pkg/guidance"
	"github.com/teslashibe/go-wayfinder/pkg/region"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
)

// Status lines shown while scanning.
const (
	StatusScanning    = "Scanning for colored marker…"
	StatusMoveCloser  = "Marker in view, move closer"
	StatusAcquiring   = "Marker present, acquiring…"
	StatusDecoded     = "Decoded successfully"
	StatusReady       = "Camera ready. Scanning…"
	StatusStopped     = "Stopped."
	StatusUnavailable = "Camera unavailable: check permissions or device."
	StatusExhausted   = "Replay finished."
)

// RegionDecoder extracts a payload from a region of a frame.
// *decode.Adapter satisfies it.
type RegionDecoder interface {
	Decode(f frame.Frame, r region.Region, padFraction float64) (*decode.Payload, error)
}

// Resolver maps codes to waypoints. *waypoint.Graph satisfies it.
type Resolver interface {
	guidance.Successors
	Resolve(code string, selected band.Band) waypoint.Resolution
}

// Config tunes the blob-only gating steps of the pipeline.
type Config struct {
	ProximityFraction float64
	PadFraction       float64
	Logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Config)

// WithProximityFraction sets how much of the frame's shorter side a blob must
// span before decoding is attempted.
func WithProximityFraction(f float64) Option {
	return func(c *Config) {
		c.ProximityFraction = f
	}
}

// WithPadFraction sets the crop padding applied around blobs.
func WithPadFraction(f float64) Option {
	return func(c *Config) {
		c.PadFraction = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig mirrors region.DefaultConfig.
func DefaultConfig() Config {
	rc := region.DefaultConfig()
	return Config{
		ProximityFraction: rc.ProximityFraction,
		PadFraction:       rc.PadFraction,
		Logger:            slog.Default(),
	}
}

// Outcome is everything one tick produced.
type Outcome struct {
	Status    string // Empty when the status line should not change
	Region    region.Region
	HasRegion bool
	Attempted bool          // The decoder ran on this tick
	Latency   time.Duration // Decoder wall time when Attempted
	Payload   *decode.Payload
	Message   *guidance.Message // Set only when the user should be notified
	Err       error
}

// Pipeline runs one frame through selection, gating, decoding and guidance.
type Pipeline struct {
	selector region.Selector
	decoder  RegionDecoder
	graph    Resolver
	cfg      Config
	logger   *slog.Logger
}

// NewPipeline wires the pipeline stages.
func NewPipeline(sel region.Selector, dec RegionDecoder, graph Resolver, opts ...Option) *Pipeline {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline{
		selector: sel,
		decoder:  dec,
		graph:    graph,
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "scan.pipeline"),
	}
}

// Policy returns the region policy in use.
func (p *Pipeline) Policy() region.Policy {
	return p.selector.Policy()
}

// Tick processes one frame at now and returns the updated session. Errors
// are reported in the Outcome; the session stays usable.
func (p *Pipeline) Tick(s Session, f frame.Frame, now time.Time) (Session, Outcome) {
	if !s.Running {
		return s, Outcome{Status: StatusStopped}
	}

	r, ok, err := p.selector.Select(f, s.Selected)
	if err != nil {
		p.logger.Debug("region selection failed", "error", err)
		return s, Outcome{Status: StatusScanning, Err: fmt.Errorf("scan: select region: %w", err)}
	}
	if !ok {
		return s, Outcome{Status: StatusScanning}
	}

	out := Outcome{Region: r, HasRegion: true}
	blob := p.selector.Policy() == region.PolicyBlob

	if blob && !region.CloseEnough(r, f.Width, f.Height, p.cfg.ProximityFraction) {
		out.Status = StatusMoveCloser
		return s, out
	}

	// A dropped request leaves the status line as it was.
	gate, admitted := s.Gate.Acquire(now)
	if !admitted {
		return s, out
	}
	s.Gate = gate

	pad := 0.0
	if blob {
		pad = p.cfg.PadFraction
	}

	started := time.Now()
	payload, err := p.decoder.Decode(f, r, pad)
	out.Attempted = true
	out.Latency = time.Since(started)
	if err != nil {
		p.logger.Warn("decode failed", "error", err)
		out.Status = StatusAcquiring
		out.Err = fmt.Errorf("scan: decode: %w", err)
		return s, out
	}
	if payload == nil {
		out.Status = StatusAcquiring
		return s, out
	}

	out.Payload = payload

	dedup, notify := s.Dedup.Observe(payload.Text)
	s.Dedup = dedup
	if !notify {
		return s, out
	}
	out.Status = StatusDecoded

	res := p.graph.Resolve(payload.Text, s.Selected)
	msg := guidance.Build(p.graph, res, s.Selected)
	out.Message = &msg

	p.logger.Info("marker resolved",
		"session", s.ID,
		"code", payload.Text,
		"kind", msg.Kind,
		"selected", s.Selected,
		"decoder", payload.Decoder,
	)
	return s, out
}
