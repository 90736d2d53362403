package speech

import (
	"log/slog"
	"time"
)

// TextPlaceholder in Config.Args is replaced by the text to speak. When no
// argument contains it, the text is appended as the last argument.
const TextPlaceholder = "{text}"

// DefaultCooldown is the minimum gap between two accepted utterances.
const DefaultCooldown = 2500 * time.Millisecond

// Config holds speech command configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Command is the TTS executable, looked up in PATH.
	Command string
	Args    []string

	// Timeout bounds a single utterance.
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring speakers.
type Option func(*Config)

// WithCommand sets the TTS executable.
func WithCommand(cmd string) Option {
	return func(c *Config) {
		c.Command = cmd
	}
}

// WithArgs sets the command arguments.
func WithArgs(args ...string) Option {
	return func(c *Config) {
		c.Args = args
	}
}

// WithTimeout sets the per-utterance timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig speaks through espeak at a slightly slow rate.
func DefaultConfig() *Config {
	return &Config{
		Command: "espeak",
		Args:    []string{"-v", "en", "-s", "150", TextPlaceholder},
		Timeout: 10 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Command == "" {
		return ErrNoCommand
	}
	if c.Timeout <= 0 {
		return ErrBadTimeout
	}
	return nil
}
