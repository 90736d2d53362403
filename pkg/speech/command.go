package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Command speaks by running a TTS executable once per utterance.
type Command struct {
	cfg    *Config
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewCommand creates a command speaker. The executable must be in PATH.
func NewCommand(opts ...Option) (*Command, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		return nil, WrapError(cfg.Command, err)
	}

	return &Command{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "speech.command", "command", cfg.Command),
	}, nil
}

// Speak runs the command for text.
func (c *Command) Speak(ctx context.Context, text string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.cfg.Command, c.args(text)...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return WrapError(c.cfg.Command, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())))
	}

	c.logger.Debug("spoke", "chars", len(text), "duration", time.Since(start))
	return nil
}

// Close marks the speaker closed. Utterances already running finish.
func (c *Command) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Command) args(text string) []string {
	args := make([]string, 0, len(c.cfg.Args)+1)
	replaced := false
	for _, a := range c.cfg.Args {
		if strings.Contains(a, TextPlaceholder) {
			a = strings.ReplaceAll(a, TextPlaceholder, text)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, text)
	}
	return args
}

var _ Speaker = (*Command)(nil)
