package decode

import (
	"errors"
	"log/slog"
)

// Chain implements Decoder by trying multiple decoders in order.
// The first decoder that finds a payload wins. Errors from one decoder are
// logged and the next one is tried.
type Chain struct {
	decoders []Decoder
	logger   *slog.Logger
	lastHit  string
}

// NewChain creates a decoder chain. At least one decoder is required.
func NewChain(decoders ...Decoder) (*Chain, error) {
	if len(decoders) == 0 {
		return nil, ErrNoDecoders
	}
	return &Chain{
		decoders: decoders,
		logger:   slog.Default().With("component", "decode.chain"),
	}, nil
}

// NewChainWithLogger creates a decoder chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, decoders ...Decoder) (*Chain, error) {
	chain, err := NewChain(decoders...)
	if err != nil {
		return nil, err
	}
	chain.logger = logger.With("component", "decode.chain")
	return chain, nil
}

// Name implements Decoder. It reports the decoder that produced the most
// recent hit, or "chain" before the first one.
func (c *Chain) Name() string {
	if c.lastHit != "" {
		return c.lastHit
	}
	return "chain"
}

// Decode tries each decoder until one finds a payload. It only returns an
// error when every decoder failed with one.
func (c *Chain) Decode(pixels []byte, width, height int) (string, bool, error) {
	var errs []error

	for i, d := range c.decoders {
		text, ok, err := d.Decode(pixels, width, height)
		if err != nil {
			errs = append(errs, err)
			c.logger.Debug("decoder failed, trying next",
				"decoder", d.Name(),
				"index", i,
				"error", err,
			)
			continue
		}
		if ok {
			if i > 0 {
				c.logger.Debug("fallback decoder succeeded", "decoder", d.Name(), "index", i)
			}
			c.lastHit = d.Name()
			return text, true, nil
		}
	}

	if len(errs) == len(c.decoders) {
		return "", false, errors.Join(errs...)
	}
	return "", false, nil
}

// Close closes every decoder in the chain.
func (c *Chain) Close() error {
	var errs []error
	for _, d := range c.decoders {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Verify Chain implements Decoder at compile time.
var _ Decoder = (*Chain)(nil)
