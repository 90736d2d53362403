package camera

import (
	"fmt"
	"sync"
)

// Update is a partial configuration change as posted by the dashboard.
// Nil fields keep their current value.
type Update struct {
	Preset    string  `json:"preset,omitempty"`
	Device    *string `json:"device,omitempty"`
	Width     *int    `json:"width,omitempty"`
	Height    *int    `json:"height,omitempty"`
	Framerate *int    `json:"framerate,omitempty"`
	Loop      *bool   `json:"loop,omitempty"`
}

// Apply returns cfg with u applied. A preset is applied first and keeps
// the current device; explicit fields then override it.
func (u Update) Apply(cfg Config) (Config, error) {
	if u.Preset != "" {
		p, ok := LookupPreset(u.Preset)
		if !ok {
			return cfg, fmt.Errorf("camera: unknown preset %q", u.Preset)
		}
		p.Device, p.Loop = cfg.Device, cfg.Loop
		cfg = p
	}
	if u.Device != nil {
		cfg.Device = *u.Device
	}
	if u.Width != nil {
		cfg.Width = *u.Width
	}
	if u.Height != nil {
		cfg.Height = *u.Height
	}
	if u.Framerate != nil {
		cfg.Framerate = *u.Framerate
	}
	if u.Loop != nil {
		cfg.Loop = *u.Loop
	}
	return cfg, nil
}

// Manager owns the active capture configuration. Changes are applied
// through a callback, typically reopening the source, and are only kept
// when the callback succeeds.
type Manager struct {
	mu     sync.Mutex
	config Config
	apply  func(Config) error
}

// NewManager starts from cfg. apply may be nil.
func NewManager(cfg Config, apply func(Config) error) *Manager {
	return &Manager{config: cfg, apply: apply}
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set validates cfg and applies it. Reconfigurations are serialized.
func (m *Manager) Set(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("camera: invalid config: %v", errs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.apply != nil {
		if err := m.apply(cfg); err != nil {
			return fmt.Errorf("camera: apply config: %w", err)
		}
	}
	m.config = cfg
	return nil
}

// Update applies a partial change and returns the resulting configuration.
func (m *Manager) Update(u Update) (Config, error) {
	next, err := u.Apply(m.Config())
	if err != nil {
		return m.Config(), err
	}
	if err := m.Set(next); err != nil {
		return m.Config(), err
	}
	return next, nil
}
