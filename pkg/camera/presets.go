package camera

// Preset names.
const (
	PresetDefault = "default"
	PresetBattery = "battery"
	PresetFar     = "far"
	PresetDetail  = "detail"
)

// Preset is a named capture setup with a short note on when to use it.
type Preset struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Config  Config `json:"config"`
}

// Presets returns the built-in presets in menu order.
func Presets() []Preset {
	return []Preset{
		{PresetDefault, "Handheld scanning at arm's length", DefaultConfig()},
		{PresetBattery, "Half resolution and frame rate for small boards", batteryConfig()},
		{PresetFar, "720p so markers resolve from across a corridor", farConfig()},
		{PresetDetail, "1080p at 15 fps for small printed labels and OCR", detailConfig()},
	}
}

// PresetNames returns the preset names in menu order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// LookupPreset returns the configuration of a named preset.
func LookupPreset(name string) (Config, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p.Config, true
		}
	}
	return Config{}, false
}

func batteryConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 320, 240
	cfg.Framerate = 15
	return cfg
}

func farConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 1280, 720
	return cfg
}

func detailConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 1920, 1080
	cfg.Framerate = 15
	return cfg
}
