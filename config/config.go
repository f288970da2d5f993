package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerLaunchpadPro  ControllerType = "launchpad-pro"
)

// ControllerConfig defines a saved front panel controller
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// EngineConfig sets up the shift register and its coin toss
type EngineConfig struct {
	Seed        int64   `json:"seed,omitempty"`        // 0 picks one from the clock
	ResetPolicy string  `json:"resetPolicy,omitempty"` // "clock" or "immediate"
	ThreshLow   float64 `json:"threshLow,omitempty"`
	ThreshHigh  float64 `json:"threshHigh,omitempty"`
	ThreshCV    float64 `json:"threshCV,omitempty"`
	Bias        float64 `json:"bias"`    // starting position of the probability knob
	Octaves     int     `json:"octaves"` // fader range, 1-3
}

// TimingConfig holds the service rate and gesture windows
type TimingConfig struct {
	ServiceHz     int `json:"serviceHz"`
	TriggerMs     int `json:"triggerMs"`
	HoldMs        int `json:"holdMs"`
	DoubleClickMs int `json:"doubleClickMs"`
	InternalBPM   int `json:"internalBPM,omitempty"` // 0 = wait for external clock
}

// ClockConfig is the MIDI clock input
type ClockConfig struct {
	PortName string `json:"portName,omitempty"`
	Divider  int    `json:"divider"` // MIDI clock ticks per step
}

// OutputConfig defines the MIDI output
type OutputConfig struct {
	PortName     string   `json:"portName,omitempty"`
	Channel      int      `json:"channel"` // 1-16, triggers and CV
	TriggerNotes [8]uint8 `json:"triggerNotes"`
	CVControls   [4]uint8 `json:"cvControls"`
	NoteChannel  int      `json:"noteChannel,omitempty"` // pitch from CV A, 0 = off
	BaseNote     uint8    `json:"baseNote"`
	DrunkChannel int      `json:"drunkChannel,omitempty"` // random walk melody, 0 = off
	ScaleName    string   `json:"scaleName,omitempty"`    // one of Scales, overrides Scale
	Scale        [8]uint8 `json:"scale"`
}

// SurfaceConfig maps a knob box onto the panel controls
type SurfaceConfig struct {
	PortName string   `json:"portName,omitempty"`
	BiasCC   uint8    `json:"biasCC"`
	CVCC     uint8    `json:"cvCC"`
	FaderCCs [8]uint8 `json:"faderCCs"`
}

// SerialConfig is the link to the analog output board
type SerialConfig struct {
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`
}

// StoreConfig controls bank persistence
type StoreConfig struct {
	Autosave bool   `json:"autosave"`
	Dir      string `json:"dir,omitempty"` // defaults to ~/.config/go-turing/banks
	DelayMs  int    `json:"delayMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	Engine      EngineConfig       `json:"engine"`
	Timing      TimingConfig       `json:"timing"`
	Clock       ClockConfig        `json:"clock"`
	Output      OutputConfig       `json:"output"`
	Surface     SurfaceConfig      `json:"surface"`
	Serial      SerialConfig       `json:"serial,omitempty"`
	Store       StoreConfig        `json:"store"`
	UI          UIConfig           `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		Engine: EngineConfig{
			ResetPolicy: "clock",
			Bias:        0.5,
			Octaves:     1,
		},
		Timing: TimingConfig{
			ServiceHz:     1000,
			TriggerMs:     10,
			HoldMs:        600,
			DoubleClickMs: 250,
		},
		Clock: ClockConfig{
			Divider: 6, // 24 ppqn -> sixteenths
		},
		Output: OutputConfig{
			Channel: 10,
			// GM drum map: kick, snare, closed hat, open hat, low tom, high tom, clap, rim
			TriggerNotes: [8]uint8{36, 38, 42, 46, 45, 50, 39, 37},
			CVControls:   [4]uint8{20, 21, 22, 23},
			BaseNote:     48,
			Scale:        [8]uint8{0, 2, 3, 5, 7, 8, 10, 12}, // natural minor
		},
		Surface: SurfaceConfig{
			BiasCC:   1,
			CVCC:     2,
			FaderCCs: [8]uint8{70, 71, 72, 73, 74, 75, 76, 77},
		},
		Serial: SerialConfig{
			Baud: 115200,
		},
		Store: StoreConfig{
			Autosave: true,
			DelayMs:  2000,
		},
		UI: UIConfig{
			Palette: "plasma",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-turing"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found. Fields
// missing from the file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AllowController reports whether a detected controller should be used.
// Unknown controllers are used; known ones only with AutoConnect set.
func (c *Config) AllowController(portName string) bool {
	if ctrl := c.FindController(portName); ctrl != nil {
		return ctrl.AutoConnect
	}
	return true
}
