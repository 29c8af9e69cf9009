package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backend selects how the output port is reached.
type Backend string

const (
	BackendRtMIDI  Backend = "rtmidi"  // system MIDI ports via rtmidi
	BackendSerial  Backend = "serial"  // raw MIDI bytes over a serial device
	BackendVirtual Backend = "virtual" // a virtual rtmidi port others subscribe to
)

// OutputConfig defines the MIDI output
type OutputConfig struct {
	Backend     Backend `json:"backend"`
	PortName    string  `json:"portName,omitempty"`    // preferred port, substring match
	SerialPort  string  `json:"serialPort,omitempty"`  // skips serial enumeration when set
	Baud        int     `json:"baud,omitempty"`
	VirtualName string  `json:"virtualName,omitempty"`
}

// VoicingConfig maps walls to notes
type VoicingConfig struct {
	Right         int `json:"right"`
	Left          int `json:"left"`
	Top           int `json:"top"`
	Bottom        int `json:"bottom"`
	Velocity      int `json:"velocity"`
	MinDurationMs int `json:"minDurationMs"`
	MaxDurationMs int `json:"maxDurationMs"`
}

// SimConfig controls the ball simulation
type SimConfig struct {
	FPS    int     `json:"fps"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Seed   uint64  `json:"seed,omitempty"` // 0 = random
	Intro  bool    `json:"intro"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette  string `json:"palette,omitempty"` // path to a GIMP .gpl file
	Headless bool   `json:"headless,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Output  OutputConfig  `json:"output"`
	Voicing VoicingConfig `json:"voicing"`
	Sim     SimConfig     `json:"sim"`
	UI      UIConfig      `json:"ui,omitempty"`
	Debug   bool          `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Backend:     BackendRtMIDI,
			Baud:        31250,
			VirtualName: "go-bounce",
		},
		Voicing: VoicingConfig{
			Right:         67,
			Left:          71,
			Top:           60,
			Bottom:        64,
			Velocity:      100,
			MinDurationMs: 300,
			MaxDurationMs: 2000,
		},
		Sim: SimConfig{
			FPS:    60,
			Width:  800,
			Height: 600,
			Intro:  true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-bounce"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the pipeline cannot use.
func (c *Config) Validate() error {
	switch c.Output.Backend {
	case BackendRtMIDI, BackendSerial, BackendVirtual:
	default:
		return fmt.Errorf("output.backend %q: want rtmidi, serial or virtual", c.Output.Backend)
	}
	if c.Output.Backend == BackendSerial && c.Output.Baud <= 0 {
		return fmt.Errorf("output.baud %d must be positive", c.Output.Baud)
	}
	if c.Output.Backend == BackendVirtual && c.Output.VirtualName == "" {
		return fmt.Errorf("output.virtualName is required for the virtual backend")
	}

	v := c.Voicing
	for name, p := range map[string]int{"right": v.Right, "left": v.Left, "top": v.Top, "bottom": v.Bottom} {
		if p < 0 || p > 127 {
			return fmt.Errorf("voicing.%s pitch %d not in 0-127", name, p)
		}
	}
	if v.Velocity < 1 || v.Velocity > 127 {
		return fmt.Errorf("voicing.velocity %d not in 1-127", v.Velocity)
	}
	if v.MinDurationMs < 0 || v.MaxDurationMs <= v.MinDurationMs {
		return fmt.Errorf("voicing duration range [%d, %d) ms is empty", v.MinDurationMs, v.MaxDurationMs)
	}

	if c.Sim.FPS < 1 || c.Sim.FPS > 240 {
		return fmt.Errorf("sim.fps %d not in 1-240", c.Sim.FPS)
	}
	if c.Sim.Width <= 0 || c.Sim.Height <= 0 {
		return fmt.Errorf("sim arena %gx%g must be positive", c.Sim.Width, c.Sim.Height)
	}
	return nil
}

// MaxNoteDuration is the longest a note can sound, used to bound shutdown.
func (c *Config) MaxNoteDuration() time.Duration {
	return time.Duration(c.Voicing.MaxDurationMs) * time.Millisecond
}
