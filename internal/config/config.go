// Package config loads sandbox settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ASSEMBLY_SIM_"

// Config holds the sandbox settings.
type Config struct {
	// TickRate is the number of simulation ticks per second.
	TickRate int `yaml:"tick_rate"`
	// Ticks to run; zero runs until interrupted.
	Ticks int `yaml:"ticks"`
	// LogEvery prints a summary every n ticks; zero disables it.
	LogEvery int `yaml:"log_every"`

	Gravity       float64 `yaml:"gravity"`
	Drag          float64 `yaml:"drag"`
	GroundDrag    float64 `yaml:"ground_drag"`
	ContactMemory int     `yaml:"contact_memory"`

	// Materials is a YAML material table; empty uses the built-in one.
	Materials      string `yaml:"materials"`
	WatchMaterials bool   `yaml:"watch_materials"`

	// SyncURL is the websocket endpoint motion packets are sent to.
	SyncURL   string `yaml:"sync_url"`
	WAVOutput string `yaml:"wav_output"`
	Debug     bool   `yaml:"debug"`

	Scene Scene `yaml:"scene"`
}

// Scene tunes the demo scene.
type Scene struct {
	FerrySpeed  float64 `yaml:"ferry_speed"`
	FerryRange  float64 `yaml:"ferry_range"`
	SpinRate    float64 `yaml:"spin_rate"`
	RampTilt    float64 `yaml:"ramp_tilt"`
	Items       int     `yaml:"items"`
	Simplify    bool    `yaml:"simplify"`
	RemoteEchos int     `yaml:"remote_echos"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		TickRate:      20,
		Ticks:         400,
		LogEvery:      20,
		Gravity:       0.08,
		Drag:          0.98,
		GroundDrag:    0.6,
		ContactMemory: 20,
		Scene: Scene{
			FerrySpeed:  0.1,
			FerryRange:  6,
			SpinRate:    0.03,
			RampTilt:    0.3,
			Items:       4,
			Simplify:    true,
			RemoteEchos: 1,
		},
	}
}

// Load reads settings from filename on top of the defaults and applies
// environment overrides. An empty filename skips the file.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("config: load %s: %w", filename, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", filename, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from ASSEMBLY_SIM_* variables. Malformed
// values are ignored.
func (c *Config) ApplyEnv() {
	envInt("TICK_RATE", &c.TickRate)
	envInt("TICKS", &c.Ticks)
	envInt("LOG_EVERY", &c.LogEvery)
	envInt("CONTACT_MEMORY", &c.ContactMemory)
	envFloat("GRAVITY", &c.Gravity)
	envFloat("DRAG", &c.Drag)
	envString("MATERIALS", &c.Materials)
	envBool("WATCH_MATERIALS", &c.WatchMaterials)
	envString("SYNC_URL", &c.SyncURL)
	envString("WAV_OUTPUT", &c.WAVOutput)
	envBool("DEBUG", &c.Debug)
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.TickRate)
	case c.Ticks < 0:
		return fmt.Errorf("config: ticks must not be negative, got %d", c.Ticks)
	case c.ContactMemory < 0:
		return fmt.Errorf("config: contact_memory must not be negative, got %d", c.ContactMemory)
	case c.Drag <= 0 || c.Drag > 1 || c.GroundDrag <= 0 || c.GroundDrag > 1:
		return errors.New("config: drag factors must be in (0, 1]")
	case c.WatchMaterials && c.Materials == "":
		return errors.New("config: watch_materials needs a materials file")
	}
	return nil
}

// TickDuration returns the wall-clock length of one tick.
func (c *Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func envString(name string, dst *string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
