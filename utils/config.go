package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the complete transmitter configuration.
type Config struct {
	Link     LinkConfig          `yaml:"link"`
	Limits   Limits              `yaml:"limits"`
	Profiles []ControllerProfile `yaml:"profiles"`
}

// LinkConfig holds the transport and timing settings.
type LinkConfig struct {
	// Port is a serial device path, socket://host:port or can://iface.
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baudRate"`
	// DestinationNode, when set, is written to the XBee with ATDN before
	// the first frame.
	DestinationNode string `yaml:"destinationNode"`
	// TickPeriodMs is the loop period. Defaults to 10 ms (100 Hz) although
	// the link is usually described as 50 Hz.
	TickPeriodMs int `yaml:"tickPeriodMs"`
	HeartbeatSec int `yaml:"heartbeatSec"`
	// SendLateFrames transmits even when a tick overran its period. Off by
	// default: an overrunning tick sends nothing.
	SendLateFrames bool   `yaml:"sendLateFrames"`
	CANID          uint32 `yaml:"canId"`
}

func (l LinkConfig) TickPeriod() time.Duration {
	return time.Duration(l.TickPeriodMs) * time.Millisecond
}

func (l LinkConfig) Heartbeat() time.Duration {
	return time.Duration(l.HeartbeatSec) * time.Second
}

const DefaultProfileName = "Sony PLAYSTATION(R)3 Controller"

// Load builds the configuration from defaults, the optional YAML file at
// path, and JOYLINK_* environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := getDefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func getDefaultConfig() *Config {
	return &Config{
		Link: LinkConfig{
			Port:            "socket://192.168.1.101:9750",
			BaudRate:        38400,
			DestinationNode: "",
			TickPeriodMs:    10,
			HeartbeatSec:    5,
			SendLateFrames:  false,
			CANID:           0x200,
		},
		Limits:   DefaultLimits(),
		Profiles: []ControllerProfile{defaultProfile()},
	}
}

func defaultProfile() ControllerProfile {
	return ControllerProfile{
		Name: DefaultProfileName,
		Axes: []AxisBinding{
			{Axis: 0, Channel: Yaw, Multiplier: 125, Offset: 125},
			{Axis: 2, Channel: Roll, Multiplier: 125, Offset: 125},
			{Axis: 3, Channel: Pitch, Multiplier: 125, Offset: 125},
			{Axis: 13, Channel: Throttle, Multiplier: 250, Offset: 250},
		},
		Buttons: []ButtonBinding{
			{Button: 0, Effect: EffectDisable, Channel: Aux2},              // trigger
			{Button: 3, Effect: EffectEnable, Channel: Aux2},               // square
			{Button: 8, Effect: EffectTrim, Channel: Throttle, Step: -5},   // left trigger
			{Button: 9, Effect: EffectTrim, Channel: Throttle, Step: 5},    // right trigger
			{Button: 10, Effect: EffectTrim, Channel: Throttle, Step: -25}, // left bumper
			{Button: 11, Effect: EffectTrim, Channel: Throttle, Step: 25},  // right bumper
		},
	}
}

// loadFromFile overlays the YAML file onto cfg. A profiles list in the file
// replaces the built-in profiles.
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if port := os.Getenv("JOYLINK_PORT"); port != "" {
		cfg.Link.Port = port
	}
	if node := os.Getenv("JOYLINK_NODE"); node != "" {
		cfg.Link.DestinationNode = node
	}
	if baud := os.Getenv("JOYLINK_BAUD"); baud != "" {
		v, err := strconv.Atoi(baud)
		if err != nil {
			return fmt.Errorf("invalid JOYLINK_BAUD %q: %w", baud, err)
		}
		cfg.Link.BaudRate = v
	}
	if tick := os.Getenv("JOYLINK_TICK_MS"); tick != "" {
		v, err := strconv.Atoi(tick)
		if err != nil {
			return fmt.Errorf("invalid JOYLINK_TICK_MS %q: %w", tick, err)
		}
		cfg.Link.TickPeriodMs = v
	}
	return nil
}

// Validate checks the link settings, the limits and every profile.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Link.Port) == "" {
		return fmt.Errorf("link port must be set")
	}
	if c.Link.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Link.BaudRate)
	}
	if c.Link.TickPeriodMs <= 0 || c.Link.TickPeriodMs > 1000 {
		return fmt.Errorf("tick period %d ms is outside reasonable range [1, 1000]", c.Link.TickPeriodMs)
	}
	if c.Link.HeartbeatSec <= 0 {
		return fmt.Errorf("invalid heartbeat interval %d s", c.Link.HeartbeatSec)
	}
	if c.Link.CANID > 0x7FF {
		return fmt.Errorf("can id 0x%X does not fit an 11-bit identifier", c.Link.CANID)
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one controller profile must be configured")
	}

	names := make(map[string]bool, len(c.Profiles))
	for i := range c.Profiles {
		p := &c.Profiles[i]
		if names[p.Name] {
			return fmt.Errorf("duplicate profile %q", p.Name)
		}
		names[p.Name] = true
		if err := p.Validate(c.Limits); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) ProfileSet() *ProfileSet {
	return NewProfileSet(c.Profiles)
}
