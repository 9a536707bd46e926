package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

const (
	DefaultSize     = 600.0
	DefaultMaxTicks = 3600
	DefaultFPS      = 60
	DefaultTiltStep = 0.25
)

type Config struct {
	Size     float64       `yaml:"size"`
	MaxTicks int           `yaml:"max_ticks"`
	Physics  dynamo.Params `yaml:"physics"`
	Live     LiveConfig    `yaml:"live"`
	Audio    AudioConfig   `yaml:"audio"`
}

// LiveConfig controls the interactive terminal view.
type LiveConfig struct {
	FPS      int     `yaml:"fps"`
	TiltStep float64 `yaml:"tilt_step"`
	MaxTilt  float64 `yaml:"max_tilt"`
	Theme    string  `yaml:"theme"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

func DefaultConfig() *Config {
	return &Config{
		Size:     DefaultSize,
		MaxTicks: DefaultMaxTicks,
		Physics:  dynamo.DefaultParams(),
		Live: LiveConfig{
			FPS:      DefaultFPS,
			TiltStep: DefaultTiltStep,
			MaxTilt:  2.0,
			Theme:    "minimal",
		},
		Audio: AudioConfig{Volume: 0.3},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size=%g", dynamo.ErrInvalidArena, c.Size)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("max_ticks must be positive, got %d", c.MaxTicks)
	}
	if c.Live.FPS <= 0 {
		return fmt.Errorf("live.fps must be positive, got %d", c.Live.FPS)
	}
	return c.Physics.Validate()
}
