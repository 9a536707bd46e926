package config

import (
	"sort"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

func preset(mod func(p *dynamo.Params)) *Config {
	cfg := DefaultConfig()
	mod(&cfg.Physics)
	return cfg
}

var Presets = map[string]*Config{
	"sticky": preset(func(p *dynamo.Params) {}),
	"classic": preset(func(p *dynamo.Params) {
		p.Variant = dynamo.VariantClassic
	}),
	"slippery": preset(func(p *dynamo.Params) {
		p.Friction = 0.995
		p.ZoneDamping = 0.97
		p.CaptureVelocity = 1.0
	}),
	"mud": preset(func(p *dynamo.Params) {
		p.Friction = 0.95
		p.BounceEfficiency = 0.6
		p.EscapeForce = 0.8
	}),
	"pinball": preset(func(p *dynamo.Params) {
		p.BounceEfficiency = 1.0
		p.Friction = 0.999
		p.BounceSoundThreshold = 2.0
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
