package dynamo

import (
	"fmt"
	"math"
	"strings"
)

// Vec2 is a point or direction in arena coordinates (y grows downward).
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Variant selects between the two zone behaviours.
type Variant string

const (
	// VariantSticky freezes bodies resting in a target ring until pushed hard
	// enough, and counts the center zone as a target.
	VariantSticky Variant = "sticky"
	// VariantClassic applies force and friction unconditionally with extra
	// damping near any zone; the center zone is decorative.
	VariantClassic Variant = "classic"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantSticky, "":
		return VariantSticky, nil
	case VariantClassic:
		return VariantClassic, nil
	}
	return "", fmt.Errorf("unknown variant: %s", s)
}

// Params holds the physical constants of one engine.
type Params struct {
	Variant              Variant `yaml:"variant" json:"variant"`
	WallThickness        float64 `yaml:"wall_thickness" json:"wall_thickness"`
	BodyRadiusFactor     float64 `yaml:"body_radius_factor" json:"body_radius_factor"`
	StickyRadiusFactor   float64 `yaml:"sticky_radius_factor" json:"sticky_radius_factor"`
	CaptureRadiusFactor  float64 `yaml:"capture_radius_factor" json:"capture_radius_factor"`
	CaptureVelocity      float64 `yaml:"capture_velocity" json:"capture_velocity"`
	EscapeForce          float64 `yaml:"escape_force" json:"escape_force"`
	BounceEfficiency     float64 `yaml:"bounce_efficiency" json:"bounce_efficiency"`
	Friction             float64 `yaml:"friction" json:"friction"`
	ZoneDamping          float64 `yaml:"zone_damping" json:"zone_damping"`
	GravityBias          float64 `yaml:"gravity_bias" json:"gravity_bias"`
	BounceSoundThreshold float64 `yaml:"bounce_sound_threshold" json:"bounce_sound_threshold"`
}

func DefaultParams() Params {
	return Params{
		Variant:              VariantSticky,
		WallThickness:        4,
		BodyRadiusFactor:     0.025,
		StickyRadiusFactor:   0.1,
		CaptureRadiusFactor:  0.5,
		CaptureVelocity:      1.5,
		EscapeForce:          0.5,
		BounceEfficiency:     0.9,
		Friction:             0.99,
		ZoneDamping:          0.9,
		GravityBias:          0.5,
		BounceSoundThreshold: 1.0,
	}
}

// Validate reports the first constant outside its usable range.
func (p Params) Validate() error {
	if _, err := ParseVariant(string(p.Variant)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	checks := []struct {
		name   string
		value  float64
		lo, hi float64
	}{
		{"wall_thickness", p.WallThickness, 0, math.Inf(1)},
		{"body_radius_factor", p.BodyRadiusFactor, 1e-9, 0.25},
		{"sticky_radius_factor", p.StickyRadiusFactor, 1e-9, 0.5},
		{"capture_radius_factor", p.CaptureRadiusFactor, 1e-9, 1},
		{"capture_velocity", p.CaptureVelocity, 0, math.Inf(1)},
		{"escape_force", p.EscapeForce, 0, math.Inf(1)},
		{"bounce_efficiency", p.BounceEfficiency, 0, 1},
		{"friction", p.Friction, 0, 1},
		{"zone_damping", p.ZoneDamping, 0, 1},
		{"bounce_sound_threshold", p.BounceSoundThreshold, 0, math.Inf(1)},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < c.lo || c.value > c.hi {
			return &ParamError{Name: c.name, Value: c.value}
		}
	}
	return nil
}

// Set assigns a numeric constant by its yaml name.
func (p *Params) Set(name string, v float64) error {
	fields := map[string]*float64{
		"wall_thickness":         &p.WallThickness,
		"body_radius_factor":     &p.BodyRadiusFactor,
		"sticky_radius_factor":   &p.StickyRadiusFactor,
		"capture_radius_factor":  &p.CaptureRadiusFactor,
		"capture_velocity":       &p.CaptureVelocity,
		"escape_force":           &p.EscapeForce,
		"bounce_efficiency":      &p.BounceEfficiency,
		"friction":               &p.Friction,
		"zone_damping":           &p.ZoneDamping,
		"gravity_bias":           &p.GravityBias,
		"bounce_sound_threshold": &p.BounceSoundThreshold,
	}
	f, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParams, name)
	}
	*f = v
	return nil
}

// Input is the force applied to every body for one tick, already in arena units.
type Input struct {
	Force Vec2
}

// RestInput is the input used when no tilt or key is active.
func RestInput(p Params) Input {
	return Input{Force: Vec2{0, p.GravityBias}}
}

type EventKind int

const (
	EventBounce EventKind = iota
	EventCapture
	EventEscape
	EventWin
)

func (k EventKind) String() string {
	switch k {
	case EventBounce:
		return "bounce"
	case EventCapture:
		return "capture"
	case EventEscape:
		return "escape"
	case EventWin:
		return "win"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a discrete tick output. Body and Zone are -1 when not applicable;
// Speed is only set for bounces.
type Event struct {
	Kind  EventKind
	Body  int
	Zone  int
	Speed float64
}

func Bounce(body int, speed float64) Event {
	return Event{Kind: EventBounce, Body: body, Zone: -1, Speed: speed}
}

func Capture(body, zone int) Event {
	return Event{Kind: EventCapture, Body: body, Zone: zone}
}

func Escape(body, zone int) Event {
	return Event{Kind: EventEscape, Body: body, Zone: zone}
}

func Win() Event {
	return Event{Kind: EventWin, Body: -1, Zone: -1}
}

func (e Event) String() string {
	switch e.Kind {
	case EventBounce:
		return fmt.Sprintf("bounce body=%d speed=%.3f", e.Body, e.Speed)
	case EventCapture, EventEscape:
		return fmt.Sprintf("%s body=%d zone=%d", e.Kind, e.Body, e.Zone)
	}
	return e.Kind.String()
}

// Observer receives every event once, after the tick that produced it.
type Observer interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) OnEvent(ev Event) { f(ev) }
