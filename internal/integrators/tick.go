// Package integrators advances bodies by one fixed unit step.
package integrators

import (
	"math"

	"github.com/san-kum/tiltbox/internal/capture"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
)

// StepResult is what one body's tick produced.
type StepResult struct {
	Events      []dynamo.Event
	Frozen      bool
	Bounced     bool
	BounceSpeed float64
	// Diagnostic is set when the body's quadrant was unknown and quadrant 0
	// was used instead. It never stops the tick.
	Diagnostic error
}

// Tick is the per-body integrator. It is stateless between calls.
type Tick struct {
	params  dynamo.Params
	arena   physics.Arena
	zones   []physics.Zone
	machine *capture.Machine
}

func NewTick(p dynamo.Params, a physics.Arena, zones []physics.Zone, m *capture.Machine) *Tick {
	return &Tick{params: p, arena: a, zones: zones, machine: m}
}

// Step advances body i: gating and friction, capture evaluation at the
// pre-move position, position update, then boundary collision.
func (t *Tick) Step(i int, b *physics.Body, s *capture.State, in dynamo.Input) StepResult {
	var res StepResult

	res.Frozen = t.applyForce(b, in.Force)

	if ev, ok := t.machine.Evaluate(i, s, b.Position, b.Speed()); ok {
		res.Events = append(res.Events, ev)
	}

	b.Position = b.Position.Add(b.Velocity)

	bounds, err := t.arena.QuadrantBounds(b.QuadrantID)
	res.Diagnostic = err
	res.Bounced, res.BounceSpeed = t.collide(b, bounds)
	if res.Bounced && res.BounceSpeed > t.params.BounceSoundThreshold {
		res.Events = append(res.Events, dynamo.Bounce(i, res.BounceSpeed))
	}
	return res
}

// applyForce reports whether the body was frozen in a sticky ring.
func (t *Tick) applyForce(b *physics.Body, f dynamo.Vec2) bool {
	p := t.params
	if p.Variant == dynamo.VariantClassic {
		b.Velocity = b.Velocity.Add(f).Scale(p.Friction)
		for _, z := range t.zones {
			if b.Position.Sub(z.Position).Len() < t.arena.StickyRadius {
				b.Velocity = b.Velocity.Scale(p.ZoneDamping)
				break
			}
		}
		return false
	}

	if !t.machine.InAnyRing(b.Position) {
		b.Velocity = b.Velocity.Add(f).Scale(p.Friction)
		return false
	}
	if f.Len() < p.EscapeForce {
		b.Velocity = dynamo.Vec2{}
		return true
	}
	b.Velocity = b.Velocity.Add(f).Scale(p.Friction * p.ZoneDamping)
	return false
}

// collide handles each edge independently and returns the largest
// pre-reflection component that bounced.
func (t *Tick) collide(b *physics.Body, bounds physics.Bounds) (bool, float64) {
	e := t.params.BounceEfficiency
	r := b.Radius
	bounced, peak := false, 0.0

	hit := func(v *float64) {
		bounced = true
		peak = math.Max(peak, math.Abs(*v))
		*v = -*v * e
	}

	if b.Position.X-r < bounds.MinX {
		b.Position.X = bounds.MinX + r
		hit(&b.Velocity.X)
	}
	if b.Position.X+r > bounds.MaxX {
		b.Position.X = bounds.MaxX - r
		hit(&b.Velocity.X)
	}
	if b.Position.Y-r < bounds.MinY {
		b.Position.Y = bounds.MinY + r
		hit(&b.Velocity.Y)
	}
	if b.Position.Y+r > bounds.MaxY {
		b.Position.Y = bounds.MaxY - r
		hit(&b.Velocity.Y)
	}
	return bounced, peak
}
