package integrators

import (
	"errors"
	"testing"

	"github.com/san-kum/tiltbox/internal/capture"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
)

func newTestTick(t *testing.T, v dynamo.Variant) (*Tick, dynamo.Params) {
	t.Helper()
	p := dynamo.DefaultParams()
	p.Variant = v
	a, err := physics.NewArena(600, p)
	if err != nil {
		t.Fatalf("arena: %v", err)
	}
	zones := physics.ZonesOf(a, v)
	return NewTick(p, a, zones, capture.NewMachine(a, zones, p)), p
}

func body(x, y, vx, vy float64) physics.Body {
	return physics.Body{
		Position: dynamo.Vec2{X: x, Y: y},
		Velocity: dynamo.Vec2{X: vx, Y: vy},
		Radius:   15,
	}
}

var noForce = dynamo.Input{}

func TestStep_BounceReflectsNinetyPercent(t *testing.T) {
	tick, _ := newTestTick(t, dynamo.VariantSticky)
	b := body(150, 280, 0, 5)
	s := capture.Initial()

	res := tick.Step(0, &b, &s, noForce)

	pre := 5 * 0.99
	if !res.Bounced {
		t.Fatal("expected a bounce off the bottom inset edge")
	}
	if b.Velocity.Y != -pre*0.9 {
		t.Errorf("vy = %v, want %v", b.Velocity.Y, -pre*0.9)
	}
	if b.Position.Y != 298-15 {
		t.Errorf("y = %v, want clamped to %v", b.Position.Y, 298-15)
	}
	if res.BounceSpeed != pre {
		t.Errorf("bounce speed = %v, want %v", res.BounceSpeed, pre)
	}
	if len(res.Events) != 1 || res.Events[0].Kind != dynamo.EventBounce || res.Events[0].Speed != pre {
		t.Errorf("expected one bounce event, got %v", res.Events)
	}
}

func TestStep_QuietBounceHasNoEvent(t *testing.T) {
	tick, _ := newTestTick(t, dynamo.VariantSticky)
	b := body(150, 282.5, 0, 0.8)
	s := capture.Initial()

	res := tick.Step(0, &b, &s, noForce)
	if !res.Bounced {
		t.Fatal("expected a bounce")
	}
	if len(res.Events) != 0 {
		t.Errorf("bounce under threshold should be silent, got %v", res.Events)
	}
}

func TestStep_CornerClip(t *testing.T) {
	tick, _ := newTestTick(t, dynamo.VariantSticky)
	// Bottom-left corner of quadrant 0, away from every zone.
	b := body(20, 280, -6, 4)
	s := capture.Initial()

	res := tick.Step(0, &b, &s, noForce)
	if !res.Bounced {
		t.Fatal("expected a bounce")
	}
	if b.Velocity.X != -(-6*0.99)*0.9 || b.Velocity.Y != -(4*0.99)*0.9 {
		t.Errorf("both components should reflect, got %v", b.Velocity)
	}
	if b.Position != (dynamo.Vec2{X: 15, Y: 283}) {
		t.Errorf("position should be clamped on both axes, got %v", b.Position)
	}
	if res.BounceSpeed != 6*0.99 {
		t.Errorf("bounce speed should be the larger component, got %v", res.BounceSpeed)
	}
}

func TestStep_FrictionOnlyDecay(t *testing.T) {
	tick, _ := newTestTick(t, dynamo.VariantSticky)
	b := body(150, 150, 1.2, -0.7)
	s := capture.Initial()

	prev := b.Speed()
	for i := 0; i < 500; i++ {
		tick.Step(0, &b, &s, noForce)
		if b.Speed() > prev {
			t.Fatalf("tick %d: speed rose from %v to %v", i, prev, b.Speed())
		}
		prev = b.Speed()
	}

	rest := body(150, 150, 0, 0)
	tick.Step(0, &rest, &s, noForce)
	if rest.Speed() != 0 || rest.Position != (dynamo.Vec2{X: 150, Y: 150}) {
		t.Errorf("resting body moved: %+v", rest)
	}
}

func TestStep_FreezeGate(t *testing.T) {
	tick, p := newTestTick(t, dynamo.VariantSticky)

	t.Run("weak push freezes", func(t *testing.T) {
		b := body(30, 30, 1, 1)
		s := capture.Initial()
		res := tick.Step(0, &b, &s, dynamo.Input{Force: dynamo.Vec2{X: 0.3, Y: 0.2}})
		if !res.Frozen || b.Velocity != (dynamo.Vec2{}) {
			t.Errorf("expected frozen body, got %+v frozen=%v", b.Velocity, res.Frozen)
		}
		if b.Position != (dynamo.Vec2{X: 30, Y: 30}) {
			t.Errorf("frozen body moved to %v", b.Position)
		}
	})

	t.Run("strong push applies zone damping", func(t *testing.T) {
		b := body(30, 30, 0, 0)
		s := capture.Initial()
		f := dynamo.Vec2{X: 0.6, Y: 0}
		res := tick.Step(0, &b, &s, dynamo.Input{Force: f})
		want := f.Scale(p.Friction * p.ZoneDamping)
		if res.Frozen || b.Velocity != want {
			t.Errorf("velocity %v, want %v", b.Velocity, want)
		}
	})
}

func TestStep_ClassicDampsWithoutFreezing(t *testing.T) {
	tick, p := newTestTick(t, dynamo.VariantClassic)
	b := body(30, 30, 0, 0)
	s := capture.Initial()
	f := dynamo.Vec2{X: 0.1, Y: 0}

	res := tick.Step(0, &b, &s, dynamo.Input{Force: f})
	if res.Frozen {
		t.Fatal("classic variant has no freeze gate")
	}
	want := f.Scale(p.Friction).Scale(p.ZoneDamping)
	if b.Velocity != want {
		t.Errorf("velocity %v, want %v", b.Velocity, want)
	}
}

func TestStep_CaptureUsesPreMovePosition(t *testing.T) {
	tick, _ := newTestTick(t, dynamo.VariantClassic)
	// d=31.1 before the move, 29.8 after: just outside the inner disk.
	b := body(22, 22, -1, -1)
	s := capture.Initial()

	res := tick.Step(0, &b, &s, noForce)
	if len(res.Events) != 0 || s.Captured {
		t.Fatalf("capture must use the pre-move position, got %v", res.Events)
	}

	res = tick.Step(0, &b, &s, noForce)
	if len(res.Events) != 1 || res.Events[0].Kind != dynamo.EventCapture || res.Events[0].Zone != 0 {
		t.Errorf("expected capture at zone 0 on the next tick, got %v", res.Events)
	}
}

func TestStep_UnknownQuadrantFallsBack(t *testing.T) {
	tick, _ := newTestTick(t, dynamo.VariantSticky)
	b := body(150, 150, 0, 0)
	b.QuadrantID = 7
	s := capture.Initial()

	res := tick.Step(0, &b, &s, dynamo.Input{Force: dynamo.Vec2{X: 0, Y: 0.5}})
	if !errors.Is(res.Diagnostic, dynamo.ErrQuadrantOutOfRange) {
		t.Errorf("expected quadrant diagnostic, got %v", res.Diagnostic)
	}
	if b.Position.Y <= 150 {
		t.Error("body should still move under the fallback bounds")
	}
}
