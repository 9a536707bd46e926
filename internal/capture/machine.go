// Package capture tracks, per body, whether it is trapped in a target zone.
package capture

import (
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
)

// State is one body's capture latch. Captured == false implies ZoneID == NoZone.
type State struct {
	Captured bool `json:"captured"`
	ZoneID   int  `json:"zone"`
}

func Initial() State {
	return State{ZoneID: physics.NoZone}
}

// NewStates returns n released states.
func NewStates(n int) []State {
	states := make([]State, n)
	for i := range states {
		states[i] = Initial()
	}
	return states
}

// Machine evaluates capture transitions against a fixed zone list.
type Machine struct {
	arena    physics.Arena
	targets  []physics.Zone
	maxSpeed float64
}

func NewMachine(a physics.Arena, zones []physics.Zone, p dynamo.Params) *Machine {
	return &Machine{
		arena:    a,
		targets:  physics.Targets(zones),
		maxSpeed: p.CaptureVelocity,
	}
}

// Holds reports whether a body at pos moving at speed satisfies the capture
// predicate for z: inside the outer ring, inside the inner disk, and slow.
func (m *Machine) Holds(pos dynamo.Vec2, speed float64, z physics.Zone) bool {
	d, ring := m.arena.InOuterRing(pos, z)
	return ring && speed < m.maxSpeed && d < m.arena.CaptureRadius
}

// InAnyRing reports whether pos lies in the outer ring of some target zone.
func (m *Machine) InAnyRing(pos dynamo.Vec2) bool {
	for _, z := range m.targets {
		if _, ok := m.arena.InOuterRing(pos, z); ok {
			return true
		}
	}
	return false
}

// Evaluate applies at most one transition to s and returns the event it
// produced, if any. A captured body is only checked against its own zone;
// leaving it is an escape and no other zone is considered in the same tick.
// A free body is captured by the first satisfying zone in construction order.
func (m *Machine) Evaluate(body int, s *State, pos dynamo.Vec2, speed float64) (dynamo.Event, bool) {
	if s.Captured {
		z, ok := m.zone(s.ZoneID)
		if ok && m.Holds(pos, speed, z) {
			return dynamo.Event{}, false
		}
		ev := dynamo.Escape(body, s.ZoneID)
		*s = Initial()
		return ev, true
	}

	for _, z := range m.targets {
		if m.Holds(pos, speed, z) {
			s.Captured, s.ZoneID = true, z.ID
			return dynamo.Capture(body, z.ID), true
		}
	}
	return dynamo.Event{}, false
}

func (m *Machine) zone(id int) (physics.Zone, bool) {
	for _, z := range m.targets {
		if z.ID == id {
			return z, true
		}
	}
	return physics.Zone{}, false
}

// Index maps zone id to whether some body is captured there.
type Index map[int]bool

// BuildIndex derives the index for every target zone from the states.
func BuildIndex(zones []physics.Zone, states []State) Index {
	idx := make(Index, len(zones))
	for _, z := range zones {
		if z.IsTarget {
			idx[z.ID] = false
		}
	}
	for _, s := range states {
		if s.Captured {
			idx[s.ZoneID] = true
		}
	}
	return idx
}
