package sim

import (
	"github.com/san-kum/tiltbox/internal/capture"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
)

// EngineState is everything one engine owns. Arena and Zones are replaced
// wholesale on resize; Bodies and Captures are mutated once per tick.
type EngineState struct {
	Arena    physics.Arena
	Zones    []physics.Zone
	Bodies   []physics.Body
	Captures []capture.State
	Index    capture.Index
	Tick     int
	Won      bool
}

func (s EngineState) Clone() EngineState {
	c := s
	c.Zones = append([]physics.Zone(nil), s.Zones...)
	c.Bodies = append([]physics.Body(nil), s.Bodies...)
	c.Captures = append([]capture.State(nil), s.Captures...)
	c.Index = make(capture.Index, len(s.Index))
	for k, v := range s.Index {
		c.Index[k] = v
	}
	return c
}

// TickResult is the output of one Tick call. Slices are copies.
type TickResult struct {
	Tick     int
	Bodies   []physics.Body
	Captures []capture.State
	Index    capture.Index
	Events   []dynamo.Event
	Won      bool
}

// InputSource supplies scripted inputs to Run. ok is false once exhausted.
type InputSource interface {
	Next(tick int) (in dynamo.Input, ok bool)
}

// InputFunc adapts a function to InputSource.
type InputFunc func(tick int) (dynamo.Input, bool)

func (f InputFunc) Next(tick int) (dynamo.Input, bool) { return f(tick) }

// Constant repeats one input forever.
func Constant(in dynamo.Input) InputSource {
	return InputFunc(func(int) (dynamo.Input, bool) { return in, true })
}

type Metric interface {
	Name() string
	Observe(r TickResult)
	Value() float64
	Reset()
}

// EventRecord is an event stamped with the tick it happened on.
type EventRecord struct {
	Tick  int
	Event dynamo.Event
}

type Result struct {
	Ticks    int
	Won      bool
	WinTick  int
	Samples  []TickResult
	Events   []EventRecord
	Metrics  map[string]float64
	Final    EngineState
	Stopped  string
}
