package metrics

import (
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

// EventCount counts events of one kind across a run.
type EventCount struct {
	name  string
	kind  dynamo.EventKind
	count int
}

func NewEventCount(kind dynamo.EventKind) *EventCount {
	return &EventCount{name: kind.String() + "s", kind: kind}
}

func (c *EventCount) Name() string { return c.name }

func (c *EventCount) Observe(r sim.TickResult) {
	for _, ev := range r.Events {
		if ev.Kind == c.kind {
			c.count++
		}
	}
}

func (c *EventCount) Value() float64 { return float64(c.count) }

func (c *EventCount) Reset() { c.count = 0 }

// WinTick records the tick the run was won on, or 0.
type WinTick struct {
	tick int
}

func NewWinTick() *WinTick { return &WinTick{} }

func (w *WinTick) Name() string { return "win_tick" }

func (w *WinTick) Observe(r sim.TickResult) {
	if r.Won && w.tick == 0 {
		w.tick = r.Tick
	}
}

func (w *WinTick) Value() float64 { return float64(w.tick) }

func (w *WinTick) Reset() { w.tick = 0 }

// Default is the metric set recorded for every stored run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEventCount(dynamo.EventBounce),
		NewEventCount(dynamo.EventCapture),
		NewEventCount(dynamo.EventEscape),
		NewWinTick(),
		NewSpeed(SpeedMean),
		NewSpeed(SpeedPeak),
		NewEnergy(),
	}
}
