package storage

import (
	"fmt"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

// TraceRow is one body at one tick in trace.csv.
type TraceRow struct {
	Tick     int     `csv:"tick" json:"tick"`
	Body     int     `csv:"body" json:"body"`
	X        float64 `csv:"x" json:"x"`
	Y        float64 `csv:"y" json:"y"`
	VX       float64 `csv:"vx" json:"vx"`
	VY       float64 `csv:"vy" json:"vy"`
	Captured bool    `csv:"captured" json:"captured"`
	Zone     int     `csv:"zone" json:"zone"`
}

// EventRow is one entry of events.csv.
type EventRow struct {
	Tick  int     `csv:"tick" json:"tick"`
	Kind  string  `csv:"kind" json:"kind"`
	Body  int     `csv:"body" json:"body"`
	Zone  int     `csv:"zone" json:"zone"`
	Speed float64 `csv:"speed" json:"speed"`
}

func TraceRows(samples []sim.TickResult) []TraceRow {
	if len(samples) == 0 {
		return nil
	}
	rows := make([]TraceRow, 0, len(samples)*len(samples[0].Bodies))
	for _, s := range samples {
		for i, b := range s.Bodies {
			row := TraceRow{
				Tick: s.Tick,
				Body: i,
				X:    b.Position.X,
				Y:    b.Position.Y,
				VX:   b.Velocity.X,
				VY:   b.Velocity.Y,
				Zone: -1,
			}
			if i < len(s.Captures) {
				row.Captured = s.Captures[i].Captured
				row.Zone = s.Captures[i].ZoneID
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func EventRows(events []sim.EventRecord) []EventRow {
	rows := make([]EventRow, len(events))
	for i, rec := range events {
		rows[i] = EventRow{
			Tick:  rec.Tick,
			Kind:  rec.Event.Kind.String(),
			Body:  rec.Event.Body,
			Zone:  rec.Event.Zone,
			Speed: rec.Event.Speed,
		}
	}
	return rows
}

// Event converts a stored row back to an engine event.
func (r EventRow) Event() (dynamo.Event, error) {
	var kind dynamo.EventKind
	switch r.Kind {
	case "bounce":
		kind = dynamo.EventBounce
	case "capture":
		kind = dynamo.EventCapture
	case "escape":
		kind = dynamo.EventEscape
	case "win":
		kind = dynamo.EventWin
	default:
		return dynamo.Event{}, fmt.Errorf("unknown event kind %q at tick %d", r.Kind, r.Tick)
	}
	return dynamo.Event{Kind: kind, Body: r.Body, Zone: r.Zone, Speed: r.Speed}, nil
}

// SpeedSeries returns the per-tick speed of one body, in tick order.
func SpeedSeries(rows []TraceRow, body int) []float64 {
	var out []float64
	for _, r := range rows {
		if r.Body == body {
			out = append(out, dynamo.Vec2{X: r.VX, Y: r.VY}.Len())
		}
	}
	return out
}
