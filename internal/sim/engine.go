package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/tiltbox/internal/capture"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/goal"
	"github.com/san-kum/tiltbox/internal/integrators"
	"github.com/san-kum/tiltbox/internal/physics"
)

type Engine struct {
	params     dynamo.Params
	state      EngineState
	integrator *integrators.Tick
	metrics    []Metric
	observers  []dynamo.Observer
	logger     *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithObserver(o dynamo.Observer) Option {
	return func(e *Engine) { e.AddObserver(o) }
}

// New builds an engine for a square arena of the given side.
func New(p dynamo.Params, size float64, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		params: p,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.rebuild(size); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) AddMetric(m Metric)            { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Params() dynamo.Params { return e.params }

// State returns a deep copy of the current engine state.
func (e *Engine) State() EngineState { return e.state.Clone() }

func (e *Engine) Won() bool { return e.state.Won }

// RequiredZones is the number of distinct captured zones needed to win.
func (e *Engine) RequiredZones() int { return len(e.state.Bodies) }

// Resize recomputes the arena and zones and discards the run in progress.
// A size outside the arena's domain leaves the engine untouched.
func (e *Engine) Resize(size float64) error {
	if err := e.rebuild(size); err != nil {
		return err
	}
	e.logger.Debug("arena resized", "size", size)
	return nil
}

// Reset restarts the run at the current size.
func (e *Engine) Reset() {
	// The current size already passed validation.
	_ = e.rebuild(e.state.Arena.Size)
	e.logger.Debug("engine reset")
}

func (e *Engine) rebuild(size float64) error {
	arena, err := physics.NewArena(size, e.params)
	if err != nil {
		return err
	}
	zones := physics.ZonesOf(arena, e.params.Variant)
	bodies := physics.NewBodies(arena)
	captures := capture.NewStates(len(bodies))

	machine := capture.NewMachine(arena, zones, e.params)
	e.integrator = integrators.NewTick(e.params, arena, zones, machine)
	e.state = EngineState{
		Arena:    arena,
		Zones:    zones,
		Bodies:   bodies,
		Captures: captures,
		Index:    capture.BuildIndex(zones, captures),
	}
	for _, m := range e.metrics {
		m.Reset()
	}
	return nil
}

// Tick advances every body by one unit step. Once the run is won, input is
// ignored and the final snapshot is returned without events.
func (e *Engine) Tick(in dynamo.Input) TickResult {
	if e.state.Won {
		return e.snapshot(nil)
	}

	var events []dynamo.Event
	for i := range e.state.Bodies {
		res := e.integrator.Step(i, &e.state.Bodies[i], &e.state.Captures[i], in)
		if res.Diagnostic != nil {
			e.logger.Warn("body outside known quadrants, using quadrant 0",
				"body", i, "quadrant", e.state.Bodies[i].QuadrantID, "err", res.Diagnostic)
		}
		events = append(events, res.Events...)
	}
	e.state.Tick++
	e.state.Index = capture.BuildIndex(e.state.Zones, e.state.Captures)

	if goal.Evaluate(e.state.Captures, e.RequiredZones()) {
		e.state.Won = true
		events = append(events, dynamo.Win())
		e.logger.Info("run won", "tick", e.state.Tick)
	}

	r := e.snapshot(events)
	for _, m := range e.metrics {
		m.Observe(r)
	}
	for _, ev := range events {
		for _, o := range e.observers {
			o.OnEvent(ev)
		}
	}
	return r
}

func (e *Engine) snapshot(events []dynamo.Event) TickResult {
	s := e.state.Clone()
	return TickResult{
		Tick:     s.Tick,
		Bodies:   s.Bodies,
		Captures: s.Captures,
		Index:    s.Index,
		Events:   events,
		Won:      s.Won,
	}
}

// Run drives the engine headlessly from src until the run is won, maxTicks
// is reached, or src is exhausted. On cancellation the partial result is
// returned with ctx.Err().
func (e *Engine) Run(ctx context.Context, src InputSource, maxTicks int) (*Result, error) {
	if maxTicks <= 0 {
		return nil, fmt.Errorf("max ticks must be positive, got %d", maxTicks)
	}

	result := &Result{
		Samples: make([]TickResult, 0, maxTicks),
		Metrics: make(map[string]float64),
	}

	finish := func(reason string) *Result {
		result.Stopped = reason
		result.Final = e.State()
		for _, m := range e.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		return result
	}

	for i := 0; i < maxTicks; i++ {
		select {
		case <-ctx.Done():
			return finish("canceled"), ctx.Err()
		default:
		}

		in, ok := src.Next(e.state.Tick)
		if !ok {
			return finish("exhausted"), nil
		}

		r := e.Tick(in)
		result.Ticks++
		result.Samples = append(result.Samples, r)
		for _, ev := range r.Events {
			result.Events = append(result.Events, EventRecord{Tick: r.Tick, Event: ev})
		}
		if r.Won {
			result.Won = true
			result.WinTick = r.Tick
			return finish("won"), nil
		}
	}
	return finish("max_ticks"), nil
}
