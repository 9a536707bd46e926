package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

// Scenario is a scripted force sequence played into an engine.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Preset      string             `yaml:"preset"`
	Params      map[string]float64 `yaml:"params"`
	Loop        bool               `yaml:"loop"`
	Segments    []Segment          `yaml:"segments"`
}

// Segment holds one force for Ticks ticks, played Repeat+1 times.
type Segment struct {
	Force  dynamo.Vec2 `yaml:"force"`
	Ticks  int         `yaml:"ticks"`
	Repeat int         `yaml:"repeat"`
}

func (s Segment) length() int { return s.Ticks * (s.Repeat + 1) }

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Segments) == 0 {
		return fmt.Errorf("scenario %q has no segments", sc.Name)
	}
	for i, seg := range sc.Segments {
		if seg.Ticks <= 0 {
			return fmt.Errorf("segment %d: ticks must be positive, got %d", i+1, seg.Ticks)
		}
		if seg.Repeat < 0 {
			return fmt.Errorf("segment %d: repeat must not be negative, got %d", i+1, seg.Repeat)
		}
		if !seg.Force.IsValid() {
			return fmt.Errorf("segment %d: force is not finite", i+1)
		}
	}
	return nil
}

// Len is the number of ticks one pass of the scenario covers.
func (sc *Scenario) Len() int {
	n := 0
	for _, seg := range sc.Segments {
		n += seg.length()
	}
	return n
}

// InputAt returns the input for a zero-based tick offset.
func (sc *Scenario) InputAt(tick int) (dynamo.Input, error) {
	total := sc.Len()
	if tick < 0 || total == 0 {
		return dynamo.Input{}, dynamo.ErrSourceExhausted
	}
	if tick >= total {
		if !sc.Loop {
			return dynamo.Input{}, fmt.Errorf("tick %d of %d: %w", tick, total, dynamo.ErrSourceExhausted)
		}
		tick %= total
	}
	for _, seg := range sc.Segments {
		if tick < seg.length() {
			return dynamo.Input{Force: seg.Force}, nil
		}
		tick -= seg.length()
	}
	return dynamo.Input{}, dynamo.ErrSourceExhausted
}

// Source plays the scenario from its first segment, independent of the
// engine's tick counter.
func (sc *Scenario) Source() sim.InputSource {
	next := 0
	return sim.InputFunc(func(int) (dynamo.Input, bool) {
		in, err := sc.InputAt(next)
		if err != nil {
			return dynamo.Input{}, false
		}
		next++
		return in, true
	})
}

// Apply layers the scenario's parameter overrides onto p.
func (sc *Scenario) Apply(p dynamo.Params) (dynamo.Params, error) {
	for name, v := range sc.Params {
		if err := p.Set(name, v); err != nil {
			return p, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	return p, p.Validate()
}

// RunScenario plays sc into a fresh engine.
func RunScenario(ctx context.Context, sc *Scenario, p dynamo.Params, size float64, maxTicks int, opts ...sim.Option) (*sim.Result, error) {
	params, err := sc.Apply(p)
	if err != nil {
		return nil, err
	}
	eng, err := sim.New(params, size, opts...)
	if err != nil {
		return nil, err
	}
	for _, m := range defaultMetrics() {
		eng.AddMetric(m)
	}

	slog.Debug("running scenario", "name", sc.Name, "segments", len(sc.Segments), "ticks", sc.Len())
	return eng.Run(ctx, sc.Source(), maxTicks)
}
