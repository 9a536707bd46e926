package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/tiltbox/internal/sim"
)

type SpeedMode int

const (
	SpeedMean SpeedMode = iota
	SpeedPeak
	SpeedStdDev
)

// Speed summarises body speeds over every observed tick.
type Speed struct {
	mode    SpeedMode
	samples []float64
}

func NewSpeed(mode SpeedMode) *Speed {
	return &Speed{mode: mode}
}

func (s *Speed) Name() string {
	switch s.mode {
	case SpeedPeak:
		return "speed_peak"
	case SpeedStdDev:
		return "speed_stddev"
	}
	return "speed_mean"
}

func (s *Speed) Observe(r sim.TickResult) {
	for _, b := range r.Bodies {
		s.samples = append(s.samples, b.Speed())
	}
}

func (s *Speed) Value() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	switch s.mode {
	case SpeedPeak:
		return floats.Max(s.samples)
	case SpeedStdDev:
		if len(s.samples) < 2 {
			return 0
		}
		return stat.StdDev(s.samples, nil)
	}
	return stat.Mean(s.samples, nil)
}

func (s *Speed) Reset() { s.samples = s.samples[:0] }

// Energy is the mean total kinetic energy (per unit mass) per tick.
type Energy struct {
	totals []float64
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "kinetic_energy" }

func (e *Energy) Observe(r sim.TickResult) {
	total := 0.0
	for _, b := range r.Bodies {
		total += b.KineticEnergy()
	}
	e.totals = append(e.totals, total)
}

func (e *Energy) Value() float64 {
	if len(e.totals) == 0 {
		return 0
	}
	return stat.Mean(e.totals, nil)
}

func (e *Energy) Reset() { e.totals = e.totals[:0] }

// Series returns the per-tick totals observed so far.
func (e *Energy) Series() []float64 {
	return append([]float64(nil), e.totals...)
}
