package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/metrics"
	"github.com/san-kum/tiltbox/internal/sim"
)

func defaultMetrics() []sim.Metric { return metrics.Default() }

// ParameterSweep varies one constant linearly between Min and Max.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	NumSteps int
	Base     dynamo.Params
	Size     float64
	MaxTicks int
	// Source builds the input for every step; nil means RestInput.
	Source func() sim.InputSource
}

type SweepResult struct {
	Value   float64
	Won     bool
	WinTick int
	Ticks   int
	Metrics map[string]float64
}

func (sw *ParameterSweep) values() []float64 {
	if sw.NumSteps == 1 {
		return []float64{sw.Min}
	}
	step := (sw.Max - sw.Min) / float64(sw.NumSteps-1)
	out := make([]float64, sw.NumSteps)
	for i := range out {
		out[i] = sw.Min + float64(i)*step
	}
	out[len(out)-1] = sw.Max
	return out
}

func RunSweep(ctx context.Context, sw *ParameterSweep) ([]SweepResult, error) {
	if sw.NumSteps <= 0 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sw.NumSteps)
	}
	results := make([]SweepResult, 0, sw.NumSteps)

	for i, v := range sw.values() {
		p := sw.Base
		if err := p.Set(sw.Param, v); err != nil {
			return nil, err
		}
		eng, err := sim.New(p, sw.Size)
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sw.Param, v, err)
		}
		for _, m := range defaultMetrics() {
			eng.AddMetric(m)
		}

		src := sim.Constant(dynamo.RestInput(p))
		if sw.Source != nil {
			src = sw.Source()
		}
		res, err := eng.Run(ctx, src, sw.MaxTicks)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			Value:   v,
			Won:     res.Won,
			WinTick: res.WinTick,
			Ticks:   res.Ticks,
			Metrics: res.Metrics,
		})
		slog.Debug("sweep step", "step", i+1, "of", sw.NumSteps, "param", sw.Param, "value", v, "won", res.Won)
	}

	return results, nil
}

// RandomTilt produces a random force every Hold ticks, bounded by MaxTilt
// per axis and shifted by the rest gravity.
func RandomTilt(seed int64, maxTilt float64, hold int, gravity float64) sim.InputSource {
	rng := rand.New(rand.NewSource(seed))
	if hold <= 0 {
		hold = 1
	}
	var cur dynamo.Input
	n := 0
	return sim.InputFunc(func(int) (dynamo.Input, bool) {
		if n%hold == 0 {
			cur.Force = dynamo.Vec2{
				X: (rng.Float64()*2 - 1) * maxTilt,
				Y: (rng.Float64()*2-1)*maxTilt + gravity,
			}
		}
		n++
		return cur, true
	})
}

type MonteCarloConfig struct {
	Params    dynamo.Params
	Size      float64
	NumTrials int
	MaxTicks  int
	MaxTilt   float64
	Hold      int
	Seed      int64
}

type MonteCarloStats struct {
	Trials      int
	Wins        int
	WinRate     float64
	MeanWinTick float64
	MeanBounces float64
}

// RunMonteCarlo runs seeded random-tilt trials in parallel.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]*sim.Result, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}
	ens := sim.NewEnsemble(cfg.Params, cfg.Size, cfg.NumTrials, func(run int) sim.InputSource {
		return RandomTilt(cfg.Seed+int64(run), cfg.MaxTilt, cfg.Hold, cfg.Params.GravityBias)
	}).WithMetrics(defaultMetrics)
	return ens.Run(ctx, cfg.MaxTicks)
}

func Summarize(results []*sim.Result) MonteCarloStats {
	st := MonteCarloStats{Trials: len(results)}
	if len(results) == 0 {
		return st
	}
	var winTicks, bounces []float64
	for _, r := range results {
		if r.Won {
			st.Wins++
			winTicks = append(winTicks, float64(r.WinTick))
		}
		bounces = append(bounces, r.Metrics["bounces"])
	}
	st.WinRate = float64(st.Wins) / float64(st.Trials)
	if len(winTicks) > 0 {
		st.MeanWinTick = stat.Mean(winTicks, nil)
	}
	st.MeanBounces = stat.Mean(bounces, nil)
	return st
}
