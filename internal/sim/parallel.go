package sim

import (
	"context"
	"sync"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

// Ensemble runs independent engines, one per goroutine. Engines share no
// state, so each run is identical to running it alone.
type Ensemble struct {
	params  dynamo.Params
	size    float64
	numRuns int
	source  func(run int) InputSource
	metrics func() []Metric
}

func NewEnsemble(p dynamo.Params, size float64, numRuns int, source func(run int) InputSource) *Ensemble {
	return &Ensemble{params: p, size: size, numRuns: numRuns, source: source}
}

// WithMetrics installs a fresh metric set on every engine.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, maxTicks int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			eng, err := New(e.params, e.size)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					eng.AddMetric(m)
				}
			}
			results[idx], errs[idx] = eng.Run(ctx, e.source(idx), maxTicks)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
