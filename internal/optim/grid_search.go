package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

// Objective scores one parameter set; lower is better.
type Objective func(ctx context.Context, p dynamo.Params) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Values map[string]float64
	Score  float64
}

// Search evaluates every grid point layered over base and returns the best
// point plus all trials in visiting order. Points that fail validation are
// skipped.
func (g *GridSearch) Search(ctx context.Context, base dynamo.Params, obj Objective) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("grid has %d names and %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := Trial{Score: math.Inf(1)}
	var trials []Trial
	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, obj, &best, &trials)
	if err != nil {
		return best, trials, err
	}
	if best.Values == nil {
		return best, trials, fmt.Errorf("no valid grid point")
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base dynamo.Params,
	obj Objective,
	best *Trial,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		p := base
		for k, v := range current {
			if err := p.Set(k, v); err != nil {
				return err
			}
		}
		if p.Validate() != nil {
			return nil
		}

		score, err := obj(ctx, p)
		if err != nil {
			return err
		}

		tr := Trial{Values: make(map[string]float64, len(current)), Score: score}
		for k, v := range current {
			tr.Values[k] = v
		}
		*trials = append(*trials, tr)
		if score < best.Score {
			*best = tr
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, obj, best, trials); err != nil {
			return err
		}
	}
	return nil
}
