package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/tiltbox/internal/automation"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/export"
	"github.com/san-kum/tiltbox/internal/optim"
)

func exportSVG(cmd *cobra.Command, args []string) error {
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}
	return withOutput(outFile, func(w io.Writer) error {
		return export.TraceSVG(w, data.Size, data.Params, data.Trace)
	})
}

// parseGrid turns name=v1,v2 pairs into a search grid.
func parseGrid(pairs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(pairs))
	ranges := make([][]float64, 0, len(pairs))
	for _, pair := range pairs {
		name, list, ok := strings.Cut(pair, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("--grid expects name=v1,v2,..., got %q", pair)
		}
		var vals []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--grid %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func tuneParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridPairs)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	// mean ticks to win, a lost trial counts as the tick limit
	objective := func(ctx context.Context, p dynamo.Params) (float64, error) {
		results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
			Params:    p,
			Size:      cfg.Size,
			NumTrials: numRuns,
			MaxTicks:  cfg.MaxTicks,
			MaxTilt:   maxTilt,
			Hold:      hold,
			Seed:      seed,
		})
		if err != nil {
			return 0, err
		}
		total := 0.0
		for _, r := range results {
			if r.Won {
				total += float64(r.WinTick)
			} else {
				total += float64(cfg.MaxTicks)
			}
		}
		return total / float64(len(results)), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, trials, err := optim.NewGridSearch(names, ranges).Search(ctx, cfg.Physics, objective)
	if err != nil {
		return err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSCORE\n", strings.ToUpper(strings.Join(names, "\t")))
	for _, tr := range trials {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(tr.Values[n], 'g', 6, 64)
		}
		fmt.Fprintf(w, "%s\t%.1f\n", strings.Join(cols, "\t"), tr.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %v (mean ticks to win %.1f)\n", best.Values, best.Score)
	return nil
}
