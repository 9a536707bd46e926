package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/tiltbox/internal/audio"
	"github.com/san-kum/tiltbox/internal/automation"
	"github.com/san-kum/tiltbox/internal/config"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/metrics"
	"github.com/san-kum/tiltbox/internal/sim"
	"github.com/san-kum/tiltbox/internal/storage"
	"github.com/san-kum/tiltbox/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	eng, err := sim.New(cfg.Physics, cfg.Size, sim.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	for _, m := range metrics.Default() {
		eng.AddMetric(m)
	}

	in := dynamo.RestInput(cfg.Physics)
	in.Force = in.Force.Add(dynamo.Vec2{X: tiltX, Y: tiltY})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%s) for up to %d ticks...\n", runName, cfg.Physics.Variant, cfg.MaxTicks)
	start := time.Now()
	result, err := eng.Run(ctx, sim.Constant(in), cfg.MaxTicks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return finishRun(runName, cfg, result, time.Since(start))
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Preset != "" && preset == "" {
		preset = sc.Preset
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	fmt.Printf("playing %s: %d segments, %d ticks\n", name, len(sc.Segments), sc.Len())
	start := time.Now()
	result, err := automation.RunScenario(ctx, sc, cfg.Physics, cfg.Size, cfg.MaxTicks, sim.WithLogger(slog.Default()))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return finishRun(name, cfg, result, time.Since(start))
}

// finishRun stores the result, prints a summary and optionally renders cues.
func finishRun(name string, cfg *config.Config, result *sim.Result, elapsed time.Duration) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg.Physics, cfg.Size, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d (%s)\n", result.Ticks, result.Stopped)
	if result.Won {
		fmt.Printf("won at tick %d\n", result.WinTick)
	}
	printMetrics(result.Metrics)

	if wavOut != "" {
		if err := writeWAV(wavOut, result.Events, result.Ticks, cfg.Live.FPS); err != nil {
			return err
		}
		fmt.Printf("cues: %s\n", wavOut)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func writeWAV(path string, events []sim.EventRecord, ticks, fps int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = audio.RenderWAV(f, events, ticks, fps)
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []sim.Option{sim.WithLogger(slog.Default())}
	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.Volume)
		if err := player.Start(); err != nil {
			slog.Warn("audio disabled", "err", err)
		} else {
			defer player.Stop()
			opts = append(opts, sim.WithObserver(player))
		}
	}

	eng, err := sim.New(cfg.Physics, cfg.Size, opts...)
	if err != nil {
		return err
	}
	return viz.Run(viz.NewModel(eng, cfg.Live))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tTIME\tSIZE\tTICKS\tWON\tSTOPPED")
	for _, run := range runs {
		won := "-"
		if run.Won {
			won = fmt.Sprintf("tick %d", run.WinTick)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%d\t%s\t%s\n",
			run.ID,
			run.Params.Variant,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.Ticks,
			won,
			run.Stopped,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("variant: %s\n", meta.Params.Variant)
	fmt.Printf("ticks: %d\n\n", meta.Ticks)

	bodies := []int{body}
	if body < 0 {
		bodies = []int{0, 1, 2, 3}
	}
	for _, b := range bodies {
		data := storage.SpeedSeries(trace, b)
		if len(data) == 0 {
			return fmt.Errorf("run %s has no body %d", runID, b)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d speed", b)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func listEvents(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	events, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no events")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICK\tEVENT")
	for _, row := range events {
		ev, err := row.Event()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\n", row.Tick, ev)
	}
	return w.Flush()
}

// loadExport rebuilds export data from a stored run.
func loadExport(runID string) (storage.ExportData, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return storage.ExportData{}, err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return storage.ExportData{}, err
	}
	events, err := st.LoadEvents(runID)
	if err != nil {
		return storage.ExportData{}, err
	}
	return storage.ExportData{
		Size:    meta.Size,
		Params:  meta.Params,
		Ticks:   meta.Ticks,
		Won:     meta.Won,
		WinTick: meta.WinTick,
		Stopped: meta.Stopped,
		Trace:   trace,
		Events:  events,
		Metrics: meta.Metrics,
	}, nil
}

func withOutput(path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}
	return withOutput(outFile, func(w io.Writer) error { return storage.ExportCSV(w, data) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}
	return withOutput(outFile, func(w io.Writer) error { return storage.ExportJSON(w, data) })
}

func renderAudio(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}

	records := make([]sim.EventRecord, 0, len(data.Events))
	for _, row := range data.Events {
		ev, err := row.Event()
		if err != nil {
			return err
		}
		records = append(records, sim.EventRecord{Tick: row.Tick, Event: ev})
	}
	if err := writeWAV(outFile, records, data.Ticks, cfg.Live.FPS); err != nil {
		return err
	}
	fmt.Printf("rendered %d cues to %s\n", len(records), outFile)
	return nil
}

func benchRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Params:    cfg.Physics,
		Size:      cfg.Size,
		NumTrials: numRuns,
		MaxTicks:  cfg.MaxTicks,
		MaxTilt:   maxTilt,
		Hold:      hold,
		Seed:      seed,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("benchmarking %d random-tilt runs (%s)\n\n", numRuns, cfg.Physics.Variant)
	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, mc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	ticks := 0
	for _, r := range results {
		ticks += r.Ticks
	}
	stats := automation.Summarize(results)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNS\tWINS\tWIN RATE\tMEAN WIN TICK\tMEAN BOUNCES\tTICKS/SEC")
	fmt.Fprintf(w, "%d\t%d\t%.1f%%\t%.1f\t%.1f\t%.0f\n",
		stats.Trials, stats.Wins, stats.WinRate*100, stats.MeanWinTick, stats.MeanBounces,
		float64(ticks)/elapsed.Seconds())
	return w.Flush()
}

func sweepParamCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	in := dynamo.RestInput(cfg.Physics)
	in.Force = in.Force.Add(dynamo.Vec2{X: tiltX, Y: tiltY})
	sw := &automation.ParameterSweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Base:     cfg.Physics,
		Size:     cfg.Size,
		MaxTicks: cfg.MaxTicks,
		Source:   func() sim.InputSource { return sim.Constant(in) },
	}

	results, err := automation.RunSweep(context.Background(), sw)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tWON\tTICKS\tBOUNCES\tCAPTURES\tPEAK SPEED\n", sweepParam)
	for _, r := range results {
		won := "-"
		if r.Won {
			won = fmt.Sprintf("tick %d", r.WinTick)
		}
		fmt.Fprintf(w, "%.4f\t%s\t%d\t%.0f\t%.0f\t%.2f\n",
			r.Value, won, r.Ticks, r.Metrics["bounces"], r.Metrics["captures"], r.Metrics["speed_peak"])
	}
	return w.Flush()
}
