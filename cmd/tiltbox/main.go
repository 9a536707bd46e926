package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/tiltbox/internal/config"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
	"github.com/san-kum/tiltbox/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	// overrides
	size      float64
	maxTicks  int
	variant   string
	setParams []string
	// input
	tiltX, tiltY float64
	runName      string
	wavOut       string
	// live
	frameRate int
	theme     string
	withAudio bool
	// analysis
	body    int
	outFile string
	numRuns int
	seed    int64
	maxTilt float64
	hold    int
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// tune
	gridPairs []string
)

// main registers the tiltbox commands and runs the root command; with no
// subcommand it opens the preset menu. Exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "tiltbox",
		Short:         "tilt-driven capture box simulation",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(verbose))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return viz.Run(viz.NewMenu(cfg, sim.WithLogger(slog.Default())))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".tiltbox", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	pf.Float64Var(&size, "size", config.DefaultSize, "arena side length")
	pf.IntVar(&maxTicks, "ticks", config.DefaultMaxTicks, "maximum ticks")
	pf.StringVar(&variant, "variant", "", "zone variant (sticky|classic)")
	pf.StringArrayVar(&setParams, "set", nil, "override a physics constant, name=value")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless with a constant tilt",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&tiltX, "tilt-x", 0, "tilt added to the rest force, x")
	runCmd.Flags().Float64Var(&tiltY, "tilt-y", 0, "tilt added to the rest force, y")
	runCmd.Flags().StringVar(&runName, "name", "run", "run name")
	runCmd.Flags().StringVar(&wavOut, "wav", "", "write event cues to a wav file")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted force scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&wavOut, "wav", "", "write event cues to a wav file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "play in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "tick rate")
	liveCmd.Flags().StringVar(&theme, "theme", "", "color theme ("+strings.Join(viz.ThemeNames(), "|")+")")
	liveCmd.Flags().BoolVar(&withAudio, "audio", false, "play event cues")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body speeds of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&body, "body", -1, "body index, -1 for all")

	eventsCmd := &cobra.Command{
		Use:   "events [run_id]",
		Short: "list the events of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  listEvents,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	renderCmd := &cobra.Command{
		Use:   "render-audio [run_id]",
		Short: "render the event cues of a stored run to wav",
		Args:  cobra.ExactArgs(1),
		RunE:  renderAudio,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "cues.wav", "output wav file")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run random-tilt trials in parallel",
		Args:  cobra.NoArgs,
		RunE:  benchRuns,
	}
	benchCmd.Flags().IntVar(&numRuns, "runs", 16, "number of trials")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "base random seed")
	benchCmd.Flags().Float64Var(&maxTilt, "max-tilt", 1.0, "maximum random tilt per axis")
	benchCmd.Flags().IntVar(&hold, "hold", 30, "ticks to hold each random tilt")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one physics constant",
		Args:  cobra.NoArgs,
		RunE:  sweepParamCmd,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "friction", "constant to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.95, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.999, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().Float64Var(&tiltX, "tilt-x", 0, "tilt added to the rest force, x")
	sweepCmd.Flags().Float64Var(&tiltY, "tilt-y", 0, "tilt added to the rest force, y")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the body paths of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search physics constants for the fastest random-tilt wins",
		Args:  cobra.NoArgs,
		RunE:  tuneParams,
	}
	tuneCmd.Flags().StringArrayVar(&gridPairs, "grid", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().IntVar(&numRuns, "runs", 8, "trials per grid point")
	tuneCmd.Flags().Int64Var(&seed, "seed", 1, "base random seed")
	tuneCmd.Flags().Float64Var(&maxTilt, "max-tilt", 1.0, "maximum random tilt per axis")
	tuneCmd.Flags().IntVar(&hold, "hold", 30, "ticks to hold each random tilt")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.Presets[name].Physics
				fmt.Printf("  %-10s %s friction=%.3f bounce=%.2f\n", name, p.Variant, p.Friction, p.BounceEfficiency)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, scenarioCmd, liveCmd, listCmd, plotCmd, eventsCmd, exportCSVCmd, exportJSONCmd, renderCmd, exportSVGCmd, benchCmd, sweepCmd, tuneCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Size = size
	}
	if flags.Changed("ticks") {
		cfg.MaxTicks = maxTicks
	}
	if flags.Changed("variant") {
		v, err := dynamo.ParseVariant(variant)
		if err != nil {
			return nil, err
		}
		cfg.Physics.Variant = v
	}
	for _, kv := range setParams {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set expects name=value, got %q", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		if err := cfg.Physics.Set(name, v); err != nil {
			return nil, err
		}
	}
	if flags.Changed("fps") {
		cfg.Live.FPS = frameRate
	}
	if flags.Changed("theme") {
		cfg.Live.Theme = theme
	}
	if flags.Changed("audio") {
		cfg.Audio.Enabled = withAudio
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
