package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/tiltsim/internal/analysis"
	"github.com/san-kum/tiltsim/internal/automation"
	"github.com/san-kum/tiltsim/internal/config"
	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/experiment"
	"github.com/san-kum/tiltsim/internal/export"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/sim"
	"github.com/san-kum/tiltsim/internal/storage"
	"github.com/san-kum/tiltsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile    string
	preset        string
	transformName string
	detectorName  string
	target        int
	maxSteps      int
	direct        bool
	fallback      bool
	save          bool
	runName       string
	workers       int

	svgPath   string
	tracePath string
	laps      int

	mcRows    int
	mcCols    int
	mcMovable float64
	mcFixed   float64
	mcTrials  int
	mcSeed    int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tiltsim",
		Short:         "settle rocks on a tilting platform and find where they loop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %s", logLevel)
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tiltsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to preset or input file)")

	detectCmd := &cobra.Command{
		Use:   "detect [input]",
		Short: "report pre-cycle length and period",
		Args:  cobra.MaximumNArgs(1),
		RunE:  detectCycle,
	}
	addSimFlags(detectCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [inputs...]",
		Short: "run many grids concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	addSimFlags(batchCmd)
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per cpu)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the load trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "also write the final grid as svg")
	exportCmd.Flags().StringVar(&tracePath, "trace-svg", "", "also write the load trace as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "load trace statistics and spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&laps, "laps", 16, "laps of the loop to analyze for accelerated runs")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in grids",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [input]",
		Short: "animate the grid in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [input]",
		Short: "time every cycle detector",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchDetectors,
	}
	addSimFlags(benchCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "detect loops of random grids",
		RunE:  runMonteCarlo,
	}
	def := config.DefaultConfig()
	monteCarloCmd.Flags().StringVar(&transformName, "transform", def.Transform, "transform (spin, north, west, south, east)")
	monteCarloCmd.Flags().StringVar(&detectorName, "detector", "memo", "cycle detector (floyd, brent, memo)")
	monteCarloCmd.Flags().IntVar(&maxSteps, "max-steps", 100_000, "detection budget per grid")
	monteCarloCmd.Flags().IntVar(&mcRows, "rows", 10, "grid rows")
	monteCarloCmd.Flags().IntVar(&mcCols, "cols", 10, "grid columns")
	monteCarloCmd.Flags().Float64Var(&mcMovable, "movable", 0.25, "chance a cell starts movable")
	monteCarloCmd.Flags().Float64Var(&mcFixed, "fixed", 0.15, "chance a cell starts fixed")
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 100, "number of random grids")
	monteCarloCmd.Flags().Int64Var(&mcSeed, "seed", time.Now().UnixNano(), "random seed")

	rootCmd.AddCommand(runCmd, detectCmd, batchCmd, listCmd, plotCmd, exportCmd, analyzeCmd,
		presetsCmd, liveCmd, benchCmd, scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in grid and settings")
	cmd.Flags().StringVar(&transformName, "transform", def.Transform, "transform (spin, north, west, south, east)")
	cmd.Flags().StringVar(&detectorName, "detector", def.Detector, "cycle detector (floyd, brent, memo)")
	cmd.Flags().IntVar(&target, "target", def.Target, "number of transform applications")
	cmd.Flags().IntVar(&maxSteps, "max-steps", def.MaxSteps, "detection budget in transform applications")
	cmd.Flags().BoolVar(&direct, "direct", false, "apply every step instead of extrapolating")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "simulate directly when no cycle is found")
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order, then reads the starting grid.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, grid.Grid, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, grid.Grid{}, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, grid.Grid{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("transform") {
		cfg.Transform = transformName
	}
	if flags.Changed("detector") {
		cfg.Detector = detectorName
	}
	if flags.Changed("target") {
		cfg.Target = target
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("direct") {
		cfg.Accelerated = !direct
	}
	if flags.Changed("fallback") {
		cfg.Fallback = fallback
	}

	if len(args) == 1 {
		text, err := readInput(args[0])
		if err != nil {
			return nil, grid.Grid{}, err
		}
		cfg.Grid, cfg.Input = text, args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, grid.Grid{}, err
	}
	if cfg.Grid == "" && cfg.Input == "" {
		return nil, grid.Grid{}, fmt.Errorf("no grid given: pass an input file, - for stdin, or --preset")
	}

	start, err := cfg.Source()
	if err != nil {
		return nil, grid.Grid{}, err
	}
	return cfg, start, nil
}

func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read grid: %w", err)
	}
	return string(data), nil
}

func nameFor(cfg *config.Config) string {
	switch {
	case runName != "":
		return runName
	case preset != "":
		return preset
	case cfg.Input != "" && cfg.Input != "-":
		return strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
	}
	return "grid"
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, start, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, start)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s x%d on %dx%d grid\n", cfg.Transform, cfg.Target, start.Rows(), start.Cols())

	began := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("final load: %d\n", result.Final.Load())
	fmt.Printf("applications: %d\n", result.Applications)
	if result.Record != nil {
		fmt.Printf("pre-cycle: %d\n", result.Record.PreCycleLen)
		fmt.Printf("period: %d\n", result.Record.CycleLen)
	}
	if result.FellBack {
		fmt.Println("no cycle found, simulated directly")
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.0f\n", name, result.Metrics[name])
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunInfo{
			Name:      nameFor(cfg),
			Transform: cfg.Transform,
			Detector:  cfg.Detector,
			Target:    cfg.Target,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}

	return nil
}

func detectCycle(cmd *cobra.Command, args []string) error {
	cfg, start, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	transform, err := registry.GetTransform(cfg.Transform)
	if err != nil {
		return err
	}
	detector, err := registry.GetDetector(cfg.Detector, cfg.MaxSteps)
	if err != nil {
		return err
	}

	rec, err := cycle.NewIterator[grid.Grid](transform, detector).Detect(start)
	if err != nil {
		return err
	}

	fmt.Printf("detector: %s\n", detector.Name())
	fmt.Printf("pre-cycle: %d\n", rec.PreCycleLen)
	fmt.Printf("period: %d\n", rec.CycleLen)
	fmt.Printf("applications: %d\n", rec.Applications)

	loads := make([]string, 0, rec.CycleLen)
	g := rec.Representative
	for i := 0; i < rec.CycleLen; i++ {
		loads = append(loads, fmt.Sprintf("%d", g.Load()))
		g = transform(g)
	}
	fmt.Printf("loop loads: %s\n", strings.Join(loads, " "))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	starts := make([]grid.Grid, len(args))
	for i, path := range args {
		text, err := readInput(path)
		if err != nil {
			return err
		}
		if starts[i], err = grid.Parse(text); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	registry := experiment.NewRegistry()
	transform, err := registry.GetTransform(cfg.Transform)
	if err != nil {
		return err
	}
	detector, err := registry.GetDetector(cfg.Detector, cfg.MaxSteps)
	if err != nil {
		return err
	}

	ens := sim.NewEnsemble(sim.New(transform, detector), registry.DefaultMetrics)
	if workers > 0 {
		ens.SetLimit(workers)
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := ens.Run(ctx, starts, sim.Config{
		Target:      cfg.Target,
		Accelerated: cfg.Accelerated,
		Fallback:    cfg.Fallback,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INPUT\tSIZE\tPRE\tPERIOD\tAPPLIED\tLOAD")
	for i, res := range results {
		pre, period := "-", "-"
		if res.Record != nil {
			pre = fmt.Sprintf("%d", res.Record.PreCycleLen)
			period = fmt.Sprintf("%d", res.Record.CycleLen)
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\t%d\t%d\n",
			args[i],
			starts[i].Rows(), starts[i].Cols(),
			pre, period,
			res.Applications,
			res.Final.Load(),
		)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tTIME\tTRANSFORM\tDETECTOR\tTARGET\tPRE\tPERIOD\tLOAD")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Transform,
			run.Detector,
			run.Target,
			run.PreCycleLen,
			run.CycleLen,
			run.FinalLoad,
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

	steps, loads, err := st.LoadLoads(runID)
	if err != nil {
		return err
	}

	if len(loads) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("transform: %s x%d\n", meta.Transform, meta.Target)
	fmt.Printf("samples: %d\n\n", len(loads))

	data := make([]float64, len(loads))
	for i, l := range loads {
		data[i] = float64(l)
	}

	caption := fmt.Sprintf("load, steps %d-%d", steps[0], steps[len(steps)-1])
	if meta.Accelerated {
		caption = fmt.Sprintf("load, steps %d-%d (loop from step %d)", steps[0], steps[len(steps)-1], meta.PreCycleLen)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if svgPath != "" {
		g, err := st.LoadGrid(runID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, []byte(export.GridToSVG(g, 12)), 0644); err != nil {
			return err
		}
		logrus.Infof("wrote %s", svgPath)
	}

	if tracePath != "" {
		_, loads, err := st.LoadLoads(runID)
		if err != nil {
			return err
		}
		svg := export.TraceToSVG(loads, 800, 300, "#00ff00")
		if svg == "" {
			return fmt.Errorf("run %s has too few loads for a trace", runID)
		}
		if err := os.WriteFile(tracePath, []byte(svg), 0644); err != nil {
			return err
		}
		logrus.Infof("wrote %s", tracePath)
	}

	return st.Export(os.Stdout, runID)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	steps, loads, err := st.LoadLoads(runID)
	if err != nil {
		return err
	}
	if len(loads) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	// Accelerated runs stop once the loop closes; repeat one lap so the
	// spectrum can resolve it.
	if meta.Accelerated && meta.CycleLen > 0 {
		off := meta.PreCycleLen - steps[0]
		if off >= 0 && off+meta.CycleLen <= len(loads) {
			loads = analysis.Repeat(loads[off:off+meta.CycleLen], laps)
		}
	}

	sum := analysis.Summarize(loads)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n", sum.Samples)
	fmt.Printf("load: min %d, max %d, mean %.2f\n", sum.Min, sum.Max, sum.Mean)
	fmt.Printf("amplitude: %d\n", sum.Amplitude)

	period := analysis.DominantPeriod(loads)
	fmt.Printf("dominant period: %d\n", period)
	if meta.CycleLen > 0 && meta.CycleLen%period != 0 {
		logrus.Warnf("spectrum period %d does not divide detected period %d", period, meta.CycleLen)
	}

	ps := analysis.PowerSpectrum(loads)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("load power spectrum"),
		)
		fmt.Printf("\n%s\n", graph)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tTRANSFORM\tDETECTOR\tTARGET")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		size := "?"
		if g, err := p.Source(); err == nil {
			size = fmt.Sprintf("%dx%d", g.Rows(), g.Cols())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", name, size, p.Transform, p.Detector, p.Target)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, start, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	transform, err := experiment.NewRegistry().GetTransform(cfg.Transform)
	if err != nil {
		return err
	}

	m := viz.NewModel(nameFor(cfg), start, transform)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func benchDetectors(cmd *cobra.Command, args []string) error {
	cfg, start, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	transform, err := registry.GetTransform(cfg.Transform)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s on %dx%d grid\n\n", cfg.Transform, start.Rows(), start.Cols())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DETECTOR\tPRE\tPERIOD\tAPPLIED\tTIME\tAPPLIED/SEC")

	for _, name := range registry.ListDetectors() {
		detector, err := registry.GetDetector(name, cfg.MaxSteps)
		if err != nil {
			return err
		}

		began := time.Now()
		rec, err := detector.Detect(start, transform)
		if err != nil {
			return err
		}
		elapsed := time.Since(began)

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.0f\n",
			name, rec.PreCycleLen, rec.CycleLen, rec.Applications, elapsed,
			float64(rec.Applications)/elapsed.Seconds())
	}

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRE\tPERIOD\tAPPLIED\tLOAD\tRUN")
	for i, sr := range results {
		pre, period := "-", "-"
		if rec := sr.Result.Record; rec != nil {
			pre = fmt.Sprintf("%d", rec.PreCycleLen)
			period = fmt.Sprintf("%d", rec.CycleLen)
		}
		runID := sr.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			i+1, pre, period, sr.Result.Applications, sr.Result.Final.Load(), runID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveStudyConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Rows:      mcRows,
		Cols:      mcCols,
		Movable:   mcMovable,
		Fixed:     mcFixed,
		NumTrials: mcTrials,
		Transform: cfg.Transform,
		Detector:  cfg.Detector,
		MaxSteps:  cfg.MaxSteps,
		Seed:      mcSeed,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	found, missing, periods := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d (seed %d)\n", len(results), mcSeed)
	fmt.Printf("loops found: %d\n", found)
	if missing > 0 {
		fmt.Printf("budget exhausted: %d\n", missing)
	}

	keys := make([]int, 0, len(periods))
	for p := range periods {
		keys = append(keys, p)
	}
	sort.Ints(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nPERIOD\tCOUNT")
	for _, p := range keys {
		fmt.Fprintf(w, "%d\t%d\n", p, periods[p])
	}
	return w.Flush()
}

// resolveStudyConfig reads the detection flags of commands that generate their own grids.
func resolveStudyConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Transform, cfg.Detector, cfg.MaxSteps = transformName, detectorName, maxSteps
	return cfg, cfg.Validate()
}
