package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	logFormat  string
	configFile string
	preset     string
	integrator string
	dt         float64
	steps      int
	recordEach int
	frameRate  int
	// live
	plain    bool
	paused   bool
	frames   int
	cols     int
	rows     int
	trailLen int
	// analysis
	convSteps    []int
	convDuration float64
	convMasses   []float64
	perturbation float64
	// export
	outFile   string
	svgWidth  int
	svgHeight int
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orbitsim",
		Short: "2D Newtonian gravity simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(logLevel, logFormat)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warning", "log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().BoolVar(&plain, "plain", false, "print frames to stdout instead of the interactive view")
	liveCmd.Flags().BoolVar(&paused, "paused", false, "start paused")
	liveCmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames (plain mode, 0 = until interrupted)")
	liveCmd.Flags().IntVar(&cols, "cols", 100, "canvas columns (plain mode)")
	liveCmd.Flags().IntVar(&rows, "rows", 30, "canvas rows (plain mode)")
	liveCmd.Flags().IntVar(&trailLen, "trail", 200, "trail length in steps")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same system",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	convergenceCmd := &cobra.Command{
		Use:   "convergence [integrator]",
		Short: "measure the order of accuracy on a circular orbit",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConvergence,
	}
	convergenceCmd.Flags().IntSliceVar(&convSteps, "steps", []int{10, 20, 40, 80, 160}, "step counts")
	convergenceCmd.Flags().Float64Var(&convDuration, "duration", 1, "integration time (G = 1, separation 1)")
	convergenceCmd.Flags().Float64SliceVar(&convMasses, "masses", []float64{0.5, 0.5}, "the two masses")

	periodCmd := &cobra.Command{
		Use:   "period [run_id]",
		Short: "estimate orbital periods of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzePeriod,
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  runLyapunov,
	}
	addSimFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation in position units")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
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

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export orbit paths to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", config.DefaultWidth, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", config.DefaultHeight, "image height")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, convergenceCmd, periodCmd, lyapunovCmd,
		presetsCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd)

	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&recordEach, "record-every", config.DefaultRecordEvery, "record every n-th step")
}

// resolveConfig starts from the defaults, replaces them with the preset and
// then the config file, and finally applies the flags the user set.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, system := config.DefaultConfig(), "binary"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, system = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		system = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEach
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	return cfg, system, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, system, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	if err := exp.Setup(nil); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s simulation...\n", system)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.Run{
		System:     system,
		Integrator: cfg.Integrator,
		G:          cfg.G,
		Dt:         cfg.Dt,
		Steps:      cfg.Steps,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("simulated: %s\n", viz.FormatDuration(float64(result.StepsTaken)*cfg.Dt))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6e\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, system, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}

	opts := []sim.LoopOption{sim.WithPaused(paused)}
	drift := metrics.NewEnergyDrift(exp.Gravity())
	if plain {
		drift.Observe(exp.Bodies(), 0)
		opts = append(opts, sim.WithObserver(metricObserver{drift}))
	}

	loop, err := exp.NewLoop(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	if plain {
		r := viz.NewFrameRenderer(os.Stdout, cols, rows, cfg.Scale, cfg.Width, cfg.Height)
		r.Home = frames != 1
		r.Color = true
		fmt.Print("\x1b[2J")
		err := loop.Run(ctx, r, cfg.FPS, frames)
		logrus.WithFields(logrus.Fields{
			"steps":        loop.Steps(),
			"time":         loop.Time(),
			"energy_drift": drift.Value(),
		}).Info("live session ended")
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	g := exp.Gravity()
	m := viz.NewModel(loop, viz.Options{
		Title:       system,
		FPS:         cfg.FPS,
		Scale:       cfg.Scale,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Integrators: registry.ListIntegrators(),
		Integrator:  cfg.Integrator,
		NewStepper: func(name string) (dynamo.Stepper, error) {
			return registry.GetIntegrator(name, g)
		},
		Energy:      g,
		TrailLength: trailLen,
	})

	p := tea.NewProgram(m, tea.WithMouseCellMotion(), tea.WithReportFocus(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return err
	}

	if fm, ok := final.(viz.Model); ok {
		logrus.WithFields(logrus.Fields{
			"steps":      fm.Loop().Steps(),
			"time":       fm.Loop().Time(),
			"integrator": fm.Integrator(),
		}).Info("live session ended")
	}
	return nil
}

// metricObserver feeds every loop step into a metric.
type metricObserver struct{ m dynamo.Metric }

func (o metricObserver) OnStep(bodies dynamo.Bodies, t float64) { o.m.Observe(bodies, t) }

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDT\tSTEPS\tSPAN\tINTEG")

	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%d\t%s\t%s\n",
			name,
			len(p.Bodies),
			p.Dt,
			p.Steps,
			viz.FormatDuration(p.Dt*float64(p.Steps)),
			p.Integrator,
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
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tBODIES\tSTEPS\tDT\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%s\t%.2e\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.StepsTaken,
			run.Dt,
			run.Integrator,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if len(result.Snapshots) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.System)
	fmt.Printf("samples: %d\n\n", len(result.Snapshots))

	fmt.Println(titleStyle.Render("orbits (center of mass frame)"))
	fmt.Println(analysis.OrbitToASCII(result, 80, 30))
	fmt.Println()

	if meta.G > 0 {
		fmt.Println(asciigraph.Plot(relativeDrift(physics.NewGravity(meta.G), result),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("relative energy drift"),
		))
		fmt.Println()
	}

	const maxPlots = 6
	for i := 0; i < len(meta.Bodies) && i < maxPlots; i++ {
		data, err := analysis.BodySeries(result, i)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s x (relative to center of mass)", meta.Bodies[i].Name)),
		))
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.WriteCSV(os.Stdout, result)
	}
	if err := storage.ExportCSV(outFile, result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	run := storage.Run{
		System:     meta.System,
		Integrator: meta.Integrator,
		G:          meta.G,
		Dt:         meta.Dt,
		Steps:      meta.Steps,
	}
	if outFile == "" {
		return storage.ExportJSONStdout(run, result)
	}
	if err := storage.ExportJSON(outFile, run, result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := export.WriteSVG(path, result, svgWidth, svgHeight); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// relativeDrift returns (E - E0)/|E0| for every snapshot.
func relativeDrift(h dynamo.Hamiltonian, result *dynamo.Result) []float64 {
	out := make([]float64, len(result.Snapshots))
	if len(result.Snapshots) == 0 {
		return out
	}
	e0 := h.Energy(result.Snapshots[0].Bodies)
	for i, s := range result.Snapshots {
		if e0 != 0 {
			out[i] = (h.Energy(s.Bodies) - e0) / math.Abs(e0)
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
