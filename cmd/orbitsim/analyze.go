package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, system, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}

	g := exp.Gravity()
	integs := make([]dynamo.Integrator, 0, len(names))
	for _, name := range names {
		integ, err := registry.GetIntegrator(name, g)
		if err != nil {
			return err
		}
		integs = append(integs, integ)
	}

	ctx, stop := signalContext()
	defer stop()

	bodies := exp.Bodies()
	results, err := sim.Compare(ctx, bodies, integs, g, cfg.RunConfig(), func() []dynamo.Metric {
		return registry.DefaultMetrics(g, bodies)
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("comparing integrators for %s (dt=%g, steps=%d)", system, cfg.Dt, cfg.Steps)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tORDER\tENERGY\tMOMENTUM\tANGULAR\tSTABILITY\tTIME_MS")
	series := make([][]float64, 0, len(results))
	for i, c := range results {
		m := c.Result.Metrics
		fmt.Fprintf(w, "%s\t%d\t%.2e\t%.2e\t%.2e\t%.3f\t%.2f\n",
			c.Name,
			integs[i].Order(),
			m["energy_drift"],
			m["momentum_drift"],
			m["angular_momentum_drift"],
			m["stability"],
			float64(c.Elapsed.Microseconds())/1000,
		)
		series = append(series, logDrift(relativeDrift(g, c.Result)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(series) > 0 && len(series[0]) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("log10 |ΔE/E₀|: "+strings.Join(names, ", ")),
		))
	}

	return nil
}

// logDrift maps drift values to log10 with a floor at machine precision.
func logDrift(drift []float64) []float64 {
	out := make([]float64, len(drift))
	for i, d := range drift {
		out[i] = math.Log10(math.Abs(d) + 1e-16)
	}
	return out
}

func runConvergence(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}
	if len(convMasses) != 2 {
		return fmt.Errorf("need exactly two masses, got %d", len(convMasses))
	}

	for _, name := range names {
		newInteg, err := registry.Factory(name)
		if err != nil {
			return err
		}

		res, err := analysis.Convergence(newInteg, convMasses[0], convMasses[1], convDuration, convSteps)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("%s: order %.2f", name, res.Order)))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEPS\tDT\tERROR")
		logErr := make([]float64, len(res.Points))
		for i, p := range res.Points {
			fmt.Fprintf(w, "%d\t%.4g\t%.3e\n", p.Steps, p.Dt, p.Error)
			logErr[i] = math.Log10(p.Error + 1e-300)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println(asciigraph.Plot(logErr,
			asciigraph.Height(6),
			asciigraph.Caption("log10 error by refinement"),
		))
		fmt.Println()
	}

	return nil
}

func analyzePeriod(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(result.Snapshots))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tFFT\tCROSSINGS")
	for i, b := range meta.Bodies {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, formatPeriod(analysis.OrbitalPeriod(result, i)), formatPeriod(analysis.CrossingPeriod(result, i)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.Bodies) == 0 {
		return nil
	}
	data, err := analysis.BodySeries(result, 0)
	if err != nil {
		return err
	}
	spectrum := analysis.PowerSpectrum(data)
	if len(spectrum) > 64 {
		spectrum = spectrum[:64]
	}
	if len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum,
			asciigraph.Height(10),
			asciigraph.Caption(fmt.Sprintf("%s spectrum (low frequencies)", meta.Bodies[0].Name)),
		))
	}

	return nil
}

func formatPeriod(p float64, err error) string {
	if err != nil {
		return "-"
	}
	return viz.FormatDuration(p)
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, system, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}

	lambda := analysis.LyapunovExponent(exp.Integrator(), exp.Bodies(), cfg.Dt, cfg.Steps, perturbation)

	fmt.Printf("system: %s\n", system)
	fmt.Printf("integrator: %s\n", cfg.Integrator)
	fmt.Printf("lyapunov exponent: %.6e per time unit\n", lambda)
	if lambda > 0 {
		fmt.Printf("e-folding time: %s\n", viz.FormatDuration(1/lambda))
	}
	return nil
}
