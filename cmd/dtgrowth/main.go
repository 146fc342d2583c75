package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dtgrowth/internal/config"
	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/export"
	"github.com/san-kum/dtgrowth/internal/integrators"
	"github.com/san-kum/dtgrowth/internal/metrics"
	"github.com/san-kum/dtgrowth/internal/models"
	"github.com/san-kum/dtgrowth/internal/sim"
	"github.com/san-kum/dtgrowth/internal/stepper"
	"github.com/san-kum/dtgrowth/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	duration   float64
	growth     float64
	minDT      float64
	outFile    string
	logScale   bool
	growths    string
	parallel   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dtgrowth",
		Short: "adaptive timestep growth policy lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dtgrowth", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation driven by the timestepper",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSetupFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare growth factors on the same setup",
		Args:  cobra.NoArgs,
		RunE:  sweepGrowth,
	}
	addSetupFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&growths, "growths", "1.1,1.5,2,inf", "comma separated growth factors")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "runs in flight")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the step size history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render the step size history to an image (png, svg, pdf)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().StringVarP(&outFile, "out", "o", "dt.png", "output file")
	exportPlotCmd.Flags().BoolVar(&logScale, "log", false, "logarithmic dt axis")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-14s %s/%s\n", name, p.Model, p.Integrator)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, plotCmd, exportCmd, exportPlotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration (overrides config)")
	cmd.Flags().Float64Var(&growth, "growth", 0, "growth factor (overrides config)")
	cmd.Flags().Float64Var(&minDT, "min-dt", 0, "minimum dt (overrides config)")
}

// loadConfig resolves --preset, --config and the override flags, in that order.
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
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("growth") {
		cfg.Timestepper.GrowthFactor = growth
	}
	if cmd.Flags().Changed("min-dt") {
		cfg.Timestepper.MinDT = minDT
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildJob(cfg *config.Config) (sim.Job, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return sim.Job{}, err
	}
	params, err := cfg.StepperParams(reg)
	if err != nil {
		return sim.Job{}, err
	}
	load, err := cfg.LoadFunc(reg)
	if err != nil {
		return sim.Job{}, err
	}

	return sim.Job{
		Name:          cfg.Model,
		NewSystem:     func() (dynamo.System, error) { return models.New(cfg.Model, load) },
		NewIntegrator: func() (dynamo.Integrator, error) { return integrators.Get(cfg.Integrator) },
		Config:        cfg.SimConfig(),
		Params:        params,
		X0:            dynamo.State(cfg.InitState),
	}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	job, err := buildJob(cfg)
	if err != nil {
		return err
	}

	dyn, err := job.NewSystem()
	if err != nil {
		return err
	}
	integ, err := job.NewIntegrator()
	if err != nil {
		return err
	}

	driver := sim.New(dyn, integ, job.Config)
	st, err := stepper.New(job.Params, driver)
	if err != nil {
		return err
	}
	knots := st.Knots()

	drift := metrics.NewEnergyDrift(dyn)
	drift.Seed(job.X0)
	set := metrics.Set{metrics.NewMaxGrowth(), metrics.NewCutbackRate(), metrics.NewMeanDT(), drift}
	set.Attach(driver)

	fmt.Println(titleStyle.Render(fmt.Sprintf("running %s with %s", cfg.Model, cfg.Integrator)))
	start := time.Now()

	result, runErr := driver.Run(context.Background(), job.X0, st)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunMetadata{
		Model:        cfg.Model,
		Integrator:   cfg.Integrator,
		Preset:       preset,
		StartTime:    cfg.StartTime,
		Duration:     cfg.Duration,
		GrowthFactor: cfg.Timestepper.GrowthFactor,
		MinDT:        cfg.Timestepper.MinDT,
		Knots:        knots,
	}, result)
	if err != nil {
		return err
	}

	dts := result.DTs()
	lines := []string{
		field("run id", runID),
		field("elapsed", elapsed.Round(time.Microsecond)),
		field("final time", driver.Time()),
		field("accepted", result.Accepted),
		field("rejected", result.Rejected),
		field("knots", len(knots)),
	}
	if len(dts) > 0 {
		lo, hi := minMax(dts)
		lines = append(lines, field("dt range", fmt.Sprintf("%.4g .. %.4g", lo, hi)))
	}
	for _, m := range set {
		lines = append(lines, field(strings.ReplaceAll(m.Name(), "_", " "), m.Value()))
	}
	fmt.Println(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))

	if runErr != nil {
		fmt.Println(warnStyle.Render("run stopped early: " + runErr.Error()))
		return runErr
	}
	return nil
}

func sweepGrowth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	factors, err := parseFactors(growths)
	if err != nil {
		return err
	}

	jobs := make([]sim.Job, len(factors))
	for i, g := range factors {
		c := *cfg
		c.Timestepper.GrowthFactor = g
		job, err := buildJob(&c)
		if err != nil {
			return err
		}
		job.Name = fmt.Sprintf("growth=%g", g)
		jobs[i] = job
	}

	results, err := sim.Sweep(context.Background(), jobs, parallel)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("growth factor sweep: %s with %s", cfg.Model, cfg.Integrator)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROWTH\tACCEPTED\tREJECTED\tMIN DT\tMAX DT")
	for i, res := range results {
		lo, hi := minMax(res.DTs())
		fmt.Fprintf(w, "%g\t%d\t%d\t%.4g\t%.4g\n", factors[i], res.Accepted, res.Rejected, lo, hi)
	}
	return w.Flush()
}

func parseFactors(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	factors := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid growth factor %q: %w", p, err)
		}
		factors = append(factors, g)
	}
	if len(factors) == 0 {
		return nil, fmt.Errorf("no growth factors given")
	}
	return factors, nil
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
	fmt.Fprintln(w, "ID\tMODEL\tINTEG\tTIME\tDURATION\tGROWTH\tSTEPS\tREJECTED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%g\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Integrator,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.GrowthFactor,
			run.Accepted,
			run.Rejected,
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

	steps, err := st.LoadSteps(runID)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(field("run", meta.ID))
	fmt.Println(field("model", meta.Model))
	fmt.Println(field("steps", len(steps)))
	fmt.Println()

	dts := make([]float64, len(steps))
	cutbacks := make([]float64, len(steps))
	for i, s := range steps {
		dts[i] = s.DT
		cutbacks[i] = float64(s.Cutbacks)
	}

	fmt.Println(asciigraph.Plot(dts,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("dt per step"),
	))
	fmt.Println()

	if meta.Rejected > 0 {
		fmt.Println(asciigraph.Plot(cutbacks,
			asciigraph.Height(5),
			asciigraph.Width(80),
			asciigraph.Caption("cutbacks per step"),
		))
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	opts := export.DefaultPlotOptions()
	opts.Title = fmt.Sprintf("%s (%s)", meta.Model, meta.ID)
	opts.LogScale = logScale
	if err := export.SaveDTPlot(steps, outFile, opts); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func fmtValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	default:
		return fmt.Sprint(x)
	}
}
