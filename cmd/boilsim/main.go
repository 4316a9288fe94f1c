package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/getsentry/sentry-go"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/boilsim/internal/analysis"
	"github.com/san-kum/boilsim/internal/automation"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/experiment"
	"github.com/san-kum/boilsim/internal/export"
	"github.com/san-kum/boilsim/internal/optim"
	"github.com/san-kum/boilsim/internal/server"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/storage"
	"github.com/san-kum/boilsim/internal/thermo"
	"github.com/san-kum/boilsim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	dataDir    string
	logLevel   string
	sentryDSN  string
	engineFile string
	fluidsFile string

	duration    float64
	sample      int
	heaterPower float64
	altitude    float64
	mass        float64
	resume      string

	theme   string
	logFile string

	addr      string
	statsAddr string

	svgOut  string
	jsonOut string
	width   int
	height  int

	delta float64
	steps []float64

	minAltitude float64
	maxAltitude float64
	sweepSteps  int

	tuneParams []string
	metric     string
)

var logger *log.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:           "boilsim",
		Short:         "boiling point and room climate simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			sentry.Flush(2 * time.Second)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".boilsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&sentryDSN, "sentry-dsn", os.Getenv("SENTRY_DSN"), "sentry DSN for crash reports")
	rootCmd.PersistentFlags().StringVar(&engineFile, "engine", "", "engine tuning file (ini)")
	rootCmd.PersistentFlags().StringVar(&fluidsFile, "fluids", "", "extra fluid definitions (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [preset|workshop.yaml]",
		Short: "run an experiment as fast as possible and store the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runExperiment,
	}
	runCmd.Flags().Float64Var(&duration, "duration", 0, "simulated seconds (workshop default when 0)")
	runCmd.Flags().IntVar(&sample, "sample", 1, "keep every n-th tick")
	runCmd.Flags().Float64Var(&heaterPower, "heater", 0, "heater power in W")
	runCmd.Flags().Float64Var(&altitude, "altitude", 0, "altitude in m")
	runCmd.Flags().Float64Var(&mass, "mass", 0, "liquid mass in kg")
	runCmd.Flags().StringVar(&resume, "resume", "", "start the pot from the last sample of a stored run")

	liveCmd := &cobra.Command{
		Use:   "live [preset|workshop.yaml]",
		Short: "watch an experiment in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeKitchen.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here instead of discarding them")

	serveCmd := &cobra.Command{
		Use:   "serve [preset|workshop.yaml]",
		Short: "run an experiment in real time behind a websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&statsAddr, "statsview", "", "serve runtime charts on this address")

	listCmd := &cobra.Command{
		Use:   "list [workshop]",
		Short: "list stored runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write an SVG plot to this file")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 15, "plot height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "-", "output file, - for stdout")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			defer st.Close()
			if err := st.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list bundled workshops",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFLUID\tALTITUDE\tHEATER\tAC\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.0fm\t%.0fW\t%t\t%s\n",
					name, p.Fluid, p.Altitude, p.HeaterPower, p.Room.AC.Enabled, p.Description)
			}
			return w.Flush()
		},
	}

	fluidsCmd := &cobra.Command{
		Use:   "fluids",
		Short: "list known fluids",
		RunE:  listFluids,
	}

	checkCmd := &cobra.Command{
		Use:   "check [preset|workshop.yaml|scenario.yaml]",
		Short: "validate a workshop or scenario without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  checkDocument,
	}

	convergeCmd := &cobra.Command{
		Use:   "converge [preset|workshop.yaml]",
		Short: "compare results across reference steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvergence,
	}
	convergeCmd.Flags().Float64Var(&delta, "delta", 120, "simulated seconds per trial")
	convergeCmd.Flags().Float64SliceVar(&steps, "steps", []float64{10, 5, 2, 1, 0.5}, "reference steps to compare")

	sweepCmd := &cobra.Command{
		Use:   "sweep [fluid]",
		Short: "plot boiling point against altitude",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&minAltitude, "min", 0, "lowest altitude in m")
	sweepCmd.Flags().Float64Var(&maxAltitude, "max", 9000, "highest altitude in m")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 60, "altitudes to evaluate")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset|workshop.yaml]",
		Short: "grid search workshop parameters",
		Long: "Runs every combination of the given parameter ranges and reports the one\n" +
			"minimising the metric. Ranges are name=lo:hi:n, for example ac.kp=200:1600:8.\n" +
			"Parameters: " + strings.Join(optim.ParamNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: runTune,
	}
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "parameter range name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&metric, "metric", "boil_time", "summary metric to minimise")
	tuneCmd.Flags().Float64Var(&duration, "duration", 0, "simulated seconds per trial")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run a timed command scenario and store the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, exportJSONCmd, deleteCmd,
		presetsCmd, fluidsCmd, checkCmd, convergeCmd, sweepCmd, tuneCmd, scriptCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: sentryDSN}); err != nil {
			return fmt.Errorf("sentry: %w", err)
		}
	}
	return nil
}

func registry() (*experiment.Registry, error) {
	engine := config.DefaultEngine()
	if engineFile != "" {
		e, err := config.LoadEngine(engineFile)
		if err != nil {
			return nil, err
		}
		engine = e
	}
	catalog := config.Builtin()
	if fluidsFile != "" {
		if err := catalog.Merge(fluidsFile); err != nil {
			return nil, err
		}
	}
	return experiment.NewRegistry(catalog, engine), nil
}

// build resolves a preset name or workshop path. Flags the user set
// override the workshop.
func build(cmd *cobra.Command, name string) (*experiment.Experiment, error) {
	reg, err := registry()
	if err != nil {
		return nil, err
	}
	w, err := reg.Workshop(name)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Lookup("heater") != nil && flags.Changed("heater") {
		w.HeaterPower = heaterPower
	}
	if flags.Lookup("altitude") != nil && flags.Changed("altitude") {
		w.Altitude = altitude
	}
	if flags.Lookup("mass") != nil && flags.Changed("mass") {
		w.Mass = mass
	}
	return reg.Build(w)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	exp, err := build(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	defer st.Close()

	if resume != "" {
		trace, err := st.LoadTrace(resume)
		if err != nil {
			return err
		}
		if len(trace) == 0 {
			return fmt.Errorf("run %s has no samples", resume)
		}
		if err := exp.Resume(trace[len(trace)-1]); err != nil {
			return err
		}
		logger.Info("resuming", "run", resume, "time", trace[len(trace)-1].Time)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%s)...\n", exp.Workshop.Name, exp.Fluid.Name())
	res, err := exp.Run(ctx, duration, sample, logger)
	if err != nil {
		return err
	}

	runID, err := st.Save(res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n\n", len(res.Trace))
	printSummary(res.Summary)
	return nil
}

func printSummary(s analysis.Summary) {
	event := func(t float64) string {
		if t < 0 {
			return "never"
		}
		return fmt.Sprintf("%.1fs", t)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "boil time\t%s\n", event(s.BoilTime))
	fmt.Fprintf(w, "dry time\t%s\n", event(s.DryTime))
	fmt.Fprintf(w, "peak temperature\t%.2f°C\n", s.PeakTemperature)
	fmt.Fprintf(w, "mean boiling point\t%.2f°C\n", s.MeanBoilingPoint)
	fmt.Fprintf(w, "vaporized\t%sg\n", humanize.FormatFloat("#,###.#", s.Vaporized*1000))
	fmt.Fprintf(w, "residue\t%sg\n", humanize.FormatFloat("#,###.#", s.Residue*1000))
	fmt.Fprintf(w, "room\t%.2f ± %.2f°C\n", s.RoomMean, s.RoomStdDev)
	fmt.Fprintf(w, "peak room pressure\t%s\n", humanize.SIWithDigits(s.PeakRoomPressure, 2, "Pa"))
	fmt.Fprintf(w, "peak humidity\t%.1f%%\n", s.PeakHumidity)
	fmt.Fprintf(w, "condensed\t%sg\n", humanize.FormatFloat("#,###.#", s.Condensed*1000))
	fmt.Fprintf(w, "ac energy\t%sJ\n", humanize.SIWithDigits(s.ACEnergy, 2, ""))
	fmt.Fprintf(w, "samples with alerts\t%d\n", s.Alerts)
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	th := viz.GetTheme(theme)
	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		picked, err := viz.Pick(th)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		name = picked
	}

	exp, err := build(cmd, name)
	if err != nil {
		return err
	}

	// the terminal belongs to the view; logs go to a file or nowhere
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	hostLogger := log.NewWithOptions(out, log.Options{Level: logger.GetLevel(), ReportTimestamp: true})

	h, err := exp.NewHost(hostLogger)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return viz.Run(ctx, h, exp.Workshop, th)
}

func runServe(cmd *cobra.Command, args []string) error {
	name := "sea-level-kitchen"
	if len(args) > 0 {
		name = args[0]
	}
	exp, err := build(cmd, name)
	if err != nil {
		return err
	}
	h, err := exp.NewHost(logger.With("component", "host"))
	if err != nil {
		return err
	}

	if statsAddr != "" {
		stop := server.StartStats(statsAddr)
		defer stop()
		logger.Info("runtime stats", "addr", statsAddr)
	}

	ctx, cancel := signalContext()
	defer cancel()

	hub := server.NewHub(h, logger.With("component", "hub"))
	srv := server.NewServer(addr, hub, logger.With("component", "http"))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return h.Run(ctx) })
	eg.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	eg.Go(func() error { return srv.Serve(ctx) })

	logger.Info("serving", "workshop", exp.Workshop.Name, "addr", addr)
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	workshop := ""
	if len(args) > 0 {
		workshop = args[0]
	}
	st := storage.New(dataDir)
	defer st.Close()
	runs, err := st.List(workshop)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWORKSHOP\tFLUID\tCREATED\tDURATION\tBOIL\tPEAK\tVAPORIZED\tSAMPLES")

	for _, run := range runs {
		boil := "-"
		if run.BoilTime >= 0 {
			boil = fmt.Sprintf("%.0fs", run.BoilTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0fs\t%s\t%.1f°C\t%sg\t%s\n",
			run.ID,
			run.Workshop,
			run.Fluid,
			humanize.Time(run.CreatedAt),
			run.Duration,
			boil,
			run.PeakTemperature,
			humanize.FormatFloat("#,###.#", run.Vaporized*1000),
			humanize.Comma(int64(run.Samples)),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	defer st.Close()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("workshop: %s (%s)\n", meta.Workshop, meta.Fluid)
	fmt.Printf("samples: %d\n\n", len(trace))

	temps := make([]float64, len(trace))
	bps := make([]float64, len(trace))
	room := make([]float64, len(trace))
	liquid := make([]float64, len(trace))
	for i, s := range trace {
		temps[i] = s.Temperature
		bps[i] = s.BoilingPoint
		room[i] = s.RoomTemperature
		liquid[i] = s.LiquidMass * 1000
	}

	fmt.Println(asciigraph.PlotMany([][]float64{temps, bps},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption("pot and boiling point (°C)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(liquid,
		asciigraph.Height(height/2),
		asciigraph.Width(width),
		asciigraph.Caption("liquid (g)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(room,
		asciigraph.Height(height/2),
		asciigraph.Width(width),
		asciigraph.Caption("room (°C)"),
	))
	fmt.Println()
	fmt.Println("temperature against liquid remaining")
	fmt.Println(analysis.NewPortrait(trace).ASCII(width, height))

	if svgOut != "" {
		svg := export.TraceSVG(trace, export.DefaultSeries(), 800, 400)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgOut)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	defer st.Close()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	w, err := st.LoadWorkshop(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(jsonOut, &experiment.Result{
		Workshop: w,
		Fluid:    meta.Fluid,
		Started:  meta.Timestamp,
		Elapsed:  meta.Elapsed,
		Trace:    trace,
		Summary:  meta.Summary,
	})
}

func listFluids(cmd *cobra.Command, args []string) error {
	reg, err := registry()
	if err != nil {
		return err
	}
	catalog := reg.Catalog()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBOILS AT\tSPECIFIC HEAT\tLATENT HEAT\tSOLIDS\tANTOINE RANGE")
	for _, name := range catalog.Names() {
		f, _ := catalog.Get(name)
		a := f.Antoine()
		fmt.Fprintf(w, "%s\t%.2f°C\t%.3f kJ/kg·K\t%.0f kJ/kg\t%.1f%%\t[%g, %g]°C\n",
			name, f.SeaLevelBoilingPoint(), f.SpecificHeat(), f.HeatOfVaporization(),
			f.NonVolatileFraction()*100, a.MinTemp, a.MaxTemp)
	}
	return w.Flush()
}

func checkDocument(cmd *cobra.Command, args []string) error {
	name := args[0]
	reg, err := registry()
	if err != nil {
		return err
	}
	if sc, err := automation.LoadScenario(name); err == nil {
		if _, _, err := sc.Build(reg); err != nil {
			return err
		}
		fmt.Printf("scenario %s ok: %d steps over %.0fs\n", sc.Name, len(sc.Steps), sc.Duration)
		return nil
	}
	exp, err := build(cmd, name)
	if err != nil {
		return err
	}
	fmt.Printf("workshop %s ok: %s, %.2fkg at %.0fm\n", exp.Workshop.Name, exp.Fluid.Name(), exp.Workshop.Mass, exp.Workshop.Altitude)
	return nil
}

func runConvergence(cmd *cobra.Command, args []string) error {
	exp, err := build(cmd, args[0])
	if err != nil {
		return err
	}
	w := exp.Workshop
	bp, err := thermo.BoilingPointAt(thermo.PressureAtAltitude(w.Altitude, nil), exp.Fluid)
	if err != nil {
		return err
	}
	in := sim.Inputs{
		HeaterPower:        w.HeaterPower,
		AmbientTemperature: w.Room.Temperature,
		BoilingPoint:       bp,
	}

	ctx, cancel := signalContext()
	defer cancel()
	study, err := analysis.Convergence(ctx, exp.Fluid, w.Initial(), in, delta, steps)
	if err != nil {
		return err
	}

	fmt.Printf("convergence over %.0fs, reference %.6f°C\n\n", study.Delta, study.Reference)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSUB-STEPS\tFINAL\tERROR")
	for _, p := range study.Points {
		fmt.Fprintf(tw, "%gs\t%d\t%.6f°C\t%.2e\n", p.Step, p.SubSteps, p.Final, p.Error)
	}
	tw.Flush()
	fmt.Printf("\nmonotonic: %t\n", study.Monotonic())
	fmt.Printf("observed order: %.2f\n", study.Order())
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	name := config.DefaultFluid
	if len(args) > 0 {
		name = args[0]
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	f, err := reg.Catalog().Get(name)
	if err != nil {
		return err
	}
	points := analysis.AltitudeSweep(f, minAltitude, maxAltitude, sweepSteps)
	fmt.Printf("%s boiling point, %.0fm to %.0fm\n\n", f.Name(), minAltitude, maxAltitude)
	fmt.Println(analysis.SweepToASCII(points, 70, 20))
	a := f.Antoine()
	for _, pt := range points {
		if pt.Extrapolated {
			fmt.Printf("\nnote: extrapolated beyond the calibrated %g..%g °C range at some altitudes\n", a.MinTemp, a.MaxTemp)
			break
		}
	}
	return nil
}

// parseRange reads name=lo:hi:n.
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("range %q: count must be a positive integer", s)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	base, err := reg.Workshop(args[0])
	if err != nil {
		return err
	}

	var (
		names  []string
		ranges [][]float64
	)
	for _, p := range tuneParams {
		name, r, err := parseRange(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, r)
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, trials, err := optim.NewGridSearch(names, ranges).Search(ctx, base, reg, duration, metric, logger)
	if trials == nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
	for _, t := range trials {
		cols := make([]string, 0, len(names)+1)
		for _, n := range names {
			cols = append(cols, strconv.FormatFloat(t.Params[n], 'g', 6, 64))
		}
		switch {
		case t.Err != nil:
			cols = append(cols, "error: "+t.Err.Error())
		case t.Value < 0:
			cols = append(cols, "never")
		default:
			cols = append(cols, strconv.FormatFloat(t.Value, 'f', 3, 64))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	w.Flush()

	if best == nil {
		return err
	}
	fmt.Printf("\nbest %s = %.3f at", metric, best.Value)
	for _, n := range names {
		fmt.Printf(" %s=%g", n, best.Params[n])
	}
	fmt.Println()
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	res, err := automation.RunScenario(ctx, sc, reg, logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	defer st.Close()
	runID, err := st.Save(res)
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s completed in %v\n", sc.Name, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n\n", runID)
	printSummary(res.Summary)
	return nil
}
