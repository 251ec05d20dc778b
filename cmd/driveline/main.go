package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/edaniels/golog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/driveline/internal/chassis"
	"github.com/san-kum/driveline/internal/config"
	"github.com/san-kum/driveline/internal/geo"
	"github.com/san-kum/driveline/internal/odom"
	"github.com/san-kum/driveline/internal/simbot"
	"github.com/san-kum/driveline/internal/telemetry"
	"github.com/san-kum/driveline/internal/tui"
	"github.com/san-kum/driveline/internal/tune"
)

var (
	configFile string
	preset     string
	route      string
	finalTurn  float64
	timeout    time.Duration
	jsonOut    string
	csvOut     string
	svgOut     string
	plot       bool
	debugPose  bool

	tuneTarget   string
	tuneDuration float64
	tuneWorkers  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driveline",
		Short: "closed-loop motion control for differential-drive robots",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "drive a route on the simulated robot",
		RunE:  runRoute,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "robot profile (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset profile")
	runCmd.Flags().StringVar(&route, "route", "20,0;20,20;0,20", "waypoints as x,y;x,y")
	runCmd.Flags().Float64Var(&finalTurn, "turn", 0, "final heading (deg)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-motion timeout")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "export telemetry json")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "export telemetry csv")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "export trajectory svg")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot telemetry after the run")
	runCmd.Flags().BoolVar(&debugPose, "debug-pose", false, "trace odometry pose")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive a route with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "robot profile (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset profile")
	liveCmd.Flags().StringVar(&route, "route", "20,0;20,20;0,20", "waypoints as x,y;x,y")
	liveCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-motion timeout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list tuning presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the default profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(config.DefaultProfile())
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search pid gains on the simulated robot",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&tuneTarget, "target", "30,20", "episode target as x,y")
	tuneCmd.Flags().Float64Var(&tuneDuration, "duration", 8, "episode length (s)")
	tuneCmd.Flags().IntVar(&tuneWorkers, "workers", 0, "parallel evaluators (0 = all cpus)")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, configCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadProfile() (*config.Profile, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		return p, nil
	}
	return config.DefaultProfile(), nil
}

func parseRoute(s string) ([]geo.Point, error) {
	var points []geo.Point
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		coords := strings.Split(part, ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("bad waypoint %q", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, err
		}
		points = append(points, geo.Point{X: x, Y: y})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("empty route")
	}
	return points, nil
}

// buildRig wires the simulated robot to an estimator and chassis.
func buildRig(profile *config.Profile, logger golog.Logger) (*simbot.Robot, *odom.Estimator, *chassis.Chassis) {
	robot := simbot.New()
	if profile.Odom.TPU > 0 {
		robot.TPU = profile.Odom.TPU
	}

	est := odom.New(
		robot.XEncoder(), robot.YEncoder(), robot.IMU(),
		robot.TPU,
		geo.Point{X: profile.Odom.OffsetX, Y: profile.Odom.OffsetY},
		profile.Odom.TrackerAngle,
		logger,
	)
	ch := chassis.New(
		robot.Drivetrain(), est,
		profile.MoveOptions(), profile.TurnOptions(), profile.DefaultOptions(),
		logger,
	)
	return robot, est, ch
}

// stepPlant advances the simulated robot in real time until stop is
// closed.
func stepPlant(robot *simbot.Robot, stop chan struct{}) {
	const dt = 2 * time.Millisecond
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			robot.Step(dt.Seconds())
		}
	}
}

func runRoute(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	points, err := parseRoute(route)
	if err != nil {
		return err
	}

	logger := golog.NewDevelopmentLogger("driveline")
	robot, est, ch := buildRig(profile, logger)

	rec := telemetry.NewRecorder()
	ch.AddObserver(rec)

	stop := make(chan struct{})
	go stepPlant(robot, stop)
	defer close(stop)

	if err := est.Start(); err != nil {
		return err
	}
	defer est.Stop()
	est.SetDebug(debugPose)

	opts := chassis.Options{Timeout: chassis.Ptr(timeout)}
	for i, p := range points {
		logger.Infof("waypoint %d: (%.1f, %.1f)", i+1, p.X, p.Y)
		ch.Move(p, opts)
	}
	if finalTurn != 0 {
		logger.Infof("final turn: %.1f deg", finalTurn)
		ch.Turn(finalTurn, opts)
	}
	ch.Stop(true)

	pose := est.Pose()
	logger.Infof("final pose (%.2f, %.2f, %.1f deg)", pose.X, pose.Y, geo.ToDeg(pose.Theta))

	samples := rec.Samples()
	last := points[len(points)-1]

	report := telemetry.Analyze(samples, last, profile.Move.Exit)
	logger.Infow("run summary",
		"path_length", fmt.Sprintf("%.1f", report.PathLength),
		"final_error", fmt.Sprintf("%.2f", report.FinalError),
		"settle_s", fmt.Sprintf("%.2f", report.SettleTime),
		"peak_speed", fmt.Sprintf("%.0f", report.PeakSpeed),
		"settled", report.Settled,
	)

	if plot {
		fmt.Println(telemetry.DistancePlot(samples, last))
		fmt.Println(telemetry.SpeedPlot(samples))
	}
	if jsonOut != "" {
		if err := telemetry.ExportJSON(jsonOut, preset, route, samples); err != nil {
			return err
		}
		logger.Infof("telemetry written to %s", jsonOut)
	}
	if csvOut != "" {
		if err := telemetry.ExportCSV(csvOut, samples); err != nil {
			return err
		}
		logger.Infof("telemetry written to %s", csvOut)
	}
	if svgOut != "" {
		if err := telemetry.ExportSVG(svgOut, samples, 600, 450); err != nil {
			return err
		}
		logger.Infof("trajectory written to %s", svgOut)
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	targets, err := parseRoute(tuneTarget)
	if err != nil {
		return err
	}

	trial := tune.DefaultTrial()
	trial.Target = targets[0]
	trial.Duration = tuneDuration

	grid := tune.Grid{
		LinKp: []float64{3, 5, 7},
		LinKd: []float64{10, 20, 30},
		AngKp: []float64{30, 45, 60},
		AngKd: []float64{60, 100, 140},
	}

	logger := golog.NewDevelopmentLogger("driveline")
	logger.Infof("evaluating %d candidates against (%.1f, %.1f)",
		len(grid.Candidates()), trial.Target.X, trial.Target.Y)

	best, err := tune.Search(cmd.Context(), trial, grid, tuneWorkers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tKP\tKI\tKD")
	fmt.Fprintf(w, "lin\t%.1f\t%.1f\t%.1f\n",
		best.Candidate.Lin.Kp, best.Candidate.Lin.Ki, best.Candidate.Lin.Kd)
	fmt.Fprintf(w, "ang\t%.1f\t%.1f\t%.1f\n",
		best.Candidate.Ang.Kp, best.Candidate.Ang.Ki, best.Candidate.Ang.Kd)
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Infof("best cost %.2f over %d candidates", best.Cost, best.Evaluated)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	points, err := parseRoute(route)
	if err != nil {
		return err
	}

	logger := golog.NewLogger("driveline")
	robot, est, ch := buildRig(profile, logger)

	stop := make(chan struct{})
	go stepPlant(robot, stop)
	defer close(stop)

	if err := est.Start(); err != nil {
		return err
	}
	defer est.Stop()

	opts := chassis.Options{
		Timeout: chassis.Ptr(timeout),
		Async:   chassis.Ptr(true),
	}
	go func() {
		for _, p := range points {
			ch.Move(p, opts)
			ch.Wait()
		}
		ch.Stop(true)
	}()

	program := tea.NewProgram(tui.NewLive(est, robot))
	if _, err := program.Run(); err != nil {
		return err
	}
	ch.Stop(true)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMOVE SPEED\tTURN SPEED\tMOVE EXIT\tACCEL")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.1f\t%.0f\n",
			name, p.Move.Speed, p.Turn.Speed, p.Move.Exit, p.Defaults.Accel)
	}
	return w.Flush()
}
