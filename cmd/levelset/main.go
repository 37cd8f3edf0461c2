package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/dago-levelset/internal/config"
	"github.com/aescanero/dago-levelset/internal/plotter"
	"github.com/aescanero/dago-levelset/internal/render"
)

const appName = "levelset"

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func usage() {
	fmt.Printf(`levelset %s (built %s)

Usage:
  %s draw     -expr <f> -n <N> [-region <cel>] [-size px] [-out file.png]
  %s animate  -expr <f> -n <N> [-frames 20] [-trace] [-speed x1] [-out file.gif] [-play]
  %s validate -expr <f>
  %s repl
  %s version

Grid bounds, resolution and planner defaults come from GRID_*, FRAME_COUNT,
ROUND_DIGITS, LEVEL_POLICY and ANIMATION_SPEED.
`, Version, BuildTime, appName, appName, appName, appName, appName)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "draw":
		os.Exit(cmdDraw(os.Args[2:]))
	case "animate":
		os.Exit(cmdAnimate(os.Args[2:]))
	case "validate":
		os.Exit(cmdValidate(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, os.Args[1])
		usage()
		os.Exit(2)
	}
}

// session holds what every subcommand needs
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	plotter *plotter.Plotter
}

func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := plotter.DefaultOptions()
	opts.Sampling = cfg.Sampling()
	opts.Planner = cfg.PlannerOptions()
	opts.Speed = cfg.AnimationSpeed
	opts.LeaveTrace = cfg.LeaveTrace
	opts.RegionEnabled = cfg.RegionEnabled
	opts.DrawTitle = cfg.DrawTitle
	opts.AnimationTitle = cfg.AnimationTitle

	p, err := plotter.New(opts, nil, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, plotter: p}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// initLogger builds a console logger on stderr so stdout stays clean
func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	// CLI output is the result; only warnings and up are logged by default
	if zapLevel < zapcore.WarnLevel && os.Getenv("LOG_LEVEL") == "" {
		zapLevel = zapcore.WarnLevel
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapConfig.Build()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// fail reports err with its kind and returns the exit code
func fail(err error) int {
	kind := plotter.Kind(err)
	fmt.Fprintf(os.Stderr, "%s: %s: %v\n", appName, kind, err)
	if errors.Is(err, plotter.ErrInvalidRequest) {
		return 2
	}
	return 1
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// levelFlag is a float flag that remembers whether it was set
type levelFlag struct {
	value float64
	set   bool
}

func (f *levelFlag) String() string { return fmt.Sprint(f.value) }

func (f *levelFlag) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid level %q", s)
	}
	f.value = v
	f.set = true
	return nil
}

func (f *levelFlag) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

func newRenderer(s *session, size int) (*render.Renderer, error) {
	return render.New(s.cfg.Sampling().Bounds, size, size)
}

// writeFile creates path and hands it to write
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(appName+" "+name, flag.ContinueOnError)
}
