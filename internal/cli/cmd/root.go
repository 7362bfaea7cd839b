package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"fauxbar/internal/config"
	"fauxbar/internal/logging"
)

const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitCommandFailed = 2
	ExitInterrupted   = 130
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type ctxKey string

const envKey ctxKey = "env"

// env is what PersistentPreRunE resolves once for every subcommand.
type env struct {
	Settings   config.Settings
	Logger     *zap.Logger
	ConfigFile string // empty when no file was read
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "fauxbar",
		Short: "A reassuring progress bar for work that reports no progress",
		Long: "Fauxbar shows a simulated progress bar while a command runs. The bar starts fast, " +
			"slows down on a logarithmic curve and stops short of the end until the command " +
			"actually finishes; then it snaps to 100%.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(cmd.Root(), cfgFile)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey, e))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/fauxbar/config.yaml)")
	bindPersistentFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newCurveCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindPersistentFlags(fs *pflag.FlagSet) {
	d := config.Defaults()

	fs.Float64("start", d.Start, "Value the bar starts from")
	fs.Float64("end", d.End, "Value the bar completes at")
	fs.Float64("stop-threshold", d.Animation.StopThreshold, "Percent of end where simulated growth stops")
	fs.Int("interval", d.Animation.IntervalDelay, "Milliseconds between ticks")
	fs.Float64("increment-speed", d.Animation.IncrementSpeed, "Accumulator step in the ramp phase")
	fs.Float64("middle-speed", d.Animation.MiddlePhaseSpeed, "Accumulator step in the accelerate phase")
	fs.Float64("final-speed", d.Animation.FinalPhaseSpeed, "Accumulator step in the settle phase")
	fs.Float64("first-phase", d.Animation.FirstPhaseDuration, "Percent of the range that ends the ramp phase")
	fs.Float64("last-phase", d.Animation.LastPhaseDuration, "Percent of the range that starts the settle phase")

	fs.Float64("transition-speed", d.Animation.TransitionSpeed, "Bar animation time in seconds")
	fs.String("transition-effect", d.Animation.TransitionEffect, "Bar animation: ease-out, ease-in, ease-in-out, linear, none")
	fs.String("color", d.Bar.Color, "Solid bar color (hex or ANSI); empty uses a gradient")
	fs.Int("width", d.Bar.Width, "Maximum bar width in cells")
	fs.String("title", d.Bar.Title, "Title shown above the bar")

	fs.String("log-level", d.Log.Level, "Log level: debug, info, warn, error")
	fs.Bool("log-dev", d.Log.Development, "Human-readable development logs")
	fs.Bool("no-ui", d.NoUI, "Disable the TUI; print progress lines instead")
	fs.String("metrics-addr", d.MetricsAddr, "Serve Prometheus metrics on this address (e.g. :9090)")
}

// loadEnv resolves settings with precedence flag > env > config file >
// default, then builds the logger.
func loadEnv(root *cobra.Command, cfgFile string) (env, error) {
	v := viper.New()
	if err := config.Init(v, root, cfgFile); err != nil {
		return env{}, err
	}
	s, err := config.Load(v)
	if err != nil {
		return env{}, err
	}
	logger, err := logging.New(s.Log.Level, s.Log.Development)
	if err != nil {
		return env{}, err
	}
	return env{Settings: s, Logger: logger, ConfigFile: v.ConfigFileUsed()}, nil
}

func envFrom(cmd *cobra.Command) (env, error) {
	e, ok := cmd.Context().Value(envKey).(env)
	if !ok {
		return env{}, errors.New("configuration not loaded")
	}
	return e, nil
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
