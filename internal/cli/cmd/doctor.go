package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fauxbar/internal/config"
	"fauxbar/internal/dirs"
	"fauxbar/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	var initConfig bool
	cmd := &cobra.Command{
		Use:           "doctor [command]",
		Short:         "Show the resolved configuration, terminal detection and command lookup",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			out := cmd.OutOrStdout()

			if initConfig {
				path, err := dirs.ConfigFile()
				if err != nil {
					return &ExitError{Code: ExitCLIError, Err: err}
				}
				if err := config.WriteDefaults(path); err != nil {
					return &ExitError{Code: ExitCLIError, Err: err}
				}
				fmt.Fprintf(out, "Wrote %s\n", path)
			}

			cfgFile := e.ConfigFile
			if cfgFile == "" {
				if def, err := dirs.ConfigFile(); err == nil {
					cfgFile = def + " (not found)"
				} else {
					cfgFile = "(none)"
				}
			}
			s := e.Settings
			c := s.Engine()
			fmt.Fprintf(out, "Config:    %s\n", cfgFile)
			fmt.Fprintf(out, "Terminal:  %t (no-ui=%t)\n", isTerminal(), s.NoUI)
			fmt.Fprintf(out, "Range:     %g..%g, stops at %g%%\n", c.Start, c.End, c.StopThreshold)
			fmt.Fprintf(out, "Interval:  %s\n", c.TickInterval)
			fmt.Fprintf(out, "Speeds:    ramp=%g accelerate=%g settle=%g\n", c.IncrementSpeed, c.MiddlePhaseSpeed, c.FinalPhaseSpeed)
			fmt.Fprintf(out, "Phases:    first=%g%% last=%g%%\n", c.FirstPhaseDuration, c.LastPhaseDuration)
			fmt.Fprintf(out, "Animation: %s %gs\n", s.Animation.TransitionEffect, s.Animation.TransitionSpeed)
			if s.MetricsAddr != "" {
				fmt.Fprintf(out, "Metrics:   %s/metrics\n", s.MetricsAddr)
			}

			if len(args) == 1 {
				path, err := deps.Resolve(args[0])
				if err != nil {
					return &ExitError{Code: ExitCLIError, Err: err}
				}
				fmt.Fprintf(out, "Command:   %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&initConfig, "init-config", false, "Write the default config file if it does not exist")
	return cmd
}
