package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fauxbar/internal/session"
)

func newSimulateCmd() *cobra.Command {
	var (
		duration time.Duration
		stall    bool
		failCode int
	)
	cmd := &cobra.Command{
		Use:           "simulate",
		Short:         "Show the bar for a timed fake operation",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if failCode < 0 || failCode > 255 {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("invalid --fail: %d (valid: 0-255)", failCode)}
			}
			d := duration
			if stall {
				d = 0
			} else if d <= 0 {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("--duration must be > 0 (use --stall to wait forever)")}
			}
			return runSession(cmd.Context(), e, session.SleepOperation(d, failCode), cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "How long the fake operation takes")
	cmd.Flags().BoolVar(&stall, "stall", false, "Never finish; wait for an interrupt")
	cmd.Flags().IntVar(&failCode, "fail", 0, "Fail with this exit code instead of succeeding")
	return cmd
}
