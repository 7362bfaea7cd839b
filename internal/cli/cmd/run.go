package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fauxbar/internal/metrics"
	"fauxbar/internal/session"
	"fauxbar/internal/util"
	"fauxbar/internal/util/deps"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command behind a simulated progress bar",
		Example: `  fauxbar run -- make build
  fauxbar run --no-ui --title backup -- rsync -a src/ dst/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			path, err := deps.Resolve(args[0])
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			op := session.CommandOperation(util.NewDefaultRunner(), path, args[1:], e.Logger.Named("cmd"))
			return runSession(cmd.Context(), e, op, cmd.OutOrStdout())
		},
	}
	// Everything after the command name belongs to the command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// runSession drives op through a session.Service and maps the outcome to an
// exit code. It also owns the optional metrics endpoint for the run.
func runSession(ctx context.Context, e env, op session.Operation, out io.Writer) error {
	defer func() { _ = e.Logger.Sync() }()

	opts := []session.Option{
		session.WithSettings(e.Settings),
		session.WithLogger(e.Logger),
		session.WithOutput(out),
		session.WithUI(!e.Settings.NoUI && isTerminal()),
	}

	if e.Settings.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rep, err := metrics.NewReporter(reg)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		opts = append(opts, session.WithReporter(rep))

		mctx, stop := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(mctx, e.Settings.MetricsAddr, metrics.NewRouter(reg, rep), e.Logger.Named("metrics")); err != nil {
				e.Logger.Error("status server", zap.Error(err))
			}
		}()
		defer func() {
			stop()
			wg.Wait()
		}()
	}

	r, err := session.NewService(opts...).Run(ctx, op)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return exitFor(r.Err, r.ExitCode)
}

// exitFor maps an operation outcome to the process exit status.
func exitFor(opErr error, code int) error {
	switch {
	case opErr == nil:
		return nil
	case errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded):
		return &ExitError{Code: ExitInterrupted, Err: fmt.Errorf("interrupted: %w", opErr)}
	case code > 0:
		return &ExitError{Code: code, Err: opErr}
	default:
		return &ExitError{Code: ExitCommandFailed, Err: opErr}
	}
}
