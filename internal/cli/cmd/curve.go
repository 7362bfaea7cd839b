package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"fauxbar/internal/session"
	"fauxbar/internal/util/format"
)

func newCurveCmd() *cobra.Command {
	var (
		maxTicks int
		every    int
	)
	cmd := &cobra.Command{
		Use:           "curve",
		Short:         "Print the tick-by-tick progress curve for the current settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			points, err := session.Curve(e.Settings, maxTicks, every)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return writeCurve(cmd.OutOrStdout(), points)
		},
	}
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 10000, "Stop after this many ticks if the threshold is not reached")
	cmd.Flags().IntVar(&every, "every", 100, "Print every Nth tick (the first and last are always printed)")
	return cmd
}

func writeCurve(w io.Writer, points []session.CurvePoint) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TICK", "ELAPSED", "ACCUMULATOR", "PHASE", "PROGRESS", "")
	for _, p := range points {
		mark := ""
		if p.Stalled {
			mark = "stop"
		}
		t.Row(
			strconv.Itoa(p.Tick),
			format.Elapsed(p.Elapsed)+fmt.Sprintf(".%03d", p.Elapsed.Milliseconds()%1000),
			strconv.FormatFloat(p.Accumulator, 'f', 4, 64),
			p.Phase.String(),
			strconv.FormatFloat(p.Progress, 'f', 3, 64),
			mark,
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
