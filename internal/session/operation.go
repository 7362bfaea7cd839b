package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"fauxbar/internal/util"
)

// CommandOperation runs path with args. The command's output is logged at
// debug level and never reaches stdout, which belongs to the bar.
func CommandOperation(runner util.CmdRunner, path string, args []string, logger *zap.Logger) Operation {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	title := filepath.Base(path)
	return Operation{
		Title: title,
		Exec: func(ctx context.Context) error {
			log := logger.With(zap.String("cmd", title))
			log.Debug("exec", zap.String("command", util.ShellQuote(path, args)))

			res, err := runner.Run(ctx, util.CmdSpec{
				Path: path,
				Args: args,
				StdoutLine: func(line string) {
					log.Debug("stdout", zap.String("line", line))
				},
				StderrLine: func(line string) {
					log.Debug("stderr", zap.String("line", line))
				},
			})
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", title, ctx.Err())
			}
			if err != nil {
				if len(res.StderrTail) > 0 {
					log.Warn("command failed", zap.Int("code", res.Code), zap.Strings("stderr_tail", res.StderrTail))
				}
				return err
			}
			return nil
		},
	}
}

// SleepOperation waits for d, then succeeds, or fails with failCode when it
// is non-zero. A non-positive d waits until ctx is cancelled.
func SleepOperation(d time.Duration, failCode int) Operation {
	return Operation{
		Title: "simulate",
		Exec: func(ctx context.Context) error {
			if d <= 0 {
				<-ctx.Done()
				return ctx.Err()
			}
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
			if failCode != 0 {
				return &util.ExitCodeError{Code: failCode, Err: errors.New("simulated failure")}
			}
			return nil
		},
	}
}
