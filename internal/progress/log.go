package progress

import (
	"go.uber.org/zap"

	"fauxbar/internal/engine"
)

// LogReporter emits structured logs for every snapshot at debug level and the
// final result at info (or error on failure).
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter wires a zap logger to the Reporter interface.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

// Observe implements engine.Observer.
func (r *LogReporter) Observe(s engine.Snapshot) {
	if ce := r.logger.Check(zap.DebugLevel, "progress"); ce != nil {
		ce.Write(
			zap.String("event", string(s.Event)),
			zap.Float64("value", s.Progress),
			zap.Float64("percent", s.Percent()),
			zap.Float64("accumulator", s.Accumulator),
			zap.Stringer("phase", s.Phase),
			zap.String("stage", string(StageOf(s))),
			zap.Bool("running", s.Running),
		)
	}
}

// Result implements Reporter.
func (r *LogReporter) Result(res Result) {
	fields := []zap.Field{
		zap.String("title", res.Title),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("exit_code", res.ExitCode),
	}
	if res.Err != nil {
		r.logger.Error("operation failed", append(fields, zap.Error(res.Err))...)
		return
	}
	r.logger.Info("operation completed", fields...)
}
