// Package progress turns engine snapshots into output for people and logs.
package progress

import (
	"time"

	"fauxbar/internal/engine"
)

// Stage is the user-facing state of the simulated operation.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageRunning   Stage = "running"
	StagePaused    Stage = "paused"
	StageStalled   Stage = "stalled"
	StageCompleted Stage = "completed"
	StageFailed    Stage = "failed"
)

// StageOf derives the stage from a snapshot. StageFailed is never derived;
// it only comes from a Result.
func StageOf(s engine.Snapshot) Stage {
	switch {
	case s.Completed:
		return StageCompleted
	case s.Running:
		return StageRunning
	case s.Stalled:
		return StageStalled
	case s.Progress > s.Start:
		return StagePaused
	default:
		return StageIdle
	}
}

// Result is reported once when the wrapped operation ends.
type Result struct {
	Title    string
	Err      error // nil on success
	Elapsed  time.Duration
	ExitCode int
}

// Reporter observes engine snapshots and the final operation result.
type Reporter interface {
	engine.Observer
	Result(r Result)
}
