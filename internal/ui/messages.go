package ui

import (
	"time"

	"fauxbar/internal/engine"
	"fauxbar/internal/progress"
)

type snapshotMsg struct {
	S engine.Snapshot
}

type opDoneMsg struct {
	R progress.Result
}

type clockMsg time.Time

type quitMsg struct{}
