package session

import (
	"fmt"
	"time"

	"fauxbar/internal/config"
	"fauxbar/internal/engine"
)

// CurvePoint is one row of the precomputed tick table.
type CurvePoint struct {
	Tick        int
	Elapsed     time.Duration // Tick * interval, as if driven by the ticker
	Accumulator float64
	Phase       engine.Phase
	Progress    float64
	Stalled     bool
}

// Curve drives a fresh engine by hand and records every every-th tick. It
// stops at the first clamped tick or after maxTicks, whichever comes first;
// the final tick is always included.
func Curve(st config.Settings, maxTicks, every int) ([]CurvePoint, error) {
	if maxTicks <= 0 {
		return nil, fmt.Errorf("max ticks must be > 0, got %d", maxTicks)
	}
	if every <= 0 {
		every = 1
	}
	cfg := st.Engine()

	var last engine.Snapshot
	e, err := engine.New(cfg, engine.WithObserver(engine.ObserverFunc(func(s engine.Snapshot) {
		last = s
	})))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()

	var points []CurvePoint
	for i := 1; i <= maxTicks; i++ {
		e.Tick()
		final := last.Stalled || i == maxTicks
		if i%every == 0 || i == 1 || final {
			points = append(points, CurvePoint{
				Tick:        i,
				Elapsed:     time.Duration(i) * cfg.TickInterval,
				Accumulator: last.Accumulator,
				Phase:       last.Phase,
				Progress:    last.Progress,
				Stalled:     last.Stalled,
			})
		}
		if final {
			break
		}
	}
	return points, nil
}
