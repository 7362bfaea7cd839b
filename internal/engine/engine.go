// Package engine simulates a progress value for an operation that reports none.
package engine

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ln11 = math.Log(11)

// Engine owns the simulation state and its ticker. All methods are safe for
// concurrent use; they are serialized by a single lock.
type Engine struct {
	cfg       Config
	observers []Observer
	logger    *zap.Logger

	mu          sync.Mutex
	progress    float64
	accumulator float64
	phase       Phase
	running     bool
	completed   bool
	stalled     bool
	closed      bool
	stop        chan struct{} // non-nil while the ticker goroutine is live
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer. Observers are notified in
// registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithLogger sets the logger used for lifecycle debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New validates cfg and returns an idle engine at cfg.Start.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		progress: cfg.Start,
		phase:    PhaseRamp,
	}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Activate starts periodic ticking. It does nothing if the engine is already
// running, closed, or has reached End.
func (e *Engine) Activate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.stop != nil || e.progress >= e.cfg.End {
		return
	}
	stop := make(chan struct{})
	e.stop = stop
	e.running = true
	e.stalled = false
	go e.loop(stop)

	e.logger.Debug("progress activated",
		zap.Float64("progress", e.progress),
		zap.Stringer("phase", e.phase),
		zap.Duration("interval", e.cfg.TickInterval))
	e.emitLocked(EventActivate)
}

// Deactivate stops ticking and keeps the current position.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stop == nil {
		return
	}
	e.haltLocked()
	e.logger.Debug("progress deactivated", zap.Float64("progress", e.progress))
	e.emitLocked(EventDeactivate)
}

// Tick advances the simulation by one step. The ticker goroutine calls it
// once per interval; tests and custom drivers may call it directly.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked()
}

// Complete snaps progress to End and stops ticking. The growth state is
// rewound so that a Reset followed by Activate starts clean.
func (e *Engine) Complete() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked()
	e.progress = e.cfg.End
	e.accumulator = 0
	e.phase = PhaseRamp
	e.completed = true
	e.stalled = false
	e.logger.Debug("progress completed", zap.Float64("progress", e.progress))
	e.emitLocked(EventComplete)
}

// Reset returns the engine to its initial state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked()
	e.progress = e.cfg.Start
	e.accumulator = 0
	e.phase = PhaseRamp
	e.completed = false
	e.stalled = false
	e.logger.Debug("progress reset", zap.Float64("progress", e.progress))
	e.emitLocked(EventReset)
}

// Close releases the ticker. Subsequent Activate calls are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltLocked()
	e.closed = true
}

// Running reports whether the ticker is scheduled.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked("")
}

func (e *Engine) loop(stop chan struct{}) {
	t := time.NewTicker(e.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			e.mu.Lock()
			// A tick that raced with Deactivate/Complete/Reset must not land.
			if e.stop == stop {
				e.tickLocked()
			}
			e.mu.Unlock()
		}
	}
}

func (e *Engine) tickLocked() {
	if e.completed {
		return
	}

	e.accumulator += e.cfg.speed(e.phase)

	var shape float64
	if e.accumulator < 1 {
		shape = math.Sqrt(e.accumulator) * 10
	} else {
		shape = math.Log(e.accumulator+1) / ln11 * e.cfg.span()
	}
	candidate := e.cfg.Start + shape

	// The last-phase check only runs after the first-phase one has fired,
	// even though its default threshold (40) is lower than the first (70).
	switch {
	case e.phase == PhaseRamp && candidate >= e.cfg.firstThreshold():
		e.setPhaseLocked(PhaseAccelerate, candidate)
	case e.phase == PhaseAccelerate && candidate >= e.cfg.lastThreshold():
		e.setPhaseLocked(PhaseSettle, candidate)
	}

	ceiling := e.ceilingLocked()
	if candidate >= ceiling {
		e.progress = ceiling
		if !e.stalled {
			e.logger.Debug("progress reached stop threshold",
				zap.Float64("ceiling", ceiling),
				zap.Float64("accumulator", e.accumulator))
		}
		e.stalled = true
		e.haltLocked()
	} else {
		e.progress = candidate
	}
	e.emitLocked(EventTick)
}

func (e *Engine) setPhaseLocked(p Phase, at float64) {
	e.logger.Debug("progress phase change",
		zap.Stringer("from", e.phase),
		zap.Stringer("to", p),
		zap.Float64("progress", at),
		zap.Float64("accumulator", e.accumulator))
	e.phase = p
}

// ceilingLocked is the highest value a tick may produce.
func (e *Engine) ceilingLocked() float64 {
	if e.completed {
		return e.cfg.End
	}
	return e.cfg.stopCeiling()
}

func (e *Engine) haltLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.running = false
}

func (e *Engine) snapshotLocked(ev Event) Snapshot {
	return Snapshot{
		Event:       ev,
		Progress:    e.progress,
		Start:       e.cfg.Start,
		End:         e.cfg.End,
		Ceiling:     e.ceilingLocked(),
		Accumulator: e.accumulator,
		Phase:       e.phase,
		Running:     e.running,
		Completed:   e.completed,
		Stalled:     e.stalled,
	}
}

func (e *Engine) emitLocked(ev Event) {
	if len(e.observers) == 0 {
		return
	}
	s := e.snapshotLocked(ev)
	for _, o := range e.observers {
		o.Observe(s)
	}
}
