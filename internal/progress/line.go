package progress

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"fauxbar/internal/engine"
	"fauxbar/internal/util/format"
)

// LineReporter writes one line per meaningful change, for terminals without a
// TUI and for piped output. Tick snapshots are throttled; every other event
// is written immediately.
type LineReporter struct {
	w        io.Writer
	prefix   string
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	lastWrite time.Time
	lastTenth int64
	wrote     bool
}

// LineOption configures a LineReporter.
type LineOption func(*LineReporter)

// WithInterval sets the minimum spacing between tick lines. Default: 1s.
func WithInterval(d time.Duration) LineOption {
	return func(r *LineReporter) {
		r.interval = d
	}
}

// WithPrefix sets the bracketed line prefix. Default: "fauxbar".
func WithPrefix(p string) LineOption {
	return func(r *LineReporter) {
		r.prefix = p
	}
}

// WithClock overrides time.Now (useful for testing).
func WithClock(now func() time.Time) LineOption {
	return func(r *LineReporter) {
		r.now = now
	}
}

// NewLineReporter creates a reporter writing to w.
func NewLineReporter(w io.Writer, opts ...LineOption) *LineReporter {
	r := &LineReporter{
		w:         w,
		prefix:    "fauxbar",
		interval:  time.Second,
		now:       time.Now,
		lastTenth: -1,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Observe implements engine.Observer.
func (r *LineReporter) Observe(s engine.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	tenth := int64(math.Floor(s.Percent() * 10))
	if s.Event == engine.EventTick && !s.Stalled && r.wrote {
		if tenth == r.lastTenth || now.Sub(r.lastWrite) < r.interval {
			return
		}
	}
	r.lastWrite = now
	r.lastTenth = tenth
	r.wrote = true

	// valuenow/valuemin/valuemax mirror what an accessible progressbar exposes.
	fmt.Fprintf(r.w, "[%s] %s %s value=%s min=%s max=%s phase=%s\n",
		r.prefix,
		StageOf(s),
		format.Percent(s.Percent()),
		format.Value(s.Progress),
		format.Value(s.Start),
		format.Value(s.End),
		s.Phase,
	)
}

// Result implements Reporter.
func (r *LineReporter) Result(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Err != nil {
		fmt.Fprintf(r.w, "[%s] %s after %s: %v\n", r.prefix, StageFailed, format.Elapsed(res.Elapsed), res.Err)
		return
	}
	fmt.Fprintf(r.w, "[%s] done in %s\n", r.prefix, format.Elapsed(res.Elapsed))
}
