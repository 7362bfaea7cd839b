// Package metrics exports the simulated progress via Prometheus.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"fauxbar/internal/engine"
	"fauxbar/internal/progress"
	"fauxbar/internal/util/format"
)

// Reporter owns the collectors and updates them from engine snapshots.
type Reporter struct {
	value    prometheus.Gauge
	fraction prometheus.Gauge
	phase    *prometheus.GaugeVec
	running  prometheus.Gauge
	events   *prometheus.CounterVec
	results  *prometheus.CounterVec
	elapsed  prometheus.Histogram

	mu     sync.Mutex
	last   engine.Snapshot
	result *progress.Result
}

// NewReporter registers the collectors against reg.
func NewReporter(reg prometheus.Registerer) (*Reporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Reporter{
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fauxbar_progress_value",
			Help: "Last emitted progress value in the configured range.",
		}),
		fraction: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fauxbar_progress_ratio",
			Help: "Rendered progress position between 0 and 1.",
		}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fauxbar_phase",
			Help: "1 for the current growth phase, 0 otherwise.",
		}, []string{"phase"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fauxbar_running",
			Help: "1 while the tick timer is scheduled.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fauxbar_events_total",
			Help: "Engine transitions partitioned by event.",
		}, []string{"event"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fauxbar_operations_total",
			Help: "Finished operations partitioned by result.",
		}, []string{"result"}),
		elapsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fauxbar_operation_duration_seconds",
			Help:    "Wall time of finished operations.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
	for _, c := range []prometheus.Collector{
		r.value,
		r.fraction,
		r.phase,
		r.running,
		r.events,
		r.results,
		r.elapsed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return r, nil
}

// Observe implements engine.Observer.
func (r *Reporter) Observe(s engine.Snapshot) {
	r.value.Set(s.Progress)
	r.fraction.Set(s.Fraction())
	for _, p := range []engine.Phase{engine.PhaseRamp, engine.PhaseAccelerate, engine.PhaseSettle} {
		v := 0.0
		if p == s.Phase {
			v = 1
		}
		r.phase.WithLabelValues(p.String()).Set(v)
	}
	if s.Running {
		r.running.Set(1)
	} else {
		r.running.Set(0)
	}
	r.events.WithLabelValues(string(s.Event)).Inc()

	r.mu.Lock()
	r.last = s
	r.mu.Unlock()
}

// Result implements progress.Reporter.
func (r *Reporter) Result(res progress.Result) {
	label := "success"
	if res.Err != nil {
		label = "error"
	}
	r.results.WithLabelValues(label).Inc()
	if res.Elapsed > 0 {
		r.elapsed.Observe(res.Elapsed.Seconds())
	}

	r.mu.Lock()
	r.result = &res
	r.mu.Unlock()
}

// Status is the JSON body served at /progress.
type Status struct {
	Stage   progress.Stage `json:"stage"`
	Event   engine.Event   `json:"event,omitempty"`
	Value   float64        `json:"value"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
	Percent float64        `json:"percent"`
	Phase   string         `json:"phase"`
	Running bool           `json:"running"`
	Elapsed string         `json:"elapsed,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Status returns the latest snapshot, plus the outcome once there is one.
func (r *Reporter) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.last
	st := Status{
		Stage:   progress.StageOf(s),
		Event:   s.Event,
		Value:   s.Progress,
		Min:     s.Start,
		Max:     s.End,
		Percent: s.Percent(),
		Phase:   s.Phase.String(),
		Running: s.Running,
	}
	if r.result != nil {
		st.Elapsed = format.Elapsed(r.result.Elapsed)
		if r.result.Err != nil {
			st.Stage = progress.StageFailed
			st.Error = r.result.Err.Error()
		}
	}
	return st
}
