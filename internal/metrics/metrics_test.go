package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"fauxbar/internal/engine"
	"fauxbar/internal/progress"
)

func TestReporterRecordsSnapshots(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := NewReporter(reg)
	require.NoError(t, err)

	e, err := engine.New(engine.DefaultConfig(), engine.WithObserver(r))
	require.NoError(t, err)
	defer e.Close()

	for i := 0; i < 900; i++ {
		e.Tick()
	}

	snap := e.Snapshot()
	require.InDelta(t, snap.Progress, testutil.ToFloat64(r.value), 1e-9)
	require.InDelta(t, snap.Fraction(), testutil.ToFloat64(r.fraction), 1e-9)
	require.Equal(t, 1.0, testutil.ToFloat64(r.phase.WithLabelValues("settle")))
	require.Equal(t, 0.0, testutil.ToFloat64(r.phase.WithLabelValues("ramp")))
	require.Equal(t, 0.0, testutil.ToFloat64(r.running))
	require.Equal(t, 900.0, testutil.ToFloat64(r.events.WithLabelValues("tick")))

	e.Complete()
	require.Equal(t, 100.0, testutil.ToFloat64(r.value))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fraction))
	require.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues("complete")))
}

func TestReporterResults(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := NewReporter(reg)
	require.NoError(t, err)

	r.Result(progress.Result{Elapsed: 3 * time.Second})
	r.Result(progress.Result{Elapsed: time.Second, Err: errors.New("exit status 1")})
	r.Result(progress.Result{})

	require.Equal(t, 2.0, testutil.ToFloat64(r.results.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("error")))
	require.Equal(t, 2, testutil.CollectAndCount(r.elapsed))
}

func TestNewReporterDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewReporter(reg)
	require.NoError(t, err)
	_, err = NewReporter(reg)
	require.Error(t, err)
}

func TestServeExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewReporter(reg)
	require.NoError(t, err)
	r.Observe(engine.Snapshot{Event: engine.EventTick, Progress: 42, End: 100, Running: true})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr, NewRouter(reg, r), nil) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	require.True(t, strings.Contains(body, "fauxbar_progress_value 42"), body)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRouterProgressStatus(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := NewReporter(reg)
	require.NoError(t, err)
	h := NewRouter(reg, r)

	r.Observe(engine.Snapshot{Event: engine.EventTick, Progress: 25, End: 100, Running: true, Phase: engine.PhaseRamp})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, progress.StageRunning, st.Stage)
	require.Equal(t, engine.EventTick, st.Event)
	require.InDelta(t, 25.0, st.Value, 1e-9)
	require.InDelta(t, 25.0, st.Percent, 1e-9)
	require.Equal(t, 100.0, st.Max)
	require.Equal(t, "ramp", st.Phase)
	require.Empty(t, st.Error)

	r.Result(progress.Result{Elapsed: 65 * time.Second, Err: errors.New("exit status 2")})
	st = r.Status()
	require.Equal(t, progress.StageFailed, st.Stage)
	require.Equal(t, "1:05", st.Elapsed)
	require.Equal(t, "exit status 2", st.Error)
}

func TestRouterHealthAndMissingReporter(t *testing.T) {
	t.Parallel()

	h := NewRouter(prometheus.NewRegistry(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/progress", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
