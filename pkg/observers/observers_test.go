package observers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/anggasct/intersection"
	"github.com/anggasct/intersection/pkg/logging"
)

func newController(t *testing.T, id string, observers ...intersection.Observer) *intersection.Controller {
	t.Helper()
	b := intersection.NewBuilder().ID(id)
	for _, o := range observers {
		b.Observer(o)
	}
	ctrl, err := b.Build()
	require.NoError(t, err)
	return ctrl
}

// runCycle drives a default controller through one full cycle and back to A_GREEN
func runCycle(t *testing.T, ctrl *intersection.Controller) {
	t.Helper()
	for _, d := range []time.Duration{
		time.Second, 2 * time.Second, // A_GREEN -> A_YELLOW, 500ms discarded
		2 * time.Second,              // A_YELLOW -> B_GREEN
		3 * time.Second,              // B_GREEN -> B_YELLOW
		2 * time.Second,              // B_YELLOW -> A_GREEN
	} {
		intersection.MustAdvance(t, ctrl, d)
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(logging.Config{Level: "debug", Format: "json"}, &buf)
	obs := NewLoggingObserver(log, intersection.DefaultRoadNames())
	ctrl := newController(t, "ctrl-log", obs)

	intersection.MustAdvance(t, ctrl, 3*time.Second)
	_, err := ctrl.Advance(-time.Second)
	require.Error(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}

	byMsg := make(map[string]map[string]any)
	for _, e := range entries {
		byMsg[e["msg"].(string)] = e
	}

	transition := byMsg["phase transition"]
	require.NotNil(t, transition)
	assert.Equal(t, "INFO", transition["level"])
	assert.Equal(t, "ctrl-log", transition["controller_id"])
	assert.Equal(t, "A_GREEN", transition["from"])
	assert.Equal(t, "A_YELLOW", transition["to"])
	assert.Equal(t, "Academic Ave: Yellow (1.5s)", transition["label"])

	advance := byMsg["advance"]
	require.NotNil(t, advance)
	assert.Equal(t, "DEBUG", advance["level"])
	assert.EqualValues(t, 500*time.Millisecond, advance["discarded"])

	failure := byMsg["controller error"]
	require.NotNil(t, failure)
	assert.Equal(t, "WARN", failure["level"])
	assert.Equal(t, "invalid_argument", failure["code"])
}

func TestLoggingObserverNilLogger(t *testing.T) {
	obs := NewLoggingObserver(nil, intersection.RoadNames{})
	ctrl := newController(t, "quiet", obs)
	assert.NotPanics(t, func() { runCycle(t, ctrl) })
}

func TestMetricsObserverRecordsCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewMetricsObserver(reg)
	require.NoError(t, err)
	ctrl := newController(t, "ctrl-m", obs)

	runCycle(t, ctrl)
	_, _ = ctrl.Advance(-time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.Transitions.WithLabelValues("ctrl-m", "A_GREEN", "A_YELLOW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.Transitions.WithLabelValues("ctrl-m", "B_YELLOW", "A_GREEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.ActivePhase.WithLabelValues("ctrl-m", "A_GREEN")))
	assert.Equal(t, 0.0, testutil.ToFloat64(obs.ActivePhase.WithLabelValues("ctrl-m", "B_GREEN")))
	assert.Equal(t, 2.5, testutil.ToFloat64(obs.Remaining.WithLabelValues("ctrl-m", "A")))
	assert.Equal(t, 2.5, testutil.ToFloat64(obs.Remaining.WithLabelValues("ctrl-m", "B")))
	// 0.5 + 0.5 + 0.5 + 0.5 seconds dropped over the four boundaries
	assert.InDelta(t, 2.0, testutil.ToFloat64(obs.Discarded.WithLabelValues("ctrl-m")), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.Errors.WithLabelValues("invalid_argument")))

	assert.Equal(t, uint64(5), histogramSampleCount(t, reg, "signal_advance_delta_seconds", "ctrl-m"))
}

func TestMetricsObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetricsObserver(reg)
	require.NoError(t, err)
	second, err := NewMetricsObserver(reg)
	require.NoError(t, err)

	first.Transitions.WithLabelValues("c", "A_GREEN", "A_YELLOW").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Transitions.WithLabelValues("c", "A_GREEN", "A_YELLOW")))
}

func TestMetricsObserverHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewMetricsObserver(reg)
	require.NoError(t, err)
	ctrl := newController(t, "ctrl-h", obs)
	intersection.MustAdvance(t, ctrl, 3*time.Second)

	rr := httptest.NewRecorder()
	obs.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `signal_phase_transitions_total{controller="ctrl-h",from="A_GREEN",to="A_YELLOW"} 1`)
	assert.Contains(t, body, `signal_phase_active{controller="ctrl-h",phase="A_YELLOW"} 1`)
}

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name, controller string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue(m, "controller") == controller {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	t.Fatalf("histogram %s{controller=%q} not found", name, controller)
	return 0
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestTracingObserverSpansPerPhase(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	obs := NewTracingObserver(tp)
	ctrl := newController(t, "ctrl-t", obs)

	runCycle(t, ctrl)
	obs.Close()

	ended := sr.Ended()
	require.Len(t, ended, 5)

	var names []string
	for _, span := range ended {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{
		"phase A_GREEN", "phase A_YELLOW", "phase B_GREEN", "phase B_YELLOW", "phase A_GREEN",
	}, names)

	attrs := attributeMap(ended[1].Attributes())
	assert.Equal(t, "ctrl-t", attrs["signal.controller_id"].AsString())
	assert.Equal(t, "yellow", attrs["signal.road_a"].AsString())
	assert.Equal(t, "red", attrs["signal.road_b"].AsString())
	assert.Equal(t, 1.5, attrs["signal.duration_seconds"].AsFloat64())
	assert.Equal(t, "A_GREEN", attrs["signal.previous_phase"].AsString())
	assert.Equal(t, "B_GREEN", attrs["signal.next_phase"].AsString())
	assert.InDelta(t, 0.5, attrs["signal.discarded_seconds"].AsFloat64(), 1e-9)
}

func TestTracingObserverRecordsErrors(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	obs := NewTracingObserver(tp)
	ctrl := newController(t, "ctrl-e", obs)

	intersection.MustAdvance(t, ctrl, time.Millisecond)
	_, err := ctrl.Advance(-time.Millisecond)
	require.Error(t, err)
	obs.Close()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "exception", events[0].Name)
}

func attributeMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestValidationObserverCleanCycle(t *testing.T) {
	obs := NewValidationObserver()
	ctrl := newController(t, "ctrl-v", obs)

	assert.Len(t, obs.GetUnvisitedPhases(), 4)
	runCycle(t, ctrl)
	_, _ = ctrl.Advance(-time.Second)

	assert.False(t, obs.HasViolations(), "violations: %v", obs.GetViolations())
	assert.Empty(t, obs.GetUnvisitedPhases())
}

func TestValidationObserverFlagsBadInput(t *testing.T) {
	obs := NewValidationObserver()
	snap := intersection.Snapshot{
		Phase:    intersection.AGreen,
		Elapsed:  3 * time.Second,
		Duration: 2500 * time.Millisecond,
		RoadA:    intersection.RoadSignalView{Road: intersection.RoadA, Color: intersection.Green},
		RoadB:    intersection.RoadSignalView{Road: intersection.RoadB, Color: intersection.Green},
	}

	obs.OnTransition(intersection.AGreen, intersection.BGreen, snap)
	obs.OnAdvance(intersection.AdvanceResult{CurrentPhase: intersection.AGreen}, snap)
	obs.OnError(errors.New("observer panic in OnTransition: boom"))

	violations := strings.Join(obs.GetViolations(), "\n")
	assert.Contains(t, violations, "invalid transition from 'A_GREEN' to 'B_GREEN'")
	assert.Contains(t, violations, "both roads green")
	assert.Contains(t, violations, "no road red")
	assert.Contains(t, violations, "elapsed 3s outside")
	assert.Contains(t, violations, "error occurred")

	obs.Reset()
	assert.False(t, obs.HasViolations())
	assert.Len(t, obs.GetUnvisitedPhases(), 4)
}

func TestDefaultLoggingObserver(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	obs := NewDefaultLoggingObserver()
	assert.Equal(t, intersection.DefaultRoadNames(), obs.names)
}
