package observers

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anggasct/intersection"
)

// MetricsObserver exports controller activity as Prometheus metrics. One
// observer can be shared by several controllers; series are labeled by
// controller ID.
type MetricsObserver struct {
	intersection.BaseObserver

	gatherer prometheus.Gatherer

	Transitions *prometheus.CounterVec
	ActivePhase *prometheus.GaugeVec
	Remaining   *prometheus.GaugeVec
	Deltas      *prometheus.HistogramVec
	Discarded   *prometheus.CounterVec
	Errors      *prometheus.CounterVec
}

// NewMetricsObserver registers the signal metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_phase_transitions_total",
		Help: "Phase transitions, labeled by controller and phase pair.",
	}, []string{"controller", "from", "to"}), "signal_phase_transitions_total")
	if err != nil {
		return nil, err
	}

	active, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "signal_phase_active",
		Help: "1 for the phase the controller is in, 0 for the others.",
	}, []string{"controller", "phase"}), "signal_phase_active")
	if err != nil {
		return nil, err
	}

	remaining, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "signal_remaining_seconds",
		Help: "Countdown shown on each road, in seconds.",
	}, []string{"controller", "road"}), "signal_remaining_seconds")
	if err != nil {
		return nil, err
	}

	deltas, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signal_advance_delta_seconds",
		Help:    "Time deltas fed to the controller per advance.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.017, 0.034, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"controller"}), "signal_advance_delta_seconds")
	if err != nil {
		return nil, err
	}

	discarded, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_discarded_seconds_total",
		Help: "Time past phase boundaries dropped on transition.",
	}, []string{"controller"}), "signal_discarded_seconds_total")
	if err != nil {
		return nil, err
	}

	errs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_errors_total",
		Help: "Rejected advances and observer failures, labeled by error code.",
	}, []string{"code"}), "signal_errors_total")
	if err != nil {
		return nil, err
	}

	return &MetricsObserver{
		gatherer:    gatherer,
		Transitions: transitions,
		ActivePhase: active,
		Remaining:   remaining,
		Deltas:      deltas,
		Discarded:   discarded,
		Errors:      errs,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (o *MetricsObserver) Handler() http.Handler {
	gatherer := o.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// OnTransition counts the transition
func (o *MetricsObserver) OnTransition(from, to intersection.Phase, snap intersection.Snapshot) {
	o.Transitions.WithLabelValues(snap.ControllerID, from.String(), to.String()).Inc()
}

// OnAdvance records the delta and refreshes the phase and countdown gauges
func (o *MetricsObserver) OnAdvance(result intersection.AdvanceResult, snap intersection.Snapshot) {
	id := snap.ControllerID
	o.Deltas.WithLabelValues(id).Observe(result.Delta.Seconds())
	if result.Discarded > 0 {
		o.Discarded.WithLabelValues(id).Add(result.Discarded.Seconds())
	}
	for _, p := range intersection.Phases() {
		v := 0.0
		if p == snap.Phase {
			v = 1
		}
		o.ActivePhase.WithLabelValues(id, p.String()).Set(v)
	}
	o.Remaining.WithLabelValues(id, intersection.RoadA.String()).Set(snap.RoadA.Remaining.Seconds())
	o.Remaining.WithLabelValues(id, intersection.RoadB.String()).Set(snap.RoadB.Remaining.Seconds())
}

// OnError counts the error by code
func (o *MetricsObserver) OnError(err error) {
	o.Errors.WithLabelValues(intersection.GetErrorCode(err).String()).Inc()
}

// register adds c to reg, reusing an existing collector of the same type
// when one is already registered under the same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
