package observers

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/anggasct/intersection"
)

const tracerName = "github.com/anggasct/intersection"

// TracingObserver records one span per phase occupancy. The span for a
// controller's starting phase is opened lazily on its first advance, since
// no phase entry is reported for it.
type TracingObserver struct {
	intersection.BaseObserver

	tracer trace.Tracer
	mutex  sync.Mutex
	spans  map[string]trace.Span
}

// NewTracingObserver creates a tracing observer on tp, or on the global
// provider when tp is nil.
func NewTracingObserver(tp trace.TracerProvider) *TracingObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingObserver{
		tracer: tp.Tracer(tracerName),
		spans:  make(map[string]trace.Span),
	}
}

// start must be called with the mutex held
func (o *TracingObserver) start(snap intersection.Snapshot) {
	_, span := o.tracer.Start(context.Background(), "phase "+snap.Phase.String(),
		trace.WithAttributes(
			attribute.String("signal.controller_id", snap.ControllerID),
			attribute.String("signal.phase", snap.Phase.String()),
			attribute.Float64("signal.duration_seconds", snap.Duration.Seconds()),
			attribute.String("signal.road_a", snap.RoadA.Color.String()),
			attribute.String("signal.road_b", snap.RoadB.Color.String()),
		),
	)
	o.spans[snap.ControllerID] = span
}

// OnPhaseEnter opens the span for the entered phase unless the transition
// already did
func (o *TracingObserver) OnPhaseEnter(phase intersection.Phase, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, ok := o.spans[snap.ControllerID]; !ok {
		o.start(snap)
	}
}

// OnPhaseExit closes the span of the phase being left
func (o *TracingObserver) OnPhaseExit(phase intersection.Phase, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	span, ok := o.spans[snap.ControllerID]
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("signal.next_phase", phase.Next().String()))
	span.End()
	delete(o.spans, snap.ControllerID)
}

// OnTransition opens the span of the new phase, annotated with the phase it
// came from
func (o *TracingObserver) OnTransition(from, to intersection.Phase, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if span, ok := o.spans[snap.ControllerID]; ok {
		span.End()
	}
	o.start(snap)
	o.spans[snap.ControllerID].SetAttributes(attribute.String("signal.previous_phase", from.String()))
}

// OnAdvance opens the initial span and records the time dropped on entry
func (o *TracingObserver) OnAdvance(result intersection.AdvanceResult, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	span, ok := o.spans[snap.ControllerID]
	if !ok {
		o.start(snap)
		span = o.spans[snap.ControllerID]
	}
	if result.Transitioned {
		span.SetAttributes(attribute.Float64("signal.discarded_seconds", result.Discarded.Seconds()))
	}
}

// OnError records the error on every open span
func (o *TracingObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	for _, span := range o.spans {
		span.RecordError(err, trace.WithAttributes(
			attribute.String("signal.error_code", intersection.GetErrorCode(err).String()),
		))
		if !intersection.IsArgumentError(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
}

// Close ends all open spans
func (o *TracingObserver) Close() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	for id, span := range o.spans {
		span.End()
		delete(o.spans, id)
	}
}
