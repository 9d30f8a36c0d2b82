// Package observers provides observers for monitoring intersection controllers
package observers

import (
	"context"

	"github.com/anggasct/intersection"
	"github.com/anggasct/intersection/pkg/logging"
)

// LoggingObserver logs controller events through a structured logger.
// Transitions are logged at info level, advances and phase entries at debug.
type LoggingObserver struct {
	intersection.BaseObserver

	log   logging.Logger
	names intersection.RoadNames
}

// NewLoggingObserver creates a new logging observer. A nil logger drops
// everything.
func NewLoggingObserver(log logging.Logger, names intersection.RoadNames) *LoggingObserver {
	if log == nil {
		log = logging.Noop()
	}
	return &LoggingObserver{log: log, names: names}
}

func (o *LoggingObserver) with(snap intersection.Snapshot) logging.Logger {
	return o.log.With(logging.String("controller_id", snap.ControllerID))
}

// OnTransition logs the phase change and the new overlay label
func (o *LoggingObserver) OnTransition(from, to intersection.Phase, snap intersection.Snapshot) {
	o.with(snap).Info(context.Background(), "phase transition",
		logging.String("from", from.String()),
		logging.String("to", to.String()),
		logging.String("label", snap.Label(o.names)),
	)
}

// OnPhaseEnter logs phase entry
func (o *LoggingObserver) OnPhaseEnter(phase intersection.Phase, snap intersection.Snapshot) {
	o.with(snap).Debug(context.Background(), "phase entered",
		logging.String("phase", phase.String()),
		logging.Duration("duration", snap.Duration),
	)
}

// OnAdvance logs each advance
func (o *LoggingObserver) OnAdvance(result intersection.AdvanceResult, snap intersection.Snapshot) {
	fields := []logging.Field{
		logging.String("phase", snap.Phase.String()),
		logging.Duration("delta", result.Delta),
		logging.Duration("remaining", snap.Remaining()),
	}
	if result.Discarded > 0 {
		fields = append(fields, logging.Duration("discarded", result.Discarded))
	}
	o.with(snap).Debug(context.Background(), "advance", fields...)
}

// OnError logs rejected advances and observer failures
func (o *LoggingObserver) OnError(err error) {
	o.log.Warn(context.Background(), "controller error",
		logging.Err(err),
		logging.String("code", intersection.GetErrorCode(err).String()),
	)
}
