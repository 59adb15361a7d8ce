package analytics

import (
	"context"
	"fmt"
	"maps"
)

// Recorder builds and emits one OutboundRequestsEvent per call.
type Recorder struct {
	logger     EventLogger
	controller SpanInfo
}

// NewRecorder returns a Recorder emitting to logger with identity taken from controller.
func NewRecorder(logger EventLogger, controller SpanInfo) *Recorder {
	return &Recorder{
		logger:     logger,
		controller: controller,
	}
}

// Emit creates, fills and records the event.
//
// Trace, span and parent span identifiers are read in that order. The first one
// that is missing aborts the call with a *MissingTraceContextError and nothing
// further is set on or recorded for the event.
// Span specific tags are applied first so caller tags win on conflicting keys.
func (r *Recorder) Emit(ctx context.Context, fields Fields, tags Tags) error {
	event := r.logger.NewEvent(OutboundRequestsEvent)
	event.RecordTimestamp()

	traceID, ok := r.controller.TraceID(ctx)
	if !ok {
		return &MissingTraceContextError{Identifier: TraceIdentifier}
	}
	event.SetTraceID(traceID)

	spanID, ok := r.controller.SpanID(ctx)
	if !ok {
		return &MissingTraceContextError{Identifier: SpanIdentifier}
	}
	event.SetSpanID(spanID)

	parentSpanID, ok := r.controller.ParentSpanID(ctx)
	if !ok {
		return &MissingTraceContextError{Identifier: ParentSpanIdentifier}
	}
	event.SetParentSpanID(parentSpanID)

	merged := make(Tags, len(tags))
	maps.Copy(merged, r.controller.SpanSpecificTags(ctx))
	maps.Copy(merged, tags)

	event.AddTags(merged)
	event.AddFields(fields)

	if err := event.Record(ctx); err != nil {
		return fmt.Errorf("analytics: record event: %w", err)
	}

	return nil
}
