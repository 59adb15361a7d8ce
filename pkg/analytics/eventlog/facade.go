package eventlog

import (
	"context"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/observability"
)

// FacadeLogger writes events as info entries of an observability.Logger.
// Tags are prefixed with "tag." and fields with "field." so both share one flat namespace.
type FacadeLogger struct {
	logger observability.Logger
}

// NewFacadeLogger creates an event logger writing through logger.
func NewFacadeLogger(logger observability.Logger) *FacadeLogger {
	return &FacadeLogger{logger: logger}
}

// NewEvent returns an event written as one structured log line when recorded.
func (l *FacadeLogger) NewEvent(name string) analytics.Event {
	return &facadeEvent{Entry: analytics.NewEntry(name), logger: l.logger}
}

type facadeEvent struct {
	*analytics.Entry

	logger observability.Logger
}

func (e *facadeEvent) Record(ctx context.Context) error {
	fields := make([]observability.Field, 0, 4+len(e.Tags)+len(e.Fields))
	fields = append(fields,
		observability.Any("timestamp", e.Timestamp),
		observability.String("event_trace_id", e.TraceID),
		observability.String("event_span_id", e.SpanID),
		observability.String("event_parent_span_id", e.ParentSpanID),
	)

	for _, key := range sortedKeys(e.Tags) {
		fields = append(fields, observability.String("tag."+key, e.Tags[key]))
	}

	for _, key := range sortedKeys(e.Fields) {
		value := e.Fields[key]
		if text, ok := value.(*string); ok {
			if text == nil {
				value = nil
			} else {
				value = *text
			}
		}
		fields = append(fields, observability.Any("field."+key, value))
	}

	e.logger.Info(ctx, e.Name, fields...)
	return nil
}
