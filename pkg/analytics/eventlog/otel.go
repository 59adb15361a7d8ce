package eventlog

import (
	"context"
	"fmt"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	otellog "go.opentelemetry.io/otel/log"
)

// OTelLogger emits every event as an OpenTelemetry log record.
// The event name is the record body; identifiers, tags and fields become attributes.
type OTelLogger struct {
	logger otellog.Logger
}

// NewOTelLogger creates an event logger emitting through logger.
func NewOTelLogger(logger otellog.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

// NewEvent returns an event emitted as one OpenTelemetry log record when recorded.
func (l *OTelLogger) NewEvent(name string) analytics.Event {
	return &otelEvent{Entry: analytics.NewEntry(name), logger: l.logger}
}

type otelEvent struct {
	*analytics.Entry

	logger otellog.Logger
}

func (e *otelEvent) Record(ctx context.Context) error {
	record := otellog.Record{}
	record.SetTimestamp(e.Timestamp)
	record.SetEventName(e.Name)
	record.SetBody(otellog.StringValue(e.Name))
	record.SetSeverity(otellog.SeverityInfo)
	record.SetSeverityText("INFO")

	attrs := make([]otellog.KeyValue, 0, 3+len(e.Tags)+len(e.Fields))
	attrs = append(attrs,
		otellog.String("trace_id", e.TraceID),
		otellog.String("span_id", e.SpanID),
		otellog.String("parent_span_id", e.ParentSpanID),
	)

	tags := make([]otellog.KeyValue, 0, len(e.Tags))
	for _, key := range sortedKeys(e.Tags) {
		tags = append(tags, otellog.String(key, e.Tags[key]))
	}
	attrs = append(attrs, otellog.Map("tags", tags...))

	fields := make([]otellog.KeyValue, 0, len(e.Fields))
	for _, key := range sortedKeys(e.Fields) {
		fields = append(fields, otellog.KeyValue{Key: key, Value: toLogValue(e.Fields[key])})
	}
	attrs = append(attrs, otellog.Map("fields", fields...))

	record.AddAttributes(attrs...)
	e.logger.Emit(ctx, record)
	return nil
}

func toLogValue(value any) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case *string:
		if v == nil {
			return otellog.Value{}
		}
		return otellog.StringValue(*v)
	case string:
		return otellog.StringValue(v)
	case float64:
		return otellog.Float64Value(v)
	case int:
		return otellog.IntValue(v)
	case int64:
		return otellog.Int64Value(v)
	case bool:
		return otellog.BoolValue(v)
	default:
		return otellog.StringValue(fmt.Sprint(v))
	}
}
