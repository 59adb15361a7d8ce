package eventlog

import (
	"context"
	"sort"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes every event as a single info entry through a zap logger.
type ZapLogger struct {
	logger *zap.Logger
	level  zapcore.Level
}

// NewZapLogger creates an event logger backed by logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger, level: zapcore.InfoLevel}
}

// WithLevel returns a copy writing at level instead of info.
func (l *ZapLogger) WithLevel(level zapcore.Level) *ZapLogger {
	return &ZapLogger{logger: l.logger, level: level}
}

// NewEvent returns an event written at the configured level when recorded.
func (l *ZapLogger) NewEvent(name string) analytics.Event {
	return &zapEvent{Entry: analytics.NewEntry(name), logger: l.logger, level: l.level}
}

type zapEvent struct {
	*analytics.Entry

	logger *zap.Logger
	level  zapcore.Level
}

func (e *zapEvent) Record(ctx context.Context) error {
	ce := e.logger.Check(e.level, e.Name)
	if ce == nil {
		return nil
	}

	fields := []zap.Field{
		zap.Time("timestamp", e.Timestamp),
		zap.String("trace_id", e.TraceID),
		zap.String("span_id", e.SpanID),
		zap.String("parent_span_id", e.ParentSpanID),
		zap.Object("tags", tagsMarshaler(e.Tags)),
		zap.Object("fields", fieldsMarshaler(e.Fields)),
	}
	ce.Write(fields...)
	return nil
}

type tagsMarshaler analytics.Tags

func (t tagsMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, key := range sortedKeys(t) {
		enc.AddString(key, t[key])
	}
	return nil
}

type fieldsMarshaler analytics.Fields

func (f fieldsMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, key := range sortedKeys(f) {
		value := f[key]
		if text, ok := value.(*string); ok {
			if text != nil {
				enc.AddString(key, *text)
				continue
			}
			value = nil
		}

		switch v := value.(type) {
		case string:
			enc.AddString(key, v)
		case float64:
			enc.AddFloat64(key, v)
		case bool:
			enc.AddBool(key, v)
		case int:
			enc.AddInt(key, v)
		default:
			if err := enc.AddReflected(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
