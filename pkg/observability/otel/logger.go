package otel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	redactedValue       = "[REDACTED]"
	maxFieldValueLength = 4096
	maxFields           = 64
	truncatedSuffix     = "...[truncated]"
)

// sensitiveKeyFragments marks field keys whose values never reach a log sink.
var sensitiveKeyFragments = []string{
	"password",
	"api_key",
	"apikey",
	"token",
	"authorization",
	"bearer",
	"credit_card",
	"creditcard",
	"ssn",
	"secret",
	"credential",
	"private_key",
	"session",
	"cookie",
}

// otelLogger implements observability.Logger on zap for console output and
// the OTel log API for OTLP export.
type otelLogger struct {
	zap         *zap.Logger
	otelLog     otellog.Logger
	serviceName string
	fields      []observability.Field
}

func newOtelLogger(zl *zap.Logger, serviceName string, otelLog otellog.Logger) *otelLogger {
	return &otelLogger{
		zap:         zl,
		otelLog:     otelLog,
		serviceName: serviceName,
	}
}

// NewLogger wraps an existing zap logger. otelLog may be nil to skip OTLP export.
func NewLogger(zl *zap.Logger, serviceName string, otelLog otellog.Logger) observability.Logger {
	return newOtelLogger(zl, serviceName, otelLog)
}

func newZapLogger(level observability.LogLevel, format observability.LogFormat) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(convertLogLevel(level))
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.Encoding = "json"
	if format == observability.LogFormatText {
		cfg.Encoding = "console"
	}
	return cfg.Build()
}

func convertLogLevel(level observability.LogLevel) zapcore.Level {
	switch level {
	case observability.LogLevelDebug:
		return zapcore.DebugLevel
	case observability.LogLevelWarn:
		return zapcore.WarnLevel
	case observability.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func convertZapLevelToOTel(level zapcore.Level) otellog.Severity {
	switch level {
	case zapcore.DebugLevel:
		return otellog.SeverityDebug
	case zapcore.WarnLevel:
		return otellog.SeverityWarn
	case zapcore.ErrorLevel:
		return otellog.SeverityError
	default:
		return otellog.SeverityInfo
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// sanitizeFields redacts sensitive values, truncates long strings and caps the field count.
func sanitizeFields(fields []observability.Field) []observability.Field {
	if len(fields) > maxFields {
		fields = fields[:maxFields]
	}

	sanitized := make([]observability.Field, len(fields))
	for i, field := range fields {
		switch {
		case isSensitiveKey(field.Key):
			sanitized[i] = observability.String(field.Key, redactedValue)
		default:
			if s, ok := field.Value.(string); ok && len(s) > maxFieldValueLength {
				sanitized[i] = observability.String(field.Key, s[:maxFieldValueLength]+truncatedSuffix)
				continue
			}
			sanitized[i] = field
		}
	}
	return sanitized
}

func (l *otelLogger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *otelLogger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *otelLogger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *otelLogger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *otelLogger) log(ctx context.Context, level zapcore.Level, msg string, fields ...observability.Field) {
	entry := l.zap.Check(level, msg)
	if entry == nil && l.otelLog == nil {
		return
	}

	allFields := make([]observability.Field, 0, len(l.fields)+len(fields)+3)
	allFields = append(allFields, l.fields...)
	allFields = append(allFields, fields...)
	allFields = sanitizeFields(allFields)

	spanContext := trace.SpanContextFromContext(ctx)
	if spanContext.IsValid() {
		allFields = append(allFields,
			observability.String("trace_id", spanContext.TraceID().String()),
			observability.String("span_id", spanContext.SpanID().String()),
		)
	}

	if l.serviceName != "" {
		allFields = append(allFields, observability.String("service", l.serviceName))
	}

	if entry != nil {
		zapFields := make([]zap.Field, 0, len(allFields))
		for _, field := range allFields {
			zapFields = append(zapFields, convertFieldToZap(field))
		}
		entry.Write(zapFields...)
	}

	if l.otelLog != nil {
		l.emitOTLPLog(ctx, level, msg, allFields)
	}
}

func (l *otelLogger) emitOTLPLog(ctx context.Context, level zapcore.Level, msg string, fields []observability.Field) {
	attrs := make([]otellog.KeyValue, 0, len(fields))
	for _, field := range fields {
		attrs = append(attrs, convertFieldToOTelAttr(field))
	}

	record := otellog.Record{}
	record.SetTimestamp(time.Now())
	record.SetBody(otellog.StringValue(msg))
	record.SetSeverity(convertZapLevelToOTel(level))
	record.SetSeverityText(level.CapitalString())
	record.AddAttributes(attrs...)

	l.otelLog.Emit(ctx, record)
}

func convertFieldToOTelAttr(field observability.Field) otellog.KeyValue {
	switch v := field.Value.(type) {
	case string:
		return otellog.String(field.Key, v)
	case int:
		return otellog.Int(field.Key, v)
	case int64:
		return otellog.Int64(field.Key, v)
	case float64:
		return otellog.Float64(field.Key, v)
	case bool:
		return otellog.Bool(field.Key, v)
	case time.Duration:
		return otellog.String(field.Key, v.String())
	case error:
		return otellog.String(field.Key, v.Error())
	default:
		return otellog.String(field.Key, fmt.Sprint(field.Value))
	}
}

func convertFieldToZap(field observability.Field) zap.Field {
	switch v := field.Value.(type) {
	case string:
		return zap.String(field.Key, v)
	case int:
		return zap.Int(field.Key, v)
	case int64:
		return zap.Int64(field.Key, v)
	case float64:
		return zap.Float64(field.Key, v)
	case bool:
		return zap.Bool(field.Key, v)
	case time.Duration:
		return zap.Duration(field.Key, v)
	case error:
		return zap.NamedError(field.Key, v)
	default:
		return zap.Any(field.Key, v)
	}
}

// With creates a child logger with additional fields.
func (l *otelLogger) With(fields ...observability.Field) observability.Logger {
	merged := make([]observability.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &otelLogger{
		zap:         l.zap,
		otelLog:     l.otelLog,
		serviceName: l.serviceName,
		fields:      merged,
	}
}
