package eventlog_test

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/analytics/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerRecord(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := eventlog.NewZapLogger(zap.New(core))

	body := "<response/>"
	event := logger.NewEvent(analytics.OutboundRequestsEvent)
	event.RecordTimestamp()
	event.SetTraceID("trace")
	event.SetSpanID("span")
	event.SetParentSpanID("parent")
	event.AddTags(analytics.Tags{"type": "SOAP", "status": "200"})
	event.AddFields(analytics.Fields{
		"url":            "https://www.example.com",
		"executionTime":  0.25,
		"requestHeaders": nil,
		"responseBody":   &body,
	})

	require.NoError(t, event.Record(context.Background()))

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, analytics.OutboundRequestsEvent, entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	ctx := entry.ContextMap()
	assert.Equal(t, "trace", ctx["trace_id"])
	assert.Equal(t, "span", ctx["span_id"])
	assert.Equal(t, "parent", ctx["parent_span_id"])
	assert.Equal(t, map[string]any{"type": "SOAP", "status": "200"}, ctx["tags"])

	fields, ok := ctx["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://www.example.com", fields["url"])
	assert.Equal(t, 0.25, fields["executionTime"])
	assert.Equal(t, "<response/>", fields["responseBody"])
	assert.Contains(t, fields, "requestHeaders")
	assert.Nil(t, fields["requestHeaders"])
}

func TestZapLoggerRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := eventlog.NewZapLogger(zap.New(core))

	require.NoError(t, logger.NewEvent("skipped").Record(context.Background()))
	assert.Zero(t, logs.Len())

	require.NoError(t, logger.WithLevel(zapcore.WarnLevel).NewEvent("kept").Record(context.Background()))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}
