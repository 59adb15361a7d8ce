package noop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"github.com/JailtonJunior94/spark-go/pkg/observability/noop"
)

func TestNoopProvider(t *testing.T) {
	var provider observability.Observability = noop.NewProvider()

	if provider.Logger() == nil {
		t.Error("Logger() should not return nil")
	}

	if provider.Metrics() == nil {
		t.Error("Metrics() should not return nil")
	}
}

func TestNoopOperationsDoNotPanic(t *testing.T) {
	provider := noop.NewProvider()
	ctx := context.Background()

	logger := provider.Logger().With(observability.String("component", "soap"))
	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info", observability.Int("status", 200))
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error", observability.Error(errors.New("boom")))

	metrics := provider.Metrics()
	metrics.Counter("soap.client.request.count", "", "{request}").Increment(ctx)
	metrics.Counter("soap.client.request.count", "", "{request}").Add(ctx, 5)
	metrics.Histogram("soap.client.request.duration", "", "ms").Record(ctx, 1.5)
}

func BenchmarkNoopLogger(b *testing.B) {
	logger := noop.NewProvider().Logger()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "message", observability.String("key", "value"))
	}
}
