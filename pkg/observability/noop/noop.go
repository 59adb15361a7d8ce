package noop

import (
	"context"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
)

// Provider is an observability.Observability that discards everything.
type Provider struct{}

// NewProvider creates a new no-op observability provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Logger returns a no-op logger.
func (p *Provider) Logger() observability.Logger {
	return noopLogger{}
}

// Metrics returns a no-op metrics recorder.
func (p *Provider) Metrics() observability.Metrics {
	return noopMetrics{}
}

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...observability.Field) {}

func (noopLogger) Info(context.Context, string, ...observability.Field) {}

func (noopLogger) Warn(context.Context, string, ...observability.Field) {}

func (noopLogger) Error(context.Context, string, ...observability.Field) {}

func (l noopLogger) With(...observability.Field) observability.Logger {
	return l
}

type noopMetrics struct{}

func (noopMetrics) Counter(string, string, string) observability.Counter {
	return noopCounter{}
}

func (noopMetrics) Histogram(string, string, string) observability.Histogram {
	return noopHistogram{}
}

type noopCounter struct{}

func (noopCounter) Add(context.Context, int64, ...observability.Field) {}

func (noopCounter) Increment(context.Context, ...observability.Field) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...observability.Field) {}
