package soap

import (
	"context"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
)

// instrumentation holds the call metrics, created once per client.
//
//   - soap.client.request.count: instrumented calls, by domain and status
//   - soap.client.request.errors: transport or analytics failures, by reason
//   - soap.client.request.duration: transport duration in milliseconds
type instrumentation struct {
	requestCounter   observability.Counter
	errorCounter     observability.Counter
	latencyHistogram observability.Histogram
}

func newInstrumentation(metrics observability.Metrics) *instrumentation {
	return &instrumentation{
		requestCounter: metrics.Counter(
			"soap.client.request.count",
			"Total number of instrumented SOAP client requests",
			"{request}",
		),

		errorCounter: metrics.Counter(
			"soap.client.request.errors",
			"Total number of SOAP client request failures",
			"{error}",
		),

		latencyHistogram: metrics.Histogram(
			"soap.client.request.duration",
			"Duration of SOAP client requests",
			"ms",
		),
	}
}

func (i *instrumentation) recordRequest(ctx context.Context, durationMs float64, fields ...observability.Field) {
	i.requestCounter.Increment(ctx, fields...)
	i.latencyHistogram.Record(ctx, durationMs, fields...)
}

func (i *instrumentation) recordError(ctx context.Context, reason string, fields ...observability.Field) {
	all := append([]observability.Field{observability.String("error.reason", reason)}, fields...)
	i.errorCounter.Increment(ctx, all...)
}
