package httptransport

import (
	"context"
	"errors"
	"net"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
)

// instrumentation holds the transport metrics.
//
//   - soap.transport.retry.count: attempts repeated after a retryable failure
//   - soap.transport.errors: exchanges that ended in an error, by error.type
type instrumentation struct {
	retryCounter observability.Counter
	errorCounter observability.Counter
}

func newInstrumentation(metrics observability.Metrics) *instrumentation {
	return &instrumentation{
		retryCounter: metrics.Counter(
			"soap.transport.retry.count",
			"Total number of retried SOAP HTTP attempts",
			"{retry}",
		),
		errorCounter: metrics.Counter(
			"soap.transport.errors",
			"Total number of failed SOAP HTTP exchanges",
			"{error}",
		),
	}
}

func (i *instrumentation) recordRetry(ctx context.Context, host, reason string) {
	i.retryCounter.Increment(ctx,
		observability.String("soap.domain", host),
		observability.String("retry.reason", reason),
	)
}

func (i *instrumentation) recordError(ctx context.Context, host string, err error) {
	i.errorCounter.Increment(ctx,
		observability.String("soap.domain", host),
		observability.String("error.type", classifyError(err)),
	)
}

// classifyError categorizes errors for metrics.
func classifyError(err error) string {
	if err == nil {
		return "none"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	if errors.Is(err, ErrResponseTooLarge) {
		return "body_too_large"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}

	return "unknown"
}
