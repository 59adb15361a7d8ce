package httptransport

import (
	"net/http"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
)

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept as is.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithTimeout sets the per attempt timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		if timeout > 0 {
			t.client.Timeout = timeout
		}
	}
}

// WithMaxRetries sets how many times a failed attempt is repeated. Zero disables retries.
func WithMaxRetries(retries int) Option {
	return func(t *Transport) {
		if retries < 0 {
			retries = 0
		}
		t.maxRetries = uint64(retries)
	}
}

// WithBackoff sets the initial and maximum exponential backoff delays.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(t *Transport) {
		if initial > 0 {
			t.initialBackoff = initial
		}
		if maxDelay > 0 {
			t.maxBackoff = maxDelay
		}
	}
}

// WithRetryPolicy sets the retry decision. Defaults to DefaultRetryPolicy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(t *Transport) {
		if policy != nil {
			t.policy = policy
		}
	}
}

// WithMaxResponseSize caps the response body read into memory.
func WithMaxResponseSize(size int64) Option {
	return func(t *Transport) {
		if size > 0 {
			t.maxResponseSize = size
		}
	}
}

// WithHeader adds an HTTP header sent with every request.
func WithHeader(key, value string) Option {
	return func(t *Transport) {
		t.headers.Add(key, value)
	}
}

// WithObservability sets the logger and metrics used for retries and failures.
func WithObservability(o11y observability.Observability) Option {
	return func(t *Transport) {
		if o11y != nil {
			t.logger = o11y.Logger()
			t.instrumentation = newInstrumentation(o11y.Metrics())
		}
	}
}
