package httptransport

import (
	"context"
	"errors"
	"net/http"
)

// RetryPolicy decides whether an attempt is retried. It receives the attempt
// error, if any, and the response otherwise.
type RetryPolicy func(err error, resp *http.Response) bool

// DefaultRetryPolicy retries network errors and 5xx responses. Context errors are final.
var DefaultRetryPolicy RetryPolicy = func(err error, resp *http.Response) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	if resp == nil {
		return false
	}

	return resp.StatusCode >= 500
}

// ThrottledRetryPolicy also retries 429 responses.
var ThrottledRetryPolicy RetryPolicy = func(err error, resp *http.Response) bool {
	if DefaultRetryPolicy(err, resp) {
		return true
	}
	return err == nil && resp != nil && resp.StatusCode == http.StatusTooManyRequests
}

// NoRetryPolicy never retries.
var NoRetryPolicy RetryPolicy = func(error, *http.Response) bool {
	return false
}
