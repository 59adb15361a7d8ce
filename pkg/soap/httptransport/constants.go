package httptransport

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout bounds one attempt including reading the response body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseSize caps the response body read into memory.
	DefaultMaxResponseSize = 10 * 1024 * 1024

	// DefaultMaxDrainSize is drained from a discarded response before closing it.
	DefaultMaxDrainSize = 1 * 1024 * 1024

	// DefaultInitialBackoff is the first retry delay.
	DefaultInitialBackoff = 200 * time.Millisecond

	// DefaultMaxBackoff caps a single retry delay.
	DefaultMaxBackoff = 5 * time.Second

	contentTypeSOAP11 = "text/xml; charset=utf-8"
	contentTypeSOAP12 = "application/soap+xml; charset=utf-8"
)

var (
	// ErrResponseTooLarge is returned when the response body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("httptransport: response body exceeds maximum allowed size")

	errRetryableStatus = errors.New("httptransport: retryable status")
)
