package analytics

import (
	"errors"
	"fmt"
)

// Identifier names a trace identifier required on every outbound event.
type Identifier string

const (
	TraceIdentifier      Identifier = "trace"
	SpanIdentifier       Identifier = "span"
	ParentSpanIdentifier Identifier = "parent span"
)

// ErrMissingTraceContext matches every MissingTraceContextError via errors.Is.
var ErrMissingTraceContext = errors.New("analytics: missing trace context")

// MissingTraceContextError reports that the tracing controller had no value for a
// required identifier when an event was being emitted. It is fatal for the event:
// nothing is recorded for the call.
type MissingTraceContextError struct {
	Identifier Identifier
}

func (e *MissingTraceContextError) Error() string {
	return fmt.Sprintf("analytics: %s ID not available", e.Identifier)
}

// Is makes errors.Is(err, ErrMissingTraceContext) hold for every identifier.
func (e *MissingTraceContextError) Is(target error) bool {
	return target == ErrMissingTraceContext
}
