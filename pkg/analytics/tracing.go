package analytics

import "context"

// SpanLifecycle starts and stops the child span that brackets one outbound call.
// StartChildSpan returns the context carrying the new span; StopChildSpan must be
// given that same context.
type SpanLifecycle interface {
	StartChildSpan(ctx context.Context) context.Context
	StopChildSpan(ctx context.Context)
}

// SpanInfo exposes the identity of the span active in ctx.
// A false second result means the identifier is not available.
type SpanInfo interface {
	TraceID(ctx context.Context) (string, bool)
	SpanID(ctx context.Context) (string, bool)
	ParentSpanID(ctx context.Context) (string, bool)
	SpanSpecificTags(ctx context.Context) Tags
}

// TracingController is the tracing backend seen by the interceptor:
// both span lifecycle and span info on one value.
type TracingController interface {
	SpanLifecycle
	SpanInfo
}
