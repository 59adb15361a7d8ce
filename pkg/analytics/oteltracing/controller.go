package oteltracing

import (
	"context"
	"maps"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultSpanName names the child span started for each outbound call.
	DefaultSpanName = "soap.client.request"

	// CallTag is the span specific tag carrying the logical call name.
	CallTag = "call"
)

type (
	parentKey struct{}
	callKey   struct{}
)

// childSpan links a span started by StartChildSpan to the span active before it.
type childSpan struct {
	id     trace.SpanID
	parent trace.SpanID
}

// Controller implements analytics.TracingController on top of an OpenTelemetry tracer.
// It keeps no per-call state: the child span and its parent travel in the context
// returned by StartChildSpan, so one Controller can serve concurrent calls.
type Controller struct {
	tracer   trace.Tracer
	spanName string
	tags     analytics.Tags
}

// Option configures a Controller.
type Option func(*Controller)

// WithSpanName overrides DefaultSpanName.
func WithSpanName(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.spanName = name
		}
	}
}

// WithStaticTags adds tags reported on every call.
func WithStaticTags(tags analytics.Tags) Option {
	return func(c *Controller) {
		maps.Copy(c.tags, tags)
	}
}

// NewController creates a controller starting spans with tracer.
func NewController(tracer trace.Tracer, opts ...Option) *Controller {
	c := &Controller{
		tracer:   tracer,
		spanName: DefaultSpanName,
		tags:     make(analytics.Tags),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithCall stores the logical call name (for example "controller/method") in ctx.
// It is reported as the CallTag span specific tag.
func WithCall(ctx context.Context, call string) context.Context {
	return context.WithValue(ctx, callKey{}, call)
}

// StartChildSpan starts a client span as a child of the span active in ctx.
// A tracer that hands back the active span instead of a new one, such as a no-op
// tracer, leaves the call without a parent.
func (c *Controller) StartChildSpan(ctx context.Context) context.Context {
	parent := trace.SpanContextFromContext(ctx)

	ctx, span := c.tracer.Start(ctx, c.spanName, trace.WithSpanKind(trace.SpanKindClient))

	if id := span.SpanContext().SpanID(); parent.HasSpanID() && parent.SpanID() != id {
		ctx = context.WithValue(ctx, parentKey{}, childSpan{id: id, parent: parent.SpanID()})
	}
	return ctx
}

// StopChildSpan ends the span active in ctx.
func (c *Controller) StopChildSpan(ctx context.Context) {
	trace.SpanFromContext(ctx).End()
}

// TraceID returns the trace of the span active in ctx.
func (c *Controller) TraceID(ctx context.Context) (string, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return "", false
	}
	return sc.TraceID().String(), true
}

// SpanID returns the span active in ctx.
func (c *Controller) SpanID(ctx context.Context) (string, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// ParentSpanID returns the span that was active when StartChildSpan ran.
// Spans created elsewhere are resolved through the SDK read-only view. A span is
// never reported as its own parent.
func (c *Controller) ParentSpanID(ctx context.Context) (string, bool) {
	current := trace.SpanContextFromContext(ctx).SpanID()

	if child, ok := ctx.Value(parentKey{}).(childSpan); ok && child.id == current {
		return child.parent.String(), true
	}

	if span, ok := trace.SpanFromContext(ctx).(sdktrace.ReadOnlySpan); ok {
		if parent := span.Parent(); parent.HasSpanID() && parent.SpanID() != current {
			return parent.SpanID().String(), true
		}
	}

	return "", false
}

// SpanSpecificTags returns the static tags plus the call name stored by WithCall.
func (c *Controller) SpanSpecificTags(ctx context.Context) analytics.Tags {
	tags := maps.Clone(c.tags)
	if call, ok := ctx.Value(callKey{}).(string); ok && call != "" {
		tags[CallTag] = call
	}
	return tags
}
