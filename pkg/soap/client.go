package soap

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"github.com/JailtonJunior94/spark-go/pkg/observability/noop"
)

var (
	// ErrNilTransport is returned by NewClient without a transport.
	ErrNilTransport = errors.New("soap: transport cannot be nil")

	// ErrIncompleteAnalytics is returned when analytics are enabled without all collaborators.
	ErrIncompleteAnalytics = errors.New("soap: analytics require an event logger, a tracing controller and a header parser")
)

// Client wraps a Transport and reports one analytics event per call when a
// detail level other than analytics.None is enabled.
//
// A Client is safe for concurrent use. Every call gets its own child span and its
// own Exchange, so concurrent calls report their own header blocks as long as the
// transport records into the Exchange found in the request context.
type Client struct {
	transport Transport
	options   CallOptions
	logger    observability.Logger
	metrics   observability.Metrics
	now       func() time.Time

	instrumentation *instrumentation

	mu         sync.RWMutex
	headers    []Header
	level      analytics.DetailLevel
	controller analytics.TracingController
	parser     HeaderParser
	recorder   *analytics.Recorder
}

// Option configures a Client.
type Option func(*Client) error

// WithOptions sets the call options reported in Detailed events. The map is copied.
func WithOptions(options CallOptions) Option {
	return func(c *Client) error {
		c.options = maps.Clone(options)
		return nil
	}
}

// WithAnalytics enables analytics at construction time.
func WithAnalytics(logger analytics.EventLogger, controller analytics.TracingController, parser HeaderParser, level analytics.DetailLevel) Option {
	return func(c *Client) error {
		return c.enable(logger, controller, parser, level)
	}
}

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithMetrics sets the metrics recorder. Defaults to no-op metrics.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *Client) error {
		if metrics != nil {
			c.metrics = metrics
		}
		return nil
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// NewClient creates a client over transport. Analytics stay disabled unless
// WithAnalytics or EnableAnalytics is used.
func NewClient(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	provider := noop.NewProvider()
	c := &Client{
		transport: transport,
		options:   make(CallOptions),
		logger:    provider.Logger(),
		metrics:   provider.Metrics(),
		now:       time.Now,
		level:     analytics.None,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.instrumentation = newInstrumentation(c.metrics)

	return c, nil
}

// EnableAnalytics wires the analytics collaborators. The level defaults to analytics.Info.
func (c *Client) EnableAnalytics(logger analytics.EventLogger, controller analytics.TracingController, parser HeaderParser, level ...analytics.DetailLevel) error {
	l := analytics.Info
	if len(level) > 0 {
		l = level[0]
	}
	return c.enable(logger, controller, parser, l)
}

func (c *Client) enable(logger analytics.EventLogger, controller analytics.TracingController, parser HeaderParser, level analytics.DetailLevel) error {
	if logger == nil || controller == nil || parser == nil {
		return ErrIncompleteAnalytics
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.controller = controller
	c.parser = parser
	c.recorder = analytics.NewRecorder(logger, controller)
	c.level = level

	return nil
}

// DetailLevel returns the enabled analytics level.
func (c *Client) DetailLevel() analytics.DetailLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

type analyticsState struct {
	level      analytics.DetailLevel
	controller analytics.TracingController
	parser     HeaderParser
	recorder   *analytics.Recorder
}

func (c *Client) analytics() analyticsState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return analyticsState{
		level:      c.level,
		controller: c.controller,
		parser:     c.parser,
		recorder:   c.recorder,
	}
}

// DoRequest sends request to location through the transport.
//
// With analytics disabled the transport result is returned as is. Otherwise the
// exchange runs inside a child span, which is stopped before one
// outbound_requests_log event is emitted. A transport error is returned unchanged
// and skips both the span stop and the event. An emission error, such as a
// *analytics.MissingTraceContextError, is returned together with the response.
func (c *Client) DoRequest(ctx context.Context, request []byte, location, action string, version Version, oneWay bool) ([]byte, error) {
	state := c.analytics()
	if !state.level.Enabled() {
		return c.transport.DoRequest(ctx, request, location, action, version, oneWay)
	}

	ctx = state.controller.StartChildSpan(ctx)
	ctx, exchange := WithExchange(ctx)

	start := c.now()
	response, err := c.transport.DoRequest(ctx, request, location, action, version, oneWay)
	if err != nil {
		c.instrumentation.recordError(ctx, "transport")
		return response, err
	}
	end := c.now()

	startSeconds, endSeconds := unixSeconds(start), unixSeconds(end)

	fields := analytics.Fields{
		FieldURL:            location,
		FieldStartTimestamp: startSeconds.InexactFloat64(),
		FieldEndTimestamp:   endSeconds.InexactFloat64(),
		FieldExecutionTime:  endSeconds.Sub(startSeconds).Round(timestampPlaces).InexactFloat64(),
	}

	blocks := blocksFor(exchange, c.transport)

	if state.level.AtLeast(analytics.Detailed) {
		fields[FieldRequestHeaders] = c.logHeader(ctx, state.parser, blocks.request, blocks.hasRequest)
		fields[FieldResponseHeaders] = c.logHeader(ctx, state.parser, blocks.response, blocks.hasResponse)
		fields[FieldOptions] = c.logOptions(ctx, oneWay, version)
		fields[FieldRequestBody] = analytics.Redact(request, state.level)
		fields[FieldResponseBody] = analytics.Redact(response, state.level)
	}

	tags := analytics.Tags{TagType: ProtocolTag}
	metricFields := []observability.Field{observability.Int("soap.version", int(version))}

	if status, ok := extractStatus(blocks.response); ok {
		tags[TagStatus] = status
		metricFields = append(metricFields, observability.String("status", status))
	}

	if domain, ok := domainOf(location); ok {
		tags[TagDomain] = domain
		metricFields = append(metricFields, observability.String("soap.domain", domain))
	}

	state.controller.StopChildSpan(ctx)

	c.instrumentation.recordRequest(ctx, float64(end.Sub(start).Microseconds())/1000, metricFields...)

	if err := state.recorder.Emit(ctx, fields, tags); err != nil {
		c.instrumentation.recordError(ctx, "analytics", metricFields...)
		c.logger.Error(ctx, "soap: outbound request event not recorded",
			observability.String("location", location),
			observability.String("action", action),
			observability.Error(err),
		)
		return response, fmt.Errorf("soap: %w", err)
	}

	return response, nil
}

// logHeader returns the parsed header block as JSON, or nil when the block is
// missing, empty or cannot be parsed. Parser panics are contained here.
func (c *Client) logHeader(ctx context.Context, parser HeaderParser, raw string, present bool) (value any) {
	if !present {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn(ctx, "soap: header parser panicked", observability.Any("panic", r))
			value = nil
		}
	}()

	parsed, err := parser.Parse(raw)
	if err != nil {
		c.logger.Debug(ctx, "soap: header block not parsed", observability.Error(err))
		return nil
	}

	if len(parsed) == 0 {
		return nil
	}

	encoded, err := encodeJSON(parsed)
	if err != nil {
		return nil
	}

	return encoded
}

func (c *Client) logOptions(ctx context.Context, oneWay bool, version Version) any {
	encoded, err := encodeJSON(mergedOptions(c.options, oneWay, version))
	if err != nil {
		c.logger.Warn(ctx, "soap: call options not encoded", observability.Error(err))
		return nil
	}
	return encoded
}

// Call wraps body in an envelope with the client's headers and sends it.
func (c *Client) Call(ctx context.Context, location, action string, version Version, body []byte) ([]byte, error) {
	envelope, err := c.Envelope(version, body)
	if err != nil {
		return nil, err
	}
	return c.DoRequest(ctx, envelope, location, action, version, false)
}
