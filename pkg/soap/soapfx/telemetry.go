package soapfx

import (
	"context"
	"fmt"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/analytics/brokersink"
	"github.com/JailtonJunior94/spark-go/pkg/analytics/eventlog"
	"github.com/JailtonJunior94/spark-go/pkg/analytics/oteltracing"
	"github.com/JailtonJunior94/spark-go/pkg/config"
	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"github.com/JailtonJunior94/spark-go/pkg/observability/otel"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

// InstrumentationName names the tracer, meter and event logger scopes.
const InstrumentationName = "github.com/JailtonJunior94/spark-go/pkg/soap"

// TelemetryModule provides the OpenTelemetry provider, the tracing controller and
// the event logger selected by the configured sink.
// Usage:
//
//	fx.New(
//	    soapfx.TelemetryModule,
//	    fx.Supply(cfg),
//	)
var TelemetryModule = fx.Module("soap-telemetry",
	fx.Provide(
		ProvideTelemetry,
		ProvideEventLogger,
	),
)

// TelemetryParams contains dependencies for creating the telemetry provider.
type TelemetryParams struct {
	fx.In

	Config *config.Config
	LC     fx.Lifecycle
}

// TelemetryResult contains the telemetry outputs.
type TelemetryResult struct {
	fx.Out

	Provider      *otel.Provider
	Observability observability.Observability
	Controller    analytics.TracingController
}

// ProvideTelemetry creates the OpenTelemetry provider and shuts it down on stop.
func ProvideTelemetry(p TelemetryParams) (TelemetryResult, error) {
	provider, err := otel.NewProvider(context.Background(), p.Config.Telemetry())
	if err != nil {
		return TelemetryResult{}, fmt.Errorf("soapfx: create telemetry provider: %w", err)
	}

	p.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	controller := oteltracing.NewController(
		provider.TracerProvider().Tracer(InstrumentationName),
		oteltracing.WithStaticTags(analytics.Tags{"service": p.Config.ServiceName}),
	)

	return TelemetryResult{
		Provider:      provider,
		Observability: provider,
		Controller:    controller,
	}, nil
}

// EventLoggerParams contains dependencies for creating the event logger.
type EventLoggerParams struct {
	fx.In

	Config   *config.Config
	Provider *otel.Provider
	LC       fx.Lifecycle
}

// EventLoggerResult contains the event logger output.
type EventLoggerResult struct {
	fx.Out

	EventLogger analytics.EventLogger
}

// ProvideEventLogger creates the configured event logger. Broker sinks are closed on stop.
func ProvideEventLogger(p EventLoggerParams) (EventLoggerResult, error) {
	logger, closeFn, err := NewEventLogger(p.Config, p.Provider)
	if err != nil {
		return EventLoggerResult{}, err
	}

	p.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closeFn()
		},
	})

	return EventLoggerResult{EventLogger: logger}, nil
}

// NewEventLogger builds the event logger for cfg.Sink. The returned function
// releases broker connections and is a no-op for the logging sinks.
func NewEventLogger(cfg *config.Config, provider *otel.Provider) (analytics.EventLogger, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.Sink {
	case config.SinkZap:
		return eventlog.NewZapLogger(provider.ZapLogger().Named("analytics")), noClose, nil
	case config.SinkLog:
		return eventlog.NewFacadeLogger(provider.Logger()), noClose, nil
	case config.SinkOTel:
		return eventlog.NewOTelLogger(provider.EventLogger(InstrumentationName)), noClose, nil
	case config.SinkKafka:
		publisher, err := brokersink.NewKafkaPublisher(brokersink.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			RequiredAcks: kafka.RequiredAcks(cfg.Kafka.RequiredAcks),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("soapfx: create kafka sink: %w", err)
		}
		sink := brokersink.New(publisher)
		return sink, sink.Close, nil
	case config.SinkAMQP:
		publisher, err := brokersink.DialAMQP(brokersink.AMQPConfig{
			URL:        cfg.AMQP.URL,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("soapfx: create amqp sink: %w", err)
		}
		sink := brokersink.New(publisher)
		return sink, sink.Close, nil
	default:
		return nil, nil, fmt.Errorf("soapfx: unknown sink %q", cfg.Sink)
	}
}
