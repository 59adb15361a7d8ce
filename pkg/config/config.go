package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"github.com/JailtonJunior94/spark-go/pkg/observability/otel"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable read by Load.
const Prefix = "SPARK"

// SinkKind selects where outbound request events are written.
type SinkKind string

const (
	SinkZap   SinkKind = "zap"
	SinkLog   SinkKind = "log"
	SinkOTel  SinkKind = "otel"
	SinkKafka SinkKind = "kafka"
	SinkAMQP  SinkKind = "amqp"
)

var sinkKinds = []SinkKind{SinkZap, SinkLog, SinkOTel, SinkKafka, SinkAMQP}

// Retry policies understood by the SOAP HTTP transport.
const (
	RetryDefault   = "default"
	RetryThrottled = "throttled"
	RetryNone      = "none"
)

// Config holds all application configuration.
type Config struct {
	ServiceName    string                `envconfig:"SERVICE_NAME" default:"spark-soap"`
	ServiceVersion string                `envconfig:"SERVICE_VERSION" default:"unknown"`
	Environment    string                `envconfig:"ENVIRONMENT" default:"development"`
	DetailLevel    analytics.DetailLevel `envconfig:"DETAIL_LEVEL" default:"info"`
	Sink           SinkKind              `envconfig:"SINK" default:"zap"`

	// CallOptions are merged into the options field of detailed events.
	CallOptions map[string]string `envconfig:"CALL_OPTIONS"`

	Logging LogConfig
	OTLP    OTLPConfig
	Kafka   KafkaConfig
	AMQP    AMQPConfig
	HTTP    HTTPConfig
}

// LogConfig holds diagnostics logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// OTLPConfig holds OpenTelemetry exporter configuration.
type OTLPConfig struct {
	Endpoint   string  `envconfig:"ENDPOINT" default:"localhost:4317"`
	Protocol   string  `envconfig:"PROTOCOL" default:"grpc"`
	Insecure   bool    `envconfig:"INSECURE" default:"false"`
	SampleRate float64 `envconfig:"SAMPLE_RATE" default:"1.0"`
}

// KafkaConfig holds the Kafka event sink configuration.
type KafkaConfig struct {
	Brokers      []string      `envconfig:"BROKERS"`
	Topic        string        `envconfig:"TOPIC" default:"outbound_requests_log"`
	BatchTimeout time.Duration `envconfig:"BATCH_TIMEOUT" default:"10ms"`
	// RequiredAcks is -1 for all replicas, 0 for none and 1 for the leader.
	RequiredAcks int `envconfig:"REQUIRED_ACKS" default:"1"`
}

// AMQPConfig holds the RabbitMQ event sink configuration.
type AMQPConfig struct {
	URL        string `envconfig:"URL"`
	Exchange   string `envconfig:"EXCHANGE"`
	RoutingKey string `envconfig:"ROUTING_KEY" default:"outbound_requests_log"`
}

// HTTPConfig holds the SOAP HTTP transport configuration.
type HTTPConfig struct {
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"0"`
	InitialBackoff time.Duration `envconfig:"INITIAL_BACKOFF" default:"200ms"`
	MaxBackoff     time.Duration `envconfig:"MAX_BACKOFF" default:"5s"`
	RetryPolicy    string        `envconfig:"RETRY_POLICY" default:"default"`
}

// Load reads configuration from SPARK_* environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ServiceName) == "" {
		errs = append(errs, errors.New("config: service name cannot be empty"))
	}

	if !slices.Contains(sinkKinds, c.Sink) {
		errs = append(errs, fmt.Errorf("config: unknown sink %q", c.Sink))
	}

	switch observability.LogLevel(strings.ToLower(c.Logging.Level)) {
	case observability.LogLevelDebug, observability.LogLevelInfo, observability.LogLevelWarn, observability.LogLevelError:
	default:
		errs = append(errs, fmt.Errorf("config: unknown log level %q", c.Logging.Level))
	}

	switch observability.LogFormat(strings.ToLower(c.Logging.Format)) {
	case observability.LogFormatJSON, observability.LogFormatText:
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Logging.Format))
	}

	if c.OTLP.SampleRate < 0 || c.OTLP.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("config: sample rate %v outside [0, 1]", c.OTLP.SampleRate))
	}

	switch c.Sink {
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("config: kafka sink requires at least one broker"))
		}
		if c.Kafka.Topic == "" {
			errs = append(errs, errors.New("config: kafka sink requires a topic"))
		}
		if c.Kafka.RequiredAcks < -1 || c.Kafka.RequiredAcks > 1 {
			errs = append(errs, fmt.Errorf("config: kafka required acks %d not one of -1, 0, 1", c.Kafka.RequiredAcks))
		}
	case SinkAMQP:
		if _, err := url.Parse(c.AMQP.URL); err != nil || c.AMQP.URL == "" {
			errs = append(errs, errors.New("config: amqp sink requires a valid url"))
		}
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("config: http timeout must be positive"))
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, errors.New("config: http max retries cannot be negative"))
	}
	switch c.HTTP.RetryPolicy {
	case "", RetryDefault, RetryThrottled, RetryNone:
	default:
		errs = append(errs, fmt.Errorf("config: unknown http retry policy %q", c.HTTP.RetryPolicy))
	}

	return errors.Join(errs...)
}

// Telemetry converts the settings into the OpenTelemetry provider configuration.
func (c *Config) Telemetry() *otel.Config {
	cfg := otel.DefaultConfig(c.ServiceName)
	cfg.ServiceVersion = c.ServiceVersion
	cfg.Environment = c.Environment
	cfg.OTLPEndpoint = c.OTLP.Endpoint
	cfg.OTLPProtocol = otel.OTLPProtocol(strings.ToLower(c.OTLP.Protocol))
	cfg.Insecure = c.OTLP.Insecure
	cfg.TraceSampleRate = c.OTLP.SampleRate
	cfg.LogLevel = observability.LogLevel(strings.ToLower(c.Logging.Level))
	cfg.LogFormat = observability.LogFormat(strings.ToLower(c.Logging.Format))
	return cfg
}

// Options returns the call options as the generic map used by the SOAP client.
func (c *Config) Options() map[string]any {
	options := make(map[string]any, len(c.CallOptions))
	for key, value := range c.CallOptions {
		options[key] = value
	}
	return options
}
