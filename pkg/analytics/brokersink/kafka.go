package brokersink

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaWriter is the subset of *kafka.Writer used by KafkaPublisher.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures a KafkaPublisher.
//
// RequiredAcks is handed to the writer as is, so the zero value is
// kafka.RequireNone.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	RequiredAcks kafka.RequiredAcks
}

// KafkaPublisher publishes events to a single Kafka topic.
type KafkaPublisher struct {
	writer kafkaWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher with a kafka-go writer for cfg.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("brokersink: at least one kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("brokersink: kafka topic cannot be empty")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: cfg.RequiredAcks,
		WriteTimeout: 10 * time.Second,
	}

	return newKafkaPublisher(writer), nil
}

func newKafkaPublisher(writer kafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Publish writes one message keyed by key. The content type travels as the first header.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, headers map[string]string, body []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  p.now(),
	}

	message.Headers = append(message.Headers, kafka.Header{Key: "content-type", Value: []byte(contentTypeJSON)})
	for _, name := range sortedKeys(headers) {
		message.Headers = append(message.Headers, kafka.Header{Key: name, Value: []byte(headers[name])})
	}

	return p.writer.WriteMessages(ctx, message)
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
