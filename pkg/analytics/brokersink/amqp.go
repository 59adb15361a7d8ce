package brokersink

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel used by AMQPPublisher.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPConfig configures an AMQPPublisher.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// AMQPPublisher publishes events to a RabbitMQ exchange with a fixed routing key.
// The message key is carried as the AMQP correlation id.
type AMQPPublisher struct {
	conn       *amqp.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	now        func() time.Time
}

// DialAMQP connects to the broker and opens the publishing channel.
func DialAMQP(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("brokersink: amqp url cannot be empty")
	}
	if cfg.RoutingKey == "" && cfg.Exchange == "" {
		return nil, errors.New("brokersink: amqp exchange or routing key is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("brokersink: dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("brokersink: open amqp channel: %w", err)
	}

	publisher := newAMQPPublisher(channel, cfg.Exchange, cfg.RoutingKey)
	publisher.conn = conn
	return publisher, nil
}

func newAMQPPublisher(channel amqpChannel, exchange, routingKey string) *AMQPPublisher {
	return &AMQPPublisher{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		now:        time.Now,
	}
}

// Publish sends one persistent message carrying key as its correlation id.
func (p *AMQPPublisher) Publish(ctx context.Context, key string, headers map[string]string, body []byte) error {
	table := make(amqp.Table, len(headers))
	for name, value := range headers {
		table[name] = value
	}

	return p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:   contentTypeJSON,
		DeliveryMode:  amqp.Persistent,
		CorrelationId: key,
		Timestamp:     p.now(),
		Headers:       table,
		Body:          body,
	})
}

// Close closes the channel and, when DialAMQP opened it, the connection.
func (p *AMQPPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
