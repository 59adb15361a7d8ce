package brokersink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
)

const (
	// HeaderEventName carries the event name on every published message.
	HeaderEventName = "x-event-name"
	// HeaderTraceID carries the trace identifier on every published message.
	HeaderTraceID = "x-trace-id"

	contentTypeJSON = "application/json"
)

// ErrSinkClosed is returned by Record once the sink has been closed.
var ErrSinkClosed = errors.New("brokersink: sink is closed")

// Publisher delivers one encoded event to a broker.
type Publisher interface {
	Publish(ctx context.Context, key string, headers map[string]string, body []byte) error
	Close() error
}

// Sink is an analytics.EventLogger that publishes events as JSON documents.
// Messages are keyed by trace ID so events of one trace stay ordered on a partition.
type Sink struct {
	publisher Publisher
	closed    atomic.Bool
}

// New creates a sink publishing through publisher.
func New(publisher Publisher) *Sink {
	return &Sink{publisher: publisher}
}

// NewEvent returns an event published when recorded.
func (s *Sink) NewEvent(name string) analytics.Event {
	return &brokerEvent{Entry: analytics.NewEntry(name), sink: s}
}

// Close closes the underlying publisher. It is safe to call more than once.
func (s *Sink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.publisher.Close()
}

func (s *Sink) publish(ctx context.Context, entry *analytics.Entry) error {
	if s.closed.Load() {
		return ErrSinkClosed
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("brokersink: encode event: %w", err)
	}

	headers := map[string]string{
		HeaderEventName: entry.Name,
		HeaderTraceID:   entry.TraceID,
	}

	if err := s.publisher.Publish(ctx, entry.TraceID, headers, body); err != nil {
		return fmt.Errorf("brokersink: publish event: %w", err)
	}
	return nil
}

type brokerEvent struct {
	*analytics.Entry

	sink *Sink
}

func (e *brokerEvent) Record(ctx context.Context) error {
	return e.sink.publish(ctx, e.Entry)
}
