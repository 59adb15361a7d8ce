package analytics

import (
	"context"
	"maps"
	"time"
)

// OutboundRequestsEvent is the name of the event emitted for every instrumented call.
const OutboundRequestsEvent = "outbound_requests_log"

// Tags are low-cardinality labels attached to an event. An absent tag has no key.
type Tags map[string]string

// Fields are the payload of an event. An absent field keeps its key with a nil value.
type Fields map[string]any

// Event is a single structured record under construction.
// The setters only stage data; Record transmits it.
type Event interface {
	RecordTimestamp()
	SetTraceID(traceID string)
	SetSpanID(spanID string)
	SetParentSpanID(parentSpanID string)
	AddTags(tags Tags)
	AddFields(fields Fields)
	Record(ctx context.Context) error
}

// EventLogger creates named events bound to a logging backend.
type EventLogger interface {
	NewEvent(name string) Event
}

// Entry is the staged content of an Event. Backends embed it and add Record.
type Entry struct {
	Name         string    `json:"name"`
	Timestamp    time.Time `json:"timestamp"`
	TraceID      string    `json:"traceId,omitempty"`
	SpanID       string    `json:"spanId,omitempty"`
	ParentSpanID string    `json:"parentSpanId,omitempty"`
	Tags         Tags      `json:"tags"`
	Fields       Fields    `json:"fields"`

	now func() time.Time
}

// NewEntry returns an empty entry for the named event.
func NewEntry(name string) *Entry {
	return &Entry{
		Name:   name,
		Tags:   make(Tags),
		Fields: make(Fields),
		now:    time.Now,
	}
}

// RecordTimestamp stamps the entry with the current wall-clock time.
func (e *Entry) RecordTimestamp() {
	now := e.now
	if now == nil {
		now = time.Now
	}
	e.Timestamp = now()
}

// SetTraceID sets the trace the event belongs to.
func (e *Entry) SetTraceID(traceID string) {
	e.TraceID = traceID
}

// SetSpanID sets the span of the outbound call.
func (e *Entry) SetSpanID(spanID string) {
	e.SpanID = spanID
}

// SetParentSpanID sets the span that was active before the call started.
func (e *Entry) SetParentSpanID(parentSpanID string) {
	e.ParentSpanID = parentSpanID
}

// AddTags merges tags into the entry; later keys overwrite earlier ones.
func (e *Entry) AddTags(tags Tags) {
	if e.Tags == nil {
		e.Tags = make(Tags, len(tags))
	}
	maps.Copy(e.Tags, tags)
}

// AddFields merges fields into the entry; later keys overwrite earlier ones.
func (e *Entry) AddFields(fields Fields) {
	if e.Fields == nil {
		e.Fields = make(Fields, len(fields))
	}
	maps.Copy(e.Fields, fields)
}
