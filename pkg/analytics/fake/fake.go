package fake

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/google/uuid"
)

// Journal records the order of collaborator calls across fakes sharing it.
// A nil Journal discards everything.
type Journal struct {
	mu    sync.Mutex
	calls []string
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{calls: make([]string, 0)}
}

// Add appends a call name.
func (j *Journal) Add(call string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, call)
}

// Calls returns a copy of every call recorded so far.
func (j *Journal) Calls() []string {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.calls)
}

// Count returns how many times call was recorded.
func (j *Journal) Count(call string) int {
	count := 0
	for _, c := range j.Calls() {
		if c == call {
			count++
		}
	}
	return count
}

// Contains reports whether call was recorded at least once.
func (j *Journal) Contains(call string) bool {
	return j.Count(call) > 0
}

// Reset clears the journal.
func (j *Journal) Reset() {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = make([]string, 0)
}

// Call names written by the fakes.
const (
	CallStartChildSpan     = "startChildSpan"
	CallStopChildSpan      = "stopChildSpan"
	CallTraceID            = "getTraceId"
	CallSpanID             = "getSpanId"
	CallParentSpanID       = "getParentSpanId"
	CallSpanSpecificTags   = "getSpanSpecificTags"
	CallNewEvent           = "newEvent"
	CallRecordTimestamp    = "recordTimestamp"
	CallSetTraceID         = "setTraceId"
	CallSetSpanID          = "setSpanId"
	CallSetParentSpanID    = "setParentSpanId"
	CallAddTags            = "addTags"
	CallAddFields          = "addFields"
	CallRecord             = "record"
	CallTransportDoRequest = "doRequest"
)

// TracingController is a scripted analytics.TracingController.
// Identifiers default to random UUIDs; the Without* methods make one unavailable.
type TracingController struct {
	mu           sync.RWMutex
	journal      *Journal
	traceID      *string
	spanID       *string
	parentSpanID *string
	tags         analytics.Tags
}

// NewTracingController returns a controller with generated identifiers.
func NewTracingController(journal *Journal) *TracingController {
	traceID := uuid.NewString()
	spanID := uuid.NewString()
	parentSpanID := uuid.NewString()

	return &TracingController{
		journal:      journal,
		traceID:      &traceID,
		spanID:       &spanID,
		parentSpanID: &parentSpanID,
		tags:         make(analytics.Tags),
	}
}

// WithIdentifiers scripts the three identifiers.
func (c *TracingController) WithIdentifiers(traceID, spanID, parentSpanID string) *TracingController {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.traceID = &traceID
	c.spanID = &spanID
	c.parentSpanID = &parentSpanID
	return c
}

// WithoutTraceID makes the trace identifier unavailable.
func (c *TracingController) WithoutTraceID() *TracingController {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.traceID = nil
	return c
}

// WithoutSpanID makes the span identifier unavailable.
func (c *TracingController) WithoutSpanID() *TracingController {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spanID = nil
	return c
}

// WithoutParentSpanID makes the parent span identifier unavailable.
func (c *TracingController) WithoutParentSpanID() *TracingController {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parentSpanID = nil
	return c
}

// WithTags scripts the span specific tags.
func (c *TracingController) WithTags(tags analytics.Tags) *TracingController {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags = tags
	return c
}

func (c *TracingController) StartChildSpan(ctx context.Context) context.Context {
	c.journal.Add(CallStartChildSpan)
	return ctx
}

func (c *TracingController) StopChildSpan(ctx context.Context) {
	c.journal.Add(CallStopChildSpan)
}

func (c *TracingController) TraceID(ctx context.Context) (string, bool) {
	c.journal.Add(CallTraceID)
	return c.read(c.traceID)
}

func (c *TracingController) SpanID(ctx context.Context) (string, bool) {
	c.journal.Add(CallSpanID)
	return c.read(c.spanID)
}

func (c *TracingController) ParentSpanID(ctx context.Context) (string, bool) {
	c.journal.Add(CallParentSpanID)
	return c.read(c.parentSpanID)
}

func (c *TracingController) SpanSpecificTags(ctx context.Context) analytics.Tags {
	c.journal.Add(CallSpanSpecificTags)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.tags)
}

func (c *TracingController) read(value *string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if value == nil {
		return "", false
	}
	return *value, true
}

// EventLogger captures every event it creates.
type EventLogger struct {
	mu        sync.RWMutex
	journal   *Journal
	events    []*Event
	recordErr error
}

// NewEventLogger creates a capturing event logger.
func NewEventLogger(journal *Journal) *EventLogger {
	return &EventLogger{
		journal: journal,
		events:  make([]*Event, 0),
	}
}

// FailRecord makes Record on every subsequently created event return err.
func (l *EventLogger) FailRecord(err error) *EventLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordErr = err
	return l
}

// NewEvent returns a capturing event.
func (l *EventLogger) NewEvent(name string) analytics.Event {
	l.journal.Add(CallNewEvent)

	l.mu.Lock()
	defer l.mu.Unlock()

	event := &Event{
		Entry:     analytics.NewEntry(name),
		journal:   l.journal,
		recordErr: l.recordErr,
	}
	l.events = append(l.events, event)
	return event
}

// Events returns every event created so far, recorded or not.
func (l *EventLogger) Events() []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.events)
}

// Recorded returns only the events whose Record succeeded.
func (l *EventLogger) Recorded() []*Event {
	recorded := make([]*Event, 0)
	for _, event := range l.Events() {
		if event.Recorded {
			recorded = append(recorded, event)
		}
	}
	return recorded
}

// Event is a captured analytics.Event.
type Event struct {
	*analytics.Entry

	Recorded  bool
	journal   *Journal
	recordErr error
}

func (e *Event) RecordTimestamp() {
	e.journal.Add(CallRecordTimestamp)
	e.Entry.RecordTimestamp()
}

func (e *Event) SetTraceID(traceID string) {
	e.journal.Add(CallSetTraceID)
	e.Entry.SetTraceID(traceID)
}

func (e *Event) SetSpanID(spanID string) {
	e.journal.Add(CallSetSpanID)
	e.Entry.SetSpanID(spanID)
}

func (e *Event) SetParentSpanID(parentSpanID string) {
	e.journal.Add(CallSetParentSpanID)
	e.Entry.SetParentSpanID(parentSpanID)
}

func (e *Event) AddTags(tags analytics.Tags) {
	e.journal.Add(CallAddTags)
	e.Entry.AddTags(tags)
}

func (e *Event) AddFields(fields analytics.Fields) {
	e.journal.Add(CallAddFields)
	e.Entry.AddFields(fields)
}

func (e *Event) Record(ctx context.Context) error {
	e.journal.Add(CallRecord)
	if e.recordErr != nil {
		return e.recordErr
	}
	e.Recorded = true
	return nil
}
