// Package soaptest provides a scripted soap.Transport.
package soaptest

import (
	"context"
	"sync"

	"github.com/JailtonJunior94/spark-go/pkg/analytics/fake"
	"github.com/JailtonJunior94/spark-go/pkg/soap"
)

// Request is one captured DoRequest call.
type Request struct {
	Body     []byte
	Location string
	Action   string
	Version  soap.Version
	OneWay   bool
}

// Transport returns a scripted response and header blocks and journals each call.
type Transport struct {
	mu              sync.Mutex
	journal         *fake.Journal
	response        []byte
	err             error
	requestHeaders  *string
	responseHeaders *string
	recorded        *[2]string
	requests        []Request
}

// NewTransport creates a transport answering every call with response.
func NewTransport(journal *fake.Journal, response []byte) *Transport {
	return &Transport{journal: journal, response: response}
}

// WithHeaders scripts the raw request and response header blocks.
func (t *Transport) WithHeaders(request, response string) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requestHeaders = &request
	t.responseHeaders = &response
	return t
}

// RecordHeaders scripts the blocks written into the soap.Exchange of each call.
// They are independent of the blocks set by WithHeaders.
func (t *Transport) RecordHeaders(request, response string) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recorded = &[2]string{request, response}
	return t
}

// Fail makes every call return err.
func (t *Transport) Fail(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
	return t
}

// DoRequest journals the call and returns the scripted response or error.
func (t *Transport) DoRequest(ctx context.Context, request []byte, location, action string, version soap.Version, oneWay bool) ([]byte, error) {
	t.journal.Add(fake.CallTransportDoRequest)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, Request{
		Body:     request,
		Location: location,
		Action:   action,
		Version:  version,
		OneWay:   oneWay,
	})

	if exchange, ok := soap.ExchangeFromContext(ctx); ok && t.recorded != nil {
		exchange.SetRequestHeaders(t.recorded[0])
		exchange.SetResponseHeaders(t.recorded[1])
	}

	if t.err != nil {
		return nil, t.err
	}
	if oneWay {
		return nil, nil
	}
	return t.response, nil
}

// LastRequestHeaders returns the block scripted by WithHeaders.
func (t *Transport) LastRequestHeaders() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.requestHeaders == nil {
		return "", false
	}
	return *t.requestHeaders, true
}

// LastResponseHeaders returns the block scripted by WithHeaders.
func (t *Transport) LastResponseHeaders() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.responseHeaders == nil {
		return "", false
	}
	return *t.responseHeaders, true
}

// Requests returns the captured calls.
func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Request, len(t.requests))
	copy(out, t.requests)
	return out
}
