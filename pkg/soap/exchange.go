package soap

import (
	"context"
	"sync"
)

// Exchange collects the raw header blocks of a single call.
//
// Client.DoRequest places a fresh Exchange in the context handed to the transport.
// A transport that records into it keeps the blocks of concurrent calls apart;
// transports that do not are read through LastRequestHeaders and LastResponseHeaders.
type Exchange struct {
	mu       sync.Mutex
	request  *string
	response *string
}

type exchangeKey struct{}

// WithExchange returns a context carrying a new Exchange.
func WithExchange(ctx context.Context) (context.Context, *Exchange) {
	exchange := &Exchange{}
	return context.WithValue(ctx, exchangeKey{}, exchange), exchange
}

// ExchangeFromContext returns the Exchange of the call running in ctx, if any.
func ExchangeFromContext(ctx context.Context) (*Exchange, bool) {
	exchange, ok := ctx.Value(exchangeKey{}).(*Exchange)
	return exchange, ok && exchange != nil
}

// SetRequestHeaders records the request line and headers sent for the call.
func (e *Exchange) SetRequestHeaders(raw string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.request = &raw
}

// SetResponseHeaders records the status line and headers received for the call.
// A retried call keeps the block of its last attempt.
func (e *Exchange) SetResponseHeaders(raw string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.response = &raw
}

// RequestHeaders returns the recorded request block.
func (e *Exchange) RequestHeaders() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.request == nil {
		return "", false
	}
	return *e.request, true
}

// ResponseHeaders returns the recorded response block.
func (e *Exchange) ResponseHeaders() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.response == nil {
		return "", false
	}
	return *e.response, true
}

// Recorded reports whether the transport wrote any block into the exchange.
func (e *Exchange) Recorded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.request != nil || e.response != nil
}

// headerBlocks are the raw blocks the event of one call is built from.
type headerBlocks struct {
	request, response       string
	hasRequest, hasResponse bool
}

// blocksFor prefers what the transport recorded for this call and falls back to
// the transport's latest blocks.
func blocksFor(exchange *Exchange, transport Transport) headerBlocks {
	var b headerBlocks
	if exchange.Recorded() {
		b.request, b.hasRequest = exchange.RequestHeaders()
		b.response, b.hasResponse = exchange.ResponseHeaders()
		return b
	}
	b.request, b.hasRequest = transport.LastRequestHeaders()
	b.response, b.hasResponse = transport.LastResponseHeaders()
	return b
}
