package soap

import "context"

// Transport performs the request/response exchange of one SOAP call.
//
// Implementations used concurrently should record the raw header blocks into the
// Exchange carried by ctx (see ExchangeFromContext). LastRequestHeaders and
// LastResponseHeaders expose the blocks of the most recent exchange and are only
// consulted when nothing was recorded; ok is false when none was captured yet.
type Transport interface {
	DoRequest(ctx context.Context, request []byte, location, action string, version Version, oneWay bool) ([]byte, error)
	LastRequestHeaders() (raw string, ok bool)
	LastResponseHeaders() (raw string, ok bool)
}

// HeaderParser turns a raw header block into a name to value mapping.
type HeaderParser interface {
	Parse(raw string) (map[string]string, error)
}
