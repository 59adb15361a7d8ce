package soap

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/url"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ProtocolTag is the value of the type tag on every event.
	ProtocolTag = "SOAP"

	timestampPlaces = 4
)

// Event field and tag keys.
const (
	FieldURL             = "url"
	FieldStartTimestamp  = "startTimestamp"
	FieldEndTimestamp    = "endTimestamp"
	FieldExecutionTime   = "executionTime"
	FieldRequestHeaders  = "requestHeaders"
	FieldResponseHeaders = "responseHeaders"
	FieldOptions         = "options"
	FieldRequestBody     = "requestBody"
	FieldResponseBody    = "responseBody"

	TagType   = "type"
	TagStatus = "status"
	TagDomain = "domain"
)

var statusLinePattern = regexp.MustCompile(`HTTP/\d+(?:\.\d+)?\s+(\d+)`)

// CallOptions are client configuration values reported with Detailed events.
type CallOptions map[string]any

// unixSeconds returns t as unix seconds rounded to four decimal places.
func unixSeconds(t time.Time) decimal.Decimal {
	return decimal.New(t.UnixMicro(), -6).Round(timestampPlaces)
}

// extractStatus returns the status code of the first HTTP status line in raw.
func extractStatus(raw string) (string, bool) {
	match := statusLinePattern.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// domainOf returns the host of location without port, false when there is none.
func domainOf(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return u.Hostname(), true
}

// encodeJSON marshals v without HTML escaping and without the trailing newline.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// mergedOptions returns a copy of options with the per call oneWay and soapVersion keys.
func mergedOptions(options CallOptions, oneWay bool, version Version) CallOptions {
	merged := make(CallOptions, len(options)+2)
	maps.Copy(merged, options)
	merged["oneWay"] = oneWay
	merged["soapVersion"] = int(version)
	return merged
}
