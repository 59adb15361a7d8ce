package soap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractStatus(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		status string
		found  bool
	}{
		{name: "http 1.1", raw: "HTTP/1.1 200 OK\r\nContent-Type: text/xml\r\n", status: "200", found: true},
		{name: "http 2", raw: "HTTP/2 500\r\n", status: "500", found: true},
		{name: "first status line wins", raw: "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 202 Accepted\r\n", status: "100", found: true},
		{name: "no status line", raw: "Content-Type: text/xml\r\n", found: false},
		{name: "empty", raw: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, found := extractStatus(tt.raw)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		location string
		domain   string
		found    bool
	}{
		{location: "https://www.example.com", domain: "www.example.com", found: true},
		{location: "https://www.example.com:8443/service?wsdl", domain: "www.example.com", found: true},
		{location: "http://[::1]:8080/soap", domain: "::1", found: true},
		{location: "/relative/path", found: false},
		{location: "://broken", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			domain, found := domainOf(tt.location)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.domain, domain)
		})
	}
}

func TestUnixSecondsRoundsToFourPlaces(t *testing.T) {
	assert.Equal(t, "1734352683.3516", unixSeconds(time.Unix(1734352683, 351602000)).String())
	assert.Equal(t, "1734352683.3517", unixSeconds(time.Unix(1734352683, 351650000)).String())
	assert.Equal(t, "1734352683", unixSeconds(time.Unix(1734352683, 0)).String())
}

func TestEncodeJSONDoesNotEscapeHTML(t *testing.T) {
	encoded, err := encodeJSON(map[string]string{"Content-Type": "text/xml; charset=<utf-8>"})
	assert.NoError(t, err)
	assert.Equal(t, `{"Content-Type":"text/xml; charset=<utf-8>"}`, encoded)
}

func TestMergedOptionsDoesNotModifyInput(t *testing.T) {
	options := CallOptions{"trace": true}

	merged := mergedOptions(options, true, SOAP12)

	assert.Equal(t, CallOptions{"trace": true, "oneWay": true, "soapVersion": 2}, merged)
	assert.Equal(t, CallOptions{"trace": true}, options)
}
