// Package httptransport sends SOAP envelopes over HTTP and keeps the raw header
// blocks of the latest exchange for analytics.
package httptransport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"github.com/JailtonJunior94/spark-go/pkg/observability/noop"
	"github.com/JailtonJunior94/spark-go/pkg/soap"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Transport implements soap.Transport over net/http.
//
// Non-2xx responses are not errors since SOAP faults travel in the body. When
// retries on 5xx are exhausted the last response is returned as is.
// Header blocks are written into the soap.Exchange carried by the request
// context, which keeps concurrent calls apart. The blocks returned by
// LastRequestHeaders and LastResponseHeaders belong to the latest call only.
type Transport struct {
	client          *http.Client
	headers         http.Header
	policy          RetryPolicy
	maxRetries      uint64
	initialBackoff  time.Duration
	maxBackoff      time.Duration
	maxResponseSize int64
	logger          observability.Logger
	instrumentation *instrumentation

	mu           sync.RWMutex
	lastRequest  *string
	lastResponse *string
}

var _ soap.Transport = (*Transport)(nil)

// New creates a Transport. Without options it performs a single attempt per call.
func New(opts ...Option) *Transport {
	provider := noop.NewProvider()

	t := &Transport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ForceAttemptHTTP2:     true,
			},
		},
		headers:         make(http.Header),
		policy:          DefaultRetryPolicy,
		initialBackoff:  DefaultInitialBackoff,
		maxBackoff:      DefaultMaxBackoff,
		maxResponseSize: DefaultMaxResponseSize,
		logger:          provider.Logger(),
		instrumentation: newInstrumentation(provider.Metrics()),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type exchange struct {
	status int
	body   []byte
}

// DoRequest posts request to location. One-way calls return a nil body.
func (t *Transport) DoRequest(ctx context.Context, request []byte, location, action string, version soap.Version, oneWay bool) ([]byte, error) {
	t.setLastResponse(nil)
	host := hostOf(location)
	recording, _ := soap.ExchangeFromContext(ctx)

	var last *exchange
	attempt := 0

	operation := func() error {
		attempt++

		req, err := t.newRequest(ctx, request, location, action, version)
		if err != nil {
			return backoff.Permanent(err)
		}

		if attempt == 1 {
			t.captureRequestHeaders(ctx, req, recording)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			if t.policy(err, nil) {
				return err
			}
			return backoff.Permanent(err)
		}

		header := responseHeaderBlock(resp)
		body, err := t.readBody(resp)
		if err != nil {
			return backoff.Permanent(err)
		}

		t.setLastResponse(&header)
		if recording != nil {
			recording.SetResponseHeaders(header)
		}
		last = &exchange{status: resp.StatusCode, body: body}

		if t.policy(nil, resp) {
			return errRetryableStatus
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(t.newBackOff(), t.maxRetries), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, delay time.Duration) {
		reason := retryReason(err, last)
		t.instrumentation.recordRetry(ctx, host, reason)
		t.logger.Warn(ctx, "httptransport: retrying SOAP request",
			observability.String("location", location),
			observability.Int("attempt", attempt),
			observability.String("reason", reason),
			observability.Duration("delay", delay),
		)
	})

	if err != nil && !(errors.Is(err, errRetryableStatus) && last != nil) {
		t.instrumentation.recordError(ctx, host, err)
		return nil, fmt.Errorf("httptransport: post %s: %w", location, err)
	}

	if oneWay {
		return nil, nil
	}

	return last.body, nil
}

func (t *Transport) newRequest(ctx context.Context, request []byte, location, action string, version soap.Version) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, location, bytes.NewReader(request))
	if err != nil {
		return nil, err
	}

	for key, values := range t.headers {
		req.Header[key] = append([]string(nil), values...)
	}

	if version == soap.SOAP12 {
		contentType := contentTypeSOAP12
		if action != "" {
			contentType += "; action=" + strconv.Quote(action)
		}
		req.Header.Set("Content-Type", contentType)
	} else {
		req.Header.Set("Content-Type", contentTypeSOAP11)
		// Set directly to keep the conventional SOAPAction spelling on the wire.
		req.Header["SOAPAction"] = []string{strconv.Quote(action)}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func (t *Transport) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.initialBackoff
	b.MaxInterval = t.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (t *Transport) captureRequestHeaders(ctx context.Context, req *http.Request, recording *soap.Exchange) {
	dump, err := httputil.DumpRequestOut(req, false)
	if err != nil {
		t.logger.Debug(ctx, "httptransport: request header block not captured", observability.Error(err))
		t.setLastRequest(nil)
		return
	}

	block := string(dump)
	t.setLastRequest(&block)
	if recording != nil {
		recording.SetRequestHeaders(block)
	}
}

func (t *Transport) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("httptransport: read response: %w", err)
	}

	if int64(len(body)) > t.maxResponseSize {
		_, _ = io.CopyN(io.Discard, resp.Body, DefaultMaxDrainSize)
		return nil, ErrResponseTooLarge
	}

	return body, nil
}

func responseHeaderBlock(resp *http.Response) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\r\n", resp.Proto, resp.Status)
	_ = resp.Header.Write(&buf)
	buf.WriteString("\r\n")
	return buf.String()
}

func retryReason(err error, last *exchange) string {
	if errors.Is(err, errRetryableStatus) && last != nil {
		return fmt.Sprintf("http_%d", last.status)
	}
	return classifyError(err)
}

func hostOf(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (t *Transport) setLastRequest(block *string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastRequest = block
}

func (t *Transport) setLastResponse(block *string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastResponse = block
}

// LastRequestHeaders returns the request line and headers of the latest call.
func (t *Transport) LastRequestHeaders() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastRequest == nil {
		return "", false
	}
	return *t.lastRequest, true
}

// LastResponseHeaders returns the status line and headers of the latest response.
func (t *Transport) LastResponseHeaders() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastResponse == nil {
		return "", false
	}
	return *t.lastResponse, true
}
