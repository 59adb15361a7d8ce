package soap_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/analytics/fake"
	"github.com/JailtonJunior94/spark-go/pkg/header"
	"github.com/JailtonJunior94/spark-go/pkg/observability"
	obsfake "github.com/JailtonJunior94/spark-go/pkg/observability/fake"
	"github.com/JailtonJunior94/spark-go/pkg/soap"
	"github.com/JailtonJunior94/spark-go/pkg/soap/soaptest"
	"github.com/stretchr/testify/suite"
)

const (
	traceID      = "7b333e15-aa78-4957-a402-731aecbb358e"
	spanID       = "24ec5f90-7458-4dd5-bb51-7a1e8f4baafe"
	parentSpanID = "8b1f87b5-8383-4413-a341-7619cd4b9948"

	location = "https://www.example.com"

	rawRequestHeaders = "POST /service HTTP/1.1\r\n" +
		"Host: www.xyz.org\r\n" +
		"Content-Type: text/xml; charset=utf-8\r\n" +
		"Content-Length: nnn\r\n\r\n"

	rawResponseHeaders = "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/xml; charset=utf-8\r\n" +
		"Content-Length: 402\r\n\r\n"

	requestBody  = `<?xml version="1.0"?><soap:Envelope><soap:Body><getQuote/></soap:Body></soap:Envelope>`
	responseBody = `<?xml version="1.0"?><soap:Envelope><soap:Body><quote>42</quote></soap:Body></soap:Envelope>`
)

type panickingParser struct{}

func (panickingParser) Parse(string) (map[string]string, error) {
	panic("unexpected end of input")
}

type failingParser struct{}

func (failingParser) Parse(string) (map[string]string, error) {
	return nil, header.ErrMalformed
}

type ClientSuite struct {
	suite.Suite

	ctx         context.Context
	journal     *fake.Journal
	controller  *fake.TracingController
	eventLogger *fake.EventLogger
	transport   *soaptest.Transport
	obs         *obsfake.Provider
	now         time.Time
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.ctx = context.Background()
	s.journal = fake.NewJournal()
	s.controller = fake.NewTracingController(s.journal).
		WithIdentifiers(traceID, spanID, parentSpanID).
		WithTags(analytics.Tags{"call": "controller/method"})
	s.eventLogger = fake.NewEventLogger(s.journal)
	s.transport = soaptest.NewTransport(s.journal, []byte(responseBody)).
		WithHeaders(rawRequestHeaders, rawResponseHeaders)
	s.obs = obsfake.NewProvider()
	s.now = time.Unix(1734352683, 351602000)
}

func (s *ClientSuite) newClient(level analytics.DetailLevel, parser soap.HeaderParser, opts ...soap.Option) *soap.Client {
	base := []soap.Option{
		soap.WithClock(func() time.Time { return s.now }),
		soap.WithLogger(s.obs.Logger()),
		soap.WithMetrics(s.obs.Metrics()),
	}
	if level.Enabled() {
		base = append(base, soap.WithAnalytics(s.eventLogger, s.controller, parser, level))
	}

	client, err := soap.NewClient(s.transport, append(base, opts...)...)
	s.Require().NoError(err)
	return client
}

func (s *ClientSuite) soleEvent() *fake.Event {
	events := s.eventLogger.Events()
	s.Require().Len(events, 1)
	return events[0]
}

func (s *ClientSuite) TestNoneLevelPassesThrough() {
	client := s.newClient(analytics.None, header.NewParser())

	response, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)

	s.Require().NoError(err)
	s.Equal([]byte(responseBody), response)
	s.Equal([]string{fake.CallTransportDoRequest}, s.journal.Calls())
	s.Empty(s.eventLogger.Events())
}

func (s *ClientSuite) TestInfoLevelEmitsBaseFields() {
	client := s.newClient(analytics.Info, header.NewParser())

	response, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)

	s.Require().NoError(err)
	s.Equal([]byte(responseBody), response)

	s.Equal([]string{
		fake.CallStartChildSpan,
		fake.CallTransportDoRequest,
		fake.CallStopChildSpan,
		fake.CallNewEvent,
		fake.CallRecordTimestamp,
		fake.CallTraceID,
		fake.CallSetTraceID,
		fake.CallSpanID,
		fake.CallSetSpanID,
		fake.CallParentSpanID,
		fake.CallSetParentSpanID,
		fake.CallSpanSpecificTags,
		fake.CallAddTags,
		fake.CallAddFields,
		fake.CallRecord,
	}, s.journal.Calls())

	event := s.soleEvent()
	s.True(event.Recorded)
	s.Equal(analytics.OutboundRequestsEvent, event.Name)
	s.Equal(traceID, event.TraceID)
	s.Equal(spanID, event.SpanID)
	s.Equal(parentSpanID, event.ParentSpanID)

	s.Equal(analytics.Tags{
		"type":   "SOAP",
		"status": "200",
		"domain": "www.example.com",
		"call":   "controller/method",
	}, event.Tags)

	s.Equal(analytics.Fields{
		"url":            location,
		"startTimestamp": 1734352683.3516,
		"endTimestamp":   1734352683.3516,
		"executionTime":  0.0,
	}, event.Fields)
}

func (s *ClientSuite) TestDetailedLevelAddsHeadersOptionsAndBodies() {
	client := s.newClient(analytics.Detailed, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	fields := s.soleEvent().Fields
	s.Len(fields, 9)

	requestHeaders, ok := fields[soap.FieldRequestHeaders].(string)
	s.Require().True(ok)
	s.JSONEq(`{"Host":"www.xyz.org","Content-Type":"text/xml; charset=utf-8","Content-Length":"nnn"}`, requestHeaders)

	responseHeaders, ok := fields[soap.FieldResponseHeaders].(string)
	s.Require().True(ok)
	s.JSONEq(`{"Content-Type":"text/xml; charset=utf-8","Content-Length":"402"}`, responseHeaders)

	s.Equal(`{"oneWay":false,"soapVersion":1}`, fields[soap.FieldOptions])

	body, ok := fields[soap.FieldRequestBody].(*string)
	s.Require().True(ok)
	s.Equal(requestBody, *body)

	body, ok = fields[soap.FieldResponseBody].(*string)
	s.Require().True(ok)
	s.Equal(responseBody, *body)
}

func (s *ClientSuite) TestHeadersRecordedForTheCallWin() {
	s.transport.RecordHeaders(
		"POST /service HTTP/1.1\r\nHost: own.example.com\r\n\r\n",
		"HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n",
	)
	client := s.newClient(analytics.Detailed, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	event := s.soleEvent()
	s.Equal("404", event.Tags[soap.TagStatus])
	s.JSONEq(`{"Host":"own.example.com"}`, event.Fields[soap.FieldRequestHeaders].(string))
	s.JSONEq(`{"Content-Length":"0"}`, event.Fields[soap.FieldResponseHeaders].(string))
}

func (s *ClientSuite) TestDetailedLevelTruncatesLongBodies() {
	long := strings.Repeat("a", 600)
	s.transport = soaptest.NewTransport(s.journal, []byte(long)).
		WithHeaders(rawRequestHeaders, rawResponseHeaders)
	client := s.newClient(analytics.Detailed, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(long), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	fields := s.soleEvent().Fields
	for _, key := range []string{soap.FieldRequestBody, soap.FieldResponseBody} {
		body, ok := fields[key].(*string)
		s.Require().True(ok)
		s.Len(*body, 515)
		s.True(strings.HasSuffix(*body, "..."))
	}
}

func (s *ClientSuite) TestFullLevelKeepsLongBodies() {
	long := strings.Repeat("a", 600)
	client := s.newClient(analytics.Full, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(long), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	body, ok := s.soleEvent().Fields[soap.FieldRequestBody].(*string)
	s.Require().True(ok)
	s.Equal(long, *body)
}

func (s *ClientSuite) TestDetailedLevelMergesCallOptions() {
	client := s.newClient(analytics.Detailed, header.NewParser(),
		soap.WithOptions(soap.CallOptions{"trace": true, "soapVersion": 99}),
	)

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP12, true)
	s.Require().NoError(err)

	s.JSONEq(`{"trace":true,"oneWay":true,"soapVersion":2}`, s.soleEvent().Fields[soap.FieldOptions].(string))
}

func (s *ClientSuite) TestOneWayCallHasNilResponseBody() {
	client := s.newClient(analytics.Detailed, header.NewParser())

	response, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, true)

	s.Require().NoError(err)
	s.Nil(response)
	s.Nil(s.soleEvent().Fields[soap.FieldResponseBody])
}

func (s *ClientSuite) TestUnparseableHeadersBecomeNil() {
	tests := []struct {
		name   string
		parser soap.HeaderParser
	}{
		{name: "parser error", parser: failingParser{}},
		{name: "parser panic", parser: panickingParser{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			client := s.newClient(analytics.Detailed, tt.parser)

			response, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)

			s.Require().NoError(err)
			s.Equal([]byte(responseBody), response)

			fields := s.soleEvent().Fields
			s.Contains(fields, soap.FieldRequestHeaders)
			s.Nil(fields[soap.FieldRequestHeaders])
			s.Nil(fields[soap.FieldResponseHeaders])
		})
	}
}

func (s *ClientSuite) TestMissingHeaderBlocksBecomeNil() {
	s.transport = soaptest.NewTransport(s.journal, []byte(responseBody))
	client := s.newClient(analytics.Detailed, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	event := s.soleEvent()
	s.Nil(event.Fields[soap.FieldRequestHeaders])
	s.Nil(event.Fields[soap.FieldResponseHeaders])
	s.NotContains(event.Tags, soap.TagStatus)
}

func (s *ClientSuite) TestEmptyResponseHeadersBecomeNil() {
	s.transport = soaptest.NewTransport(s.journal, []byte(responseBody)).
		WithHeaders(rawRequestHeaders, "")
	client := s.newClient(analytics.Detailed, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	event := s.soleEvent()
	s.NotNil(event.Fields[soap.FieldRequestHeaders])
	s.Nil(event.Fields[soap.FieldResponseHeaders])
}

func (s *ClientSuite) TestStatusWithoutStatusLineIsAbsent() {
	s.transport = soaptest.NewTransport(s.journal, []byte(responseBody)).
		WithHeaders(rawRequestHeaders, "Content-Type: text/xml\r\n")
	client := s.newClient(analytics.Info, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	s.NotContains(s.soleEvent().Tags, soap.TagStatus)
}

func (s *ClientSuite) TestExecutionTimeUsesFourDecimals() {
	times := []time.Time{
		time.Unix(1734352683, 351602000),
		time.Unix(1734352683, 703204000),
	}
	calls := 0
	client := s.newClient(analytics.Info, header.NewParser(), soap.WithClock(func() time.Time {
		t := times[calls]
		calls++
		return t
	}))

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	fields := s.soleEvent().Fields
	s.Equal(1734352683.3516, fields[soap.FieldStartTimestamp])
	s.Equal(1734352683.7032, fields[soap.FieldEndTimestamp])
	s.Equal(0.3516, fields[soap.FieldExecutionTime])
}

func (s *ClientSuite) TestMissingIdentifiersFailAfterStoppingSpan() {
	tests := []struct {
		name       string
		script     func(*fake.TracingController)
		identifier analytics.Identifier
	}{
		{name: "trace", script: func(c *fake.TracingController) { c.WithoutTraceID() }, identifier: analytics.TraceIdentifier},
		{name: "span", script: func(c *fake.TracingController) { c.WithoutSpanID() }, identifier: analytics.SpanIdentifier},
		{name: "parent span", script: func(c *fake.TracingController) { c.WithoutParentSpanID() }, identifier: analytics.ParentSpanIdentifier},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			tt.script(s.controller)
			client := s.newClient(analytics.Info, header.NewParser())

			response, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)

			s.Require().Error(err)
			s.ErrorIs(err, analytics.ErrMissingTraceContext)

			var missing *analytics.MissingTraceContextError
			s.Require().ErrorAs(err, &missing)
			s.Equal(tt.identifier, missing.Identifier)

			s.Equal([]byte(responseBody), response)
			s.Equal(1, s.journal.Count(fake.CallStopChildSpan))
			s.False(s.journal.Contains(fake.CallSpanSpecificTags))
			s.False(s.journal.Contains(fake.CallAddFields))
			s.False(s.journal.Contains(fake.CallRecord))
			s.Empty(s.eventLogger.Recorded())

			errorsLogged := s.obs.Logger().(*obsfake.FakeLogger).EntriesAt(observability.LogLevelError)
			s.NotEmpty(errorsLogged)
		})
	}
}

func (s *ClientSuite) TestTransportErrorPropagatesUnchanged() {
	transportErr := errors.New("could not connect to host")
	s.transport.Fail(transportErr)
	client := s.newClient(analytics.Detailed, header.NewParser())

	response, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)

	s.Nil(response)
	s.Same(transportErr, err)
	s.Equal([]string{fake.CallStartChildSpan, fake.CallTransportDoRequest}, s.journal.Calls())
	s.Empty(s.eventLogger.Events())

	counter := s.obs.Metrics().(*obsfake.FakeMetrics).GetCounter("soap.client.request.errors")
	s.Require().NotNil(counter)
	s.Equal(int64(1), counter.Total())
}

func (s *ClientSuite) TestRecordFailureIsReturned() {
	recordErr := errors.New("sink unavailable")
	s.eventLogger.FailRecord(recordErr)
	client := s.newClient(analytics.Info, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)

	s.ErrorIs(err, recordErr)
}

func (s *ClientSuite) TestMetricsRecordedOnSuccess() {
	client := s.newClient(analytics.Info, header.NewParser())

	_, err := client.DoRequest(s.ctx, []byte(requestBody), location, "action", soap.SOAP11, false)
	s.Require().NoError(err)

	metrics := s.obs.Metrics().(*obsfake.FakeMetrics)
	s.Equal(int64(1), metrics.GetCounter("soap.client.request.count").Total())
	s.Len(metrics.GetHistogram("soap.client.request.duration").GetValues(), 1)
}

func (s *ClientSuite) TestEnableAnalyticsDefaultsToInfo() {
	client := s.newClient(analytics.None, header.NewParser())
	s.Equal(analytics.None, client.DetailLevel())

	s.Require().NoError(client.EnableAnalytics(s.eventLogger, s.controller, header.NewParser()))
	s.Equal(analytics.Info, client.DetailLevel())

	s.Require().NoError(client.EnableAnalytics(s.eventLogger, s.controller, header.NewParser(), analytics.Full))
	s.Equal(analytics.Full, client.DetailLevel())
}

func (s *ClientSuite) TestEnableAnalyticsRequiresCollaborators() {
	client := s.newClient(analytics.None, header.NewParser())

	err := client.EnableAnalytics(nil, s.controller, header.NewParser())

	s.ErrorIs(err, soap.ErrIncompleteAnalytics)
	s.Equal(analytics.None, client.DetailLevel())
}

func TestNewClientRequiresTransport(t *testing.T) {
	_, err := soap.NewClient(nil)
	if !errors.Is(err, soap.ErrNilTransport) {
		t.Errorf("expected ErrNilTransport, got %v", err)
	}
}
