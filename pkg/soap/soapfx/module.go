package soapfx

import (
	"fmt"
	"net/http"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/config"
	"github.com/JailtonJunior94/spark-go/pkg/header"
	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"github.com/JailtonJunior94/spark-go/pkg/soap"
	"github.com/JailtonJunior94/spark-go/pkg/soap/httptransport"
	"go.uber.org/fx"
)

// Module provides the HTTP transport and the instrumented SOAP client.
// Analytics are enabled when both an event logger and a tracing controller are provided.
// Usage:
//
//	fx.New(
//	    soapfx.TelemetryModule,
//	    soapfx.Module,
//	    fx.Supply(cfg),
//	)
var Module = fx.Module("soap",
	fx.Provide(
		ProvideTransport,
		ProvideClient,
	),
)

// TransportParams contains dependencies for creating the HTTP transport.
type TransportParams struct {
	fx.In

	Config        *config.Config
	Observability observability.Observability `optional:"true"`

	// HTTPClient replaces the default client. Its Timeout is then left to the caller.
	HTTPClient *http.Client `optional:"true"`
}

// TransportResult contains the transport output.
type TransportResult struct {
	fx.Out

	Transport soap.Transport
}

var retryPolicies = map[string]httptransport.RetryPolicy{
	"":                    httptransport.DefaultRetryPolicy,
	config.RetryDefault:   httptransport.DefaultRetryPolicy,
	config.RetryThrottled: httptransport.ThrottledRetryPolicy,
	config.RetryNone:      httptransport.NoRetryPolicy,
}

// ProvideTransport creates the HTTP transport from the HTTP settings.
func ProvideTransport(p TransportParams) (TransportResult, error) {
	policy, ok := retryPolicies[p.Config.HTTP.RetryPolicy]
	if !ok {
		return TransportResult{}, fmt.Errorf("soapfx: unknown http retry policy %q", p.Config.HTTP.RetryPolicy)
	}

	opts := []httptransport.Option{
		httptransport.WithMaxRetries(p.Config.HTTP.MaxRetries),
		httptransport.WithBackoff(p.Config.HTTP.InitialBackoff, p.Config.HTTP.MaxBackoff),
		httptransport.WithRetryPolicy(policy),
	}
	if p.HTTPClient != nil {
		opts = append(opts, httptransport.WithHTTPClient(p.HTTPClient))
	} else {
		opts = append(opts, httptransport.WithTimeout(p.Config.HTTP.Timeout))
	}
	if p.Observability != nil {
		opts = append(opts, httptransport.WithObservability(p.Observability))
	}

	return TransportResult{Transport: httptransport.New(opts...)}, nil
}

// ClientParams contains dependencies for creating the SOAP client.
type ClientParams struct {
	fx.In

	Config        *config.Config
	Transport     soap.Transport
	Observability observability.Observability `optional:"true"`
	EventLogger   analytics.EventLogger       `optional:"true"`
	Controller    analytics.TracingController `optional:"true"`
	Parser        soap.HeaderParser           `optional:"true"`
}

// ClientResult contains the client output.
type ClientResult struct {
	fx.Out

	Client *soap.Client
}

// ProvideClient creates the SOAP client and enables analytics at the configured level.
func ProvideClient(p ClientParams) (ClientResult, error) {
	opts := []soap.Option{
		soap.WithOptions(p.Config.Options()),
	}

	if p.Observability != nil {
		opts = append(opts,
			soap.WithLogger(p.Observability.Logger()),
			soap.WithMetrics(p.Observability.Metrics()),
		)
	}

	if p.EventLogger != nil && p.Controller != nil {
		var parser soap.HeaderParser = header.NewParser()
		if p.Parser != nil {
			parser = p.Parser
		}
		opts = append(opts, soap.WithAnalytics(p.EventLogger, p.Controller, parser, p.Config.DetailLevel))
	}

	client, err := soap.NewClient(p.Transport, opts...)
	if err != nil {
		return ClientResult{}, err
	}

	return ClientResult{Client: client}, nil
}
