package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/JailtonJunior94/spark-go/pkg/analytics/oteltracing"
	"github.com/JailtonJunior94/spark-go/pkg/config"
	"github.com/JailtonJunior94/spark-go/pkg/observability/otel"
	"github.com/JailtonJunior94/spark-go/pkg/soap"
	"github.com/JailtonJunior94/spark-go/pkg/soap/soapfx"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

const lifecycleTimeout = 15 * time.Second

var callFlags struct {
	location    string
	action      string
	body        string
	call        string
	detailLevel string
	soapVersion int
	oneWay      bool
	wrap        bool
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Send one SOAP request",
	Long: `Send one SOAP request and print the response body.

The request runs inside a root span so the client's child span has a parent,
and a single outbound_requests_log event is written to the configured sink.

Examples:
  # Send a prepared envelope
  soapcall call --location https://example.com/svc --action urn:getQuote --body envelope.xml

  # Wrap a bare body and capture headers and payloads
  soapcall call --location https://example.com/svc --body body.xml --wrap --detail-level detailed`,
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVar(&callFlags.location, "location", "", "service endpoint url")
	callCmd.Flags().StringVar(&callFlags.action, "action", "", "SOAP action")
	callCmd.Flags().StringVar(&callFlags.body, "body", "-", "request file, - reads stdin")
	callCmd.Flags().StringVar(&callFlags.call, "call", "soapcall/call", "logical call name reported as the call tag")
	callCmd.Flags().StringVar(&callFlags.detailLevel, "detail-level", "", "override SPARK_DETAIL_LEVEL: none, info, detailed, full")
	callCmd.Flags().IntVar(&callFlags.soapVersion, "soap-version", 1, "SOAP version: 1 for 1.1, 2 for 1.2")
	callCmd.Flags().BoolVar(&callFlags.oneWay, "one-way", false, "do not wait for a response body")
	callCmd.Flags().BoolVar(&callFlags.wrap, "wrap", false, "wrap the body in a SOAP envelope")
	_ = callCmd.MarkFlagRequired("location")
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if callFlags.detailLevel != "" {
		level, err := analytics.ParseDetailLevel(callFlags.detailLevel)
		if err != nil {
			return err
		}
		cfg.DetailLevel = level
	}

	version, err := parseVersion(callFlags.soapVersion)
	if err != nil {
		return err
	}

	body, err := readBody(callFlags.body, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var (
		client   *soap.Client
		provider *otel.Provider
	)

	app := fx.New(
		fx.NopLogger,
		soapfx.TelemetryModule,
		soapfx.Module,
		fx.Supply(cfg),
		fx.Populate(&client, &provider),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("soapcall: build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), lifecycleTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("soapcall: start application: %w", err)
	}

	response, callErr := send(cmd.Context(), client, provider.TracerProvider().Tracer(soapfx.InstrumentationName), version, body)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer stopCancel()
	stopErr := app.Stop(stopCtx)

	if len(response) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(response))
	}

	return errors.Join(callErr, stopErr)
}

func send(ctx context.Context, client *soap.Client, tracer trace.Tracer, version soap.Version, body []byte) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "soapcall")
	defer span.End()

	ctx = oteltracing.WithCall(ctx, callFlags.call)

	if callFlags.wrap {
		if callFlags.oneWay {
			envelope, err := client.Envelope(version, body)
			if err != nil {
				return nil, err
			}
			return client.DoRequest(ctx, envelope, callFlags.location, callFlags.action, version, true)
		}
		return client.Call(ctx, callFlags.location, callFlags.action, version, body)
	}

	return client.DoRequest(ctx, body, callFlags.location, callFlags.action, version, callFlags.oneWay)
}

func parseVersion(value int) (soap.Version, error) {
	switch soap.Version(value) {
	case soap.SOAP11, soap.SOAP12:
		return soap.Version(value), nil
	default:
		return 0, fmt.Errorf("soapcall: unsupported soap version %d", value)
	}
}

func readBody(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("soapcall: read stdin: %w", err)
		}
		return body, nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("soapcall: read body: %w", err)
	}
	return body, nil
}
