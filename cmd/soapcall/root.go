package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "soapcall",
	Short: "Send instrumented SOAP requests",
	Long: `Soapcall sends SOAP requests through the instrumented client and reports one
outbound_requests_log event per request to the configured sink.

Configuration comes from the environment, for example:
  SPARK_DETAIL_LEVEL=detailed
  SPARK_SINK=kafka
  SPARK_KAFKA_BROKERS=localhost:9092`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
