// Soapcall sends one instrumented SOAP request and prints the response body.
//
// Usage:
//
//	# Send an envelope read from a file
//	soapcall call --location https://example.com/service --action urn:getQuote --body request.xml
//
//	# Wrap a body read from stdin in a SOAP 1.2 envelope
//	echo '<getQuote/>' | soapcall call --location https://example.com/service --soap-version 2 --wrap
//
// Settings are read from SPARK_* environment variables.
package main

func main() {
	Execute()
}
