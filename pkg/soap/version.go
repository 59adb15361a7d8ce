package soap

import "fmt"

// Version selects the SOAP protocol framing used by the transport.
type Version int

const (
	SOAP11 Version = 1
	SOAP12 Version = 2
)

func (v Version) String() string {
	switch v {
	case SOAP11:
		return "1.1"
	case SOAP12:
		return "1.2"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// EnvelopeNamespace returns the envelope namespace URI for v, SOAP 1.1 for unknown values.
func (v Version) EnvelopeNamespace() string {
	if v == SOAP12 {
		return "http://www.w3.org/2003/05/soap-envelope"
	}
	return "http://schemas.xmlsoap.org/soap/envelope/"
}
