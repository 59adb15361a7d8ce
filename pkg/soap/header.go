package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
)

// Header is one SOAP header block, rendered as an element in the envelope's Header.
type Header struct {
	Namespace string
	Name      string
	Data      map[string]string
}

// MarshalXML renders the header as <ns:Name xmlns:ns="..."><ns:key>value</ns:key>...</ns:Name>
// with child elements in key order.
func (h Header) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "h:" + h.Name},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns:h"}, Value: h.Namespace}},
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}

	keys := make([]string, 0, len(h.Data))
	for key := range h.Data {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		child := xml.StartElement{Name: xml.Name{Local: "h:" + key}}
		if err := e.EncodeElement(h.Data[key], child); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// CreateHeader builds a header block without attaching it to the client.
func (c *Client) CreateHeader(namespace, name string, data map[string]string) Header {
	return Header{Namespace: namespace, Name: name, Data: data}
}

// SetHeaders replaces the header blocks sent with every envelope built by the client.
// Calling it without arguments clears them.
func (c *Client) SetHeaders(headers ...Header) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = slices.Clone(headers)
	return c
}

// Headers returns the header blocks currently attached to the client.
func (c *Client) Headers() []Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.headers)
}

// Envelope wraps an already serialized body element in a SOAP envelope carrying the
// client's headers.
func (c *Client) Envelope(version Version, body []byte) ([]byte, error) {
	headers := c.Headers()

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, `<soap:Envelope xmlns:soap=%q>`, version.EnvelopeNamespace())

	if len(headers) > 0 {
		buf.WriteString("<soap:Header>")
		enc := xml.NewEncoder(&buf)
		for _, header := range headers {
			if err := enc.Encode(header); err != nil {
				return nil, fmt.Errorf("soap: encode header %s: %w", header.Name, err)
			}
		}
		if err := enc.Flush(); err != nil {
			return nil, fmt.Errorf("soap: encode headers: %w", err)
		}
		buf.WriteString("</soap:Header>")
	}

	buf.WriteString("<soap:Body>")
	buf.Write(body)
	buf.WriteString("</soap:Body></soap:Envelope>")

	return buf.Bytes(), nil
}
