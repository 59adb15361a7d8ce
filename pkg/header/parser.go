package header

import (
	"errors"
	"fmt"
	"net/textproto"
	"regexp"
	"strings"
)

// ErrMalformed wraps every failure to parse a header block.
var ErrMalformed = errors.New("header: malformed header block")

// startLine matches an HTTP request line ("POST /path HTTP/1.1") or status line ("HTTP/1.1 200 OK").
var startLine = regexp.MustCompile(`^(?:HTTP/\d+(?:\.\d+)?\s+\d{3}(?:\s.*)?|[A-Z]+\s+\S+\s+HTTP/\d+(?:\.\d+)?)$`)

// Parser parses raw HTTP header blocks.
type Parser struct{}

// NewParser returns a header block parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse turns a raw header block into a map of canonical header name to value.
//
// A leading request or status line is skipped. Lines starting with a space or a tab
// continue the previous header. Repeated headers are joined with ", ". Parsing stops
// at the first empty line unless another status line follows it, as with interim
// 1xx responses; the headers of the last block are returned. An empty block yields
// an empty map.
func (p *Parser) Parse(raw string) (map[string]string, error) {
	headers := make(map[string]string)

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	last := ""
	blockStart := true

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if blockStart && startLine.MatchString(trimmed) {
			headers = make(map[string]string)
			last = ""
			blockStart = false
			continue
		}

		if trimmed == "" {
			if last == "" || startsBlock(lines[i+1:]) {
				blockStart = true
				continue
			}
			break
		}
		blockStart = false

		if line[0] == ' ' || line[0] == '\t' {
			if last == "" {
				return nil, fmt.Errorf("%w: continuation without header at line %d", ErrMalformed, i+1)
			}
			headers[last] = headers[last] + " " + strings.TrimSpace(line)
			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: missing colon at line %d: %q", ErrMalformed, i+1, line)
		}

		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: invalid header name at line %d: %q", ErrMalformed, i+1, line)
		}

		key := textproto.CanonicalMIMEHeaderKey(name)
		value = strings.TrimSpace(value)

		if existing, ok := headers[key]; ok {
			value = existing + ", " + value
		}
		headers[key] = value
		last = key
	}

	return headers, nil
}

// startsBlock reports whether the first non-empty line of lines is a start line.
func startsBlock(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return startLine.MatchString(trimmed)
		}
	}
	return false
}
