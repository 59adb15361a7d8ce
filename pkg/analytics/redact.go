package analytics

import "unicode/utf8"

const (
	// MaxPayloadLength is the number of characters kept when a payload is truncated.
	MaxPayloadLength = 512

	// TruncationMarker is appended to truncated payloads.
	TruncationMarker = "..."
)

// Redact applies the size policy of level to a raw payload.
//
// A nil payload yields nil. At Detailed a payload longer than MaxPayloadLength characters
// is cut to MaxPayloadLength characters followed by TruncationMarker. Every other case
// returns the payload unchanged, so Full never truncates.
// Characters are counted as runes; the cut never splits a UTF-8 sequence.
func Redact(payload []byte, level DetailLevel) *string {
	if payload == nil {
		return nil
	}

	text := string(payload)
	if level != Detailed || utf8.RuneCountInString(text) <= MaxPayloadLength {
		return &text
	}

	cut, kept := 0, 0
	for cut < len(text) && kept < MaxPayloadLength {
		_, size := utf8.DecodeRuneInString(text[cut:])
		cut += size
		kept++
	}

	truncated := text[:cut] + TruncationMarker
	return &truncated
}
