package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// DetailLevel controls how much of an outbound call is captured.
// Levels form a total order: None < Info < Detailed < Full.
type DetailLevel int

const (
	// None disables instrumentation entirely. No span is started and no event is emitted.
	None DetailLevel = iota
	// Info captures timing, url and tags.
	Info
	// Detailed additionally captures headers, options and bodies truncated to MaxPayloadLength.
	Detailed
	// Full captures headers, options and bodies verbatim.
	Full
)

// ErrUnknownDetailLevel is returned when a textual level cannot be parsed.
var ErrUnknownDetailLevel = errors.New("analytics: unknown detail level")

var detailLevelNames = map[DetailLevel]string{
	None:     "none",
	Info:     "info",
	Detailed: "detailed",
	Full:     "full",
}

// AtLeast reports whether l is the same as or more verbose than threshold.
func (l DetailLevel) AtLeast(threshold DetailLevel) bool {
	return l >= threshold
}

// Enabled reports whether any instrumentation happens at this level.
func (l DetailLevel) Enabled() bool {
	return l.AtLeast(Info)
}

func (l DetailLevel) String() string {
	if name, ok := detailLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("DetailLevel(%d)", int(l))
}

// ParseDetailLevel parses none, info, detailed or full (case-insensitive).
func ParseDetailLevel(value string) (DetailLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for level, name := range detailLevelNames {
		if name == normalized {
			return level, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownDetailLevel, value)
}

// MarshalText implements encoding.TextMarshaler.
func (l DetailLevel) MarshalText() ([]byte, error) {
	if _, ok := detailLevelNames[l]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDetailLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration loaders can decode levels.
func (l *DetailLevel) UnmarshalText(text []byte) error {
	level, err := ParseDetailLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}
