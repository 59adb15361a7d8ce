package analytics_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/JailtonJunior94/spark-go/pkg/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactNilPayload(t *testing.T) {
	for _, level := range []analytics.DetailLevel{analytics.Info, analytics.Detailed, analytics.Full} {
		assert.Nil(t, analytics.Redact(nil, level), level.String())
	}
}

func TestRedactTruncatesLongPayloadAtDetailed(t *testing.T) {
	payload := []byte(strings.Repeat("a", 600))

	result := analytics.Redact(payload, analytics.Detailed)

	require.NotNil(t, result)
	assert.Len(t, *result, 515)
	assert.True(t, strings.HasSuffix(*result, analytics.TruncationMarker))
	assert.Equal(t, strings.Repeat("a", 512), (*result)[:512])
}

func TestRedactKeepsShortPayloadAtDetailed(t *testing.T) {
	payload := []byte(strings.Repeat("a", 400))

	result := analytics.Redact(payload, analytics.Detailed)

	require.NotNil(t, result)
	assert.Equal(t, string(payload), *result)
}

func TestRedactKeepsPayloadAtBoundary(t *testing.T) {
	payload := []byte(strings.Repeat("a", analytics.MaxPayloadLength))

	result := analytics.Redact(payload, analytics.Detailed)

	require.NotNil(t, result)
	assert.Len(t, *result, analytics.MaxPayloadLength)
}

func TestRedactKeepsLongPayloadAtFull(t *testing.T) {
	payload := []byte(strings.Repeat("a", 600))

	result := analytics.Redact(payload, analytics.Full)

	require.NotNil(t, result)
	assert.Len(t, *result, 600)
	assert.Equal(t, string(payload), *result)
}

func TestRedactCountsRunes(t *testing.T) {
	payload := []byte(strings.Repeat("é", 600))

	result := analytics.Redact(payload, analytics.Detailed)

	require.NotNil(t, result)
	assert.True(t, utf8.ValidString(*result))
	assert.Equal(t, analytics.MaxPayloadLength+len(analytics.TruncationMarker), utf8.RuneCountInString(*result))
}

func TestRedactEmptyPayload(t *testing.T) {
	result := analytics.Redact([]byte{}, analytics.Detailed)

	require.NotNil(t, result)
	assert.Equal(t, "", *result)
}
