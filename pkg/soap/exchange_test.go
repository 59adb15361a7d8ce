package soap_test

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/spark-go/pkg/soap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeFromContext(t *testing.T) {
	_, ok := soap.ExchangeFromContext(context.Background())
	assert.False(t, ok)

	ctx, exchange := soap.WithExchange(context.Background())
	found, ok := soap.ExchangeFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, exchange, found)

	nested, inner := soap.WithExchange(ctx)
	found, ok = soap.ExchangeFromContext(nested)
	require.True(t, ok)
	assert.Same(t, inner, found)
	assert.NotSame(t, exchange, inner)
}

func TestExchangeRecordsBlocks(t *testing.T) {
	_, exchange := soap.WithExchange(context.Background())
	assert.False(t, exchange.Recorded())

	_, ok := exchange.RequestHeaders()
	assert.False(t, ok)

	exchange.SetResponseHeaders("HTTP/1.1 503 Service Unavailable\r\n\r\n")
	exchange.SetResponseHeaders("HTTP/1.1 200 OK\r\n\r\n")
	assert.True(t, exchange.Recorded())

	response, ok := exchange.ResponseHeaders()
	require.True(t, ok)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", response)

	_, ok = exchange.RequestHeaders()
	assert.False(t, ok)

	exchange.SetRequestHeaders("")
	request, ok := exchange.RequestHeaders()
	assert.True(t, ok)
	assert.Empty(t, request)
}
