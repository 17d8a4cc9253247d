package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(context.Background()))
	})
}

func TestCorrelationIDContext(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr-1")
	assert.Equal(t, "corr-1", CorrelationIDFromContext(ctx))
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))

	ctx = WithCorrelationID(ctx, "corr-2")
	assert.Equal(t, "corr-2", CorrelationIDFromContext(ctx))
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithRequestID(context.Background(), "req-9")
	ctx = WithCorrelationID(ctx, "corr-9")

	enriched := LoggerFromContext(ctx, logger)
	enriched.Info().Msg("hello")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "req-9", logEntry["request_id"])
	assert.Equal(t, "corr-9", logEntry["correlation_id"])

	buf.Reset()
	plain := LoggerFromContext(context.Background(), logger)
	plain.Info().Msg("bare")
	var bare map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &bare))
	assert.NotContains(t, bare, "request_id")
}
