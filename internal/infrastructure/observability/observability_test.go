package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFromContext_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	initLogger(&buf, "hbnb-test", "production")

	ctx := WithRequestID(context.Background(), "req-42")
	LoggerFromContext(ctx).Info().Msg("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "hbnb-test", line["service"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestInitMetrics_RecordsWithoutProvider(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, metrics, "GET", "/api/v1/places", 200, 5*time.Millisecond)
		RecordCacheHit(ctx, metrics, "places")
		RecordCacheMiss(ctx, metrics, "places")
		RecordAuthFailure(ctx, metrics, "bad_credentials")
		RecordDBMetric(ctx, nil, "select", time.Millisecond)
	})
}
