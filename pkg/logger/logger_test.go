package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/pkg/logger"
)

func TestNewProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "production")
	log.Debug("hidden")
	log.Info("shown", "order_id", "ORD-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "ORD-1", line["order_id"])
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))

	var buf bytes.Buffer
	reqLog := logger.New(&buf, "local").With("request_id", "abc")
	ctx := logger.InjectLogger(context.Background(), reqLog)

	logger.WithCtx(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=abc")
}
