package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_ParsesLevel(t *testing.T) {
	l := New("debug")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = NewWithFormat("bogus", "console")
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestContextLogger_AddsRequestAndStream(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := NewContextLogger(zap.New(core).Sugar())

	ctx := WithStreamID(WithRequestID(context.Background(), "req-1"), "live/feed")
	cl.LogRequest(ctx, "GET", "/api/v1/stats", 200, 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "live/feed", fields["stream_id"])
	assert.Equal(t, int64(200), fields["status_code"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestContextLogger_ServerErrorsLogAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := NewContextLogger(zap.New(core).Sugar())

	cl.LogRequest(context.Background(), "POST", "/api/v1/stats/poll", 502, 10)
	cl.LogError(context.Background(), errors.New("boom"), "poll failed", "attempt", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
