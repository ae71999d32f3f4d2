package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestGlobal(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Get(), "a no-op logger stands in before Init")

	require.NoError(t, Init(Config{Level: "warn"}))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	Set(nil)
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithSession(context.Background(), "s-1", "Parent")

	WithContext(ctx, zap.New(core)).Info("written")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]interface{}{"session_id": "s-1", "record": "Parent"}, entries[0].ContextMap())
}
