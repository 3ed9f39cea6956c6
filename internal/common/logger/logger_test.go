// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"listingId": 7}).
		WithError(errors.New("boom")).
		Warn("source fetch failed", map[string]interface{}{"attempt": 2})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		e := entries[0]
		assert.Equal(t, zapcore.WarnLevel, e.Level)
		assert.Equal(t, "source fetch failed", e.Message)

		ctx := e.ContextMap()
		assert.EqualValues(t, 7, ctx["listingId"])
		assert.EqualValues(t, 2, ctx["attempt"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestToZapFields_ErrorValues(t *testing.T) {
	fields := toZapFields(map[string]interface{}{"cause": errors.New("nope")})
	if assert.Len(t, fields, 1) {
		assert.Equal(t, zapcore.ErrorType, fields[0].Type)
	}
	assert.Nil(t, toZapFields(nil))
}

func TestNew_LevelParsing(t *testing.T) {
	assert.True(t, New("debug", "console").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "json").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, New("verbose", "json").Core().Enabled(zapcore.InfoLevel))
	assert.False(t, New("verbose", "json").Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpAndTestLoggers(t *testing.T) {
	NewNoOpLogger().With(map[string]interface{}{"k": "v"}).Info("dropped", nil)
	NewTestLogger(t).Debug("visible in -v output", map[string]interface{}{"page": 1})
}

func TestNewWithOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	l := NewWithOutput("info", "json", path)
	l.Info("listing created", zap.Int64("listingId", 42))
	l.Debug("filtered out")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"listing created"`)
	assert.Contains(t, string(data), `"listingId":42`)
	assert.NotContains(t, string(data), "filtered out")
}
