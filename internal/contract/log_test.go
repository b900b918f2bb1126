package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLogger(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	require.NoError(t, InitLogger("debug"))
	assert.True(t, Logger().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, InitLogger("error"))
	assert.False(t, Logger().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, InitLogger("verbose"))
}

func TestLogHelpers(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	LogWarn("algorithm failed", errors.New("boom"))
	LogInfo("network built", zap.Int("nodes", 3))
	LogDebug("sampling", zap.String("go_term", "GO:1"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "algorithm failed", entries[0].Message)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, int64(3), entries[1].ContextMap()["nodes"])
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}
