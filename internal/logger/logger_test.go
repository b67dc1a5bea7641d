package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLog_DefaultIsNoop(t *testing.T) {
	require.NotNil(t, Log)
	Log.Info("dropped") // must not panic before Initialize
}

func TestInitialize_WritesJSONFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "chatmon.log")
	require.NoError(t, Initialize("debug", path))
	Log.Info("dataset loaded", zap.Int("entries", 65), WithTier("scored"))
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"dataset loaded"`)
	assert.Contains(t, string(data), `"entries":65`)
	assert.Contains(t, string(data), `"tier":"scored"`)
}

func TestInitialize_LevelFilters(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "chatmon.log")
	require.NoError(t, Initialize("warn", path))
	Log.Info("quiet")
	Log.Warn("loud")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("Warn"))
	assert.False(t, ValidLevel("verbose"))
}
