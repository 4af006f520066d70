package logger

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarning, ParseLevel("WARN"))
	assert.Equal(t, LevelWarning, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarning)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Infof("hidden %d", 1)
	Warningf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARNING]")
	assert.Contains(t, out, "logger_test.go:")
	assert.Contains(t, out, "shown 2")
}

func TestLogFilePath(t *testing.T) {
	at := time.Date(2025, 2, 3, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "spam-restrictor-2025-02-03.log"), logFilePath("logs", "spam-restrictor", at))
}
