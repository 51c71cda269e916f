package logger

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/voicetask-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		name       string
		level      string
		logDebug   bool
		logInfo    bool
		logWarning bool
	}{
		{"debug", "debug", true, true, true},
		{"info", "info", false, true, true},
		{"warn", "WARN", false, false, true},
		{"unknown falls back to info", "chatty", false, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &TestLogBuffer{}
			l, err := SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tc.logDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tc.logInfo, strings.Contains(out, "info message"))
			assert.Equal(t, tc.logWarning, strings.Contains(out, "warn message"))

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.NotEmpty(t, entries)
			assert.Equal(t, "voicetask-api", entries[0]["service"])
		})
	}
}

func TestFromContext(t *testing.T) {
	_, fallback := SetupTestLogger(t)
	scoped := fallback.With("trace_id", "abc")

	assert.Same(t, slog.Default(), FromContext(context.Background()))
	assert.Same(t, scoped, FromContext(WithLogger(context.Background(), scoped)))

	other := slog.New(slog.Default().Handler())
	assert.Same(t, other, FromContextOrDefault(context.Background(), other))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("fatal")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelError, level)

	level, ok = ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}
