package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

// Setup changes the process-wide default logger, so these tests are not parallel.
func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l, err := SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hidden")
	l.Warn("shown", slog.String("session_id", "abc"))
	assert.NotContains(t, buf.String(), "hidden")
	AssertLogContains(t, buf, `"session_id":"abc"`)
	assert.Same(t, l, slog.Default())
}

func TestSetupInvalidLevelWarns(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	_, err := SetupWithWriter(config.ServerConfig{LogLevel: "loud"}, buf)
	require.NoError(t, err)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "loud", entries[0]["configured_level"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	_, l := NewTestLogger(t)
	_, fallback := NewTestLogger(t)

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, l, FromContextOrDefault(ctx, fallback))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))

	// A nil logger leaves the context unchanged.
	assert.Equal(t, ctx, WithLogger(ctx, nil))
}
