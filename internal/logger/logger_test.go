package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, prevDetailed := globalLogger, detailedLogging
	globalLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { globalLogger, detailedLogging = prev, prevDetailed })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestRunIDIsAttached(t *testing.T) {
	buf := capture(t)
	ctx := WithRunID(context.Background(), "run-42")
	assert.Equal(t, "run-42", RunID(ctx))
	assert.Empty(t, RunID(context.Background()))

	Info(ctx, "hello", "symbol", "AAPL")
	m := lastLine(t, buf)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "run-42", m["run_id"])
	assert.Equal(t, "AAPL", m["symbol"])
}

func TestDomainEvents(t *testing.T) {
	buf := capture(t)
	ctx := context.Background()

	Decision(ctx, "AAPL", "BUY", 0.33, "BUY - trend")
	m := lastLine(t, buf)
	assert.Equal(t, "DECISION", m["type"])
	assert.Equal(t, "BUY", m["action"])

	Ledger(ctx, "AMD", "closed", "benefit_pct", "11.00")
	m = lastLine(t, buf)
	assert.Equal(t, "LEDGER", m["type"])
	assert.Equal(t, "closed", m["event"])
	assert.Equal(t, "11.00", m["benefit_pct"])
}

func TestDebugGatedByDetailedLogging(t *testing.T) {
	buf := capture(t)
	detailedLogging = false
	Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	detailedLogging = true
	Debug(context.Background(), "shown")
	assert.Equal(t, "shown", lastLine(t, buf)["msg"])
	assert.Contains(t, lastLine(t, buf), "source")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("nonsense"))
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("LOG_DETAILED", "true")
	t.Setenv("LOG_TRACING_ENABLED", "")

	s := settingsFromEnv()
	assert.Equal(t, slog.LevelDebug, s.level)
	assert.False(t, s.json)
	assert.True(t, s.detailed)
	assert.False(t, s.tracing)
}

func TestSetupWritesToGivenWriter(t *testing.T) {
	prev, prevDetailed := globalLogger, detailedLogging
	t.Cleanup(func() { globalLogger, detailedLogging = prev, prevDetailed; slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, setup(settings{level: slog.LevelWarn, json: true}, &buf))
	Info(context.Background(), "below level")
	assert.Zero(t, buf.Len())

	Warn(context.Background(), "kept", "symbol", "IBM")
	assert.Equal(t, "IBM", lastLine(t, &buf)["symbol"])
}

func TestOperationFailureIsLogged(t *testing.T) {
	buf := capture(t)
	op := StartOperation(WithRunID(context.Background(), "r1"), "advisor.Run", "symbols", 3)
	op.EndWithError(assert.AnError, "stage", "quotes")

	m := lastLine(t, buf)
	assert.Equal(t, "Operation failed", m["msg"])
	assert.Equal(t, "r1", m["run_id"])
	assert.Equal(t, float64(3), m["symbols"])
	assert.Equal(t, "quotes", m["stage"])
	assert.Contains(t, m, "duration_ms")
}

func TestSpanAttrsDropsUnsupportedValues(t *testing.T) {
	attrs := spanAttrs([]any{"symbol", "AAPL", "n", 2, "skip", struct{}{}, 7, "bad key", "dangling"})
	require.Len(t, attrs, 2)
	assert.Equal(t, "symbol", string(attrs[0].Key))
	assert.Equal(t, int64(2), attrs[1].Value.AsInt64())
}
