package logger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, zap.InfoLevel))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestIsManagedRuntime(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    bool
	}{
		{name: "Cloud Run service", envVars: map[string]string{"K_SERVICE": "update-database"}, want: true},
		{name: "Cloud Functions target", envVars: map[string]string{"FUNCTION_TARGET": "update_database"}, want: true},
		{name: "FUNCTION_ENV=production", envVars: map[string]string{"FUNCTION_ENV": "production"}, want: true},
		{name: "FUNCTION_ENV=Prod (mixed case)", envVars: map[string]string{"FUNCTION_ENV": "Prod"}, want: true},
		{name: "FUNCTION_ENV=development", envVars: map[string]string{"FUNCTION_ENV": "development"}, want: false},
		{name: "no env vars", envVars: map[string]string{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"K_SERVICE", "FUNCTION_TARGET", "FUNCTION_ENV"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			assert.Equal(t, tt.want, IsManagedRuntime())
		})
	}
}

func TestLineEncoderFormat(t *testing.T) {
	enc := newLineEncoder()
	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2023, 6, 5, 8, 30, 0, 0, time.UTC),
		LoggerName: "store",
		Message:    "POST https://store.example/api",
	}

	buf, err := enc.EncodeEntry(entry, []zapcore.Field{
		zap.Int("count", 42),
		zap.String("run_id", "abc"),
	})
	require.NoError(t, err)

	assert.Equal(t, "05-06-23 08:30:00 [INFO] store: POST https://store.example/api count=42 run_id=abc\n", buf.String())
}

func TestLineEncoderKeepsContextFields(t *testing.T) {
	enc := newLineEncoder()
	enc.AddString("run_id", "r-1")

	clone := enc.Clone()
	entry := zapcore.Entry{Level: zapcore.ErrorLevel, Time: time.Now(), Message: "GET request failed"}

	buf, err := clone.EncodeEntry(entry, []zapcore.Field{zap.String("error", "connection refused")})
	require.NoError(t, err)

	line := buf.String()
	assert.Contains(t, line, "[ERROR] GET request failed")
	assert.Contains(t, line, "run_id=r-1")
	assert.Contains(t, line, `error="connection refused"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FieldsFromContext(ctx))

	ctx = WithRunID(ctx, "run-123")
	ctx = WithTrigger(ctx, "nats")

	fields := FieldsFromContext(ctx)
	assert.Equal(t, []interface{}{FieldRunID, "run-123", FieldTrigger, "nats"}, fields)
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityQuiet))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityDefault))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(5))
}
