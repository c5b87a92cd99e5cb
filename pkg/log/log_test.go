package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZerologProvider_Levels(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelInfo)
	logger := provider.GetLoggerWithName("experiment")

	logger.Debug("hidden")
	logger.Info("split trained", SplitKey, 1, R2ScoreKey, 0.75)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "split trained", entries[0]["message"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "experiment", entries[0][ComponentKey])
	assert.Equal(t, 1.0, entries[0][SplitKey])
	assert.Equal(t, 0.75, entries[0][R2ScoreKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
}

func TestZerologProvider_ErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelDebug)
	logger := provider.GetLogger().With(ModelNameKey, "XGBRegressor")

	err := yerrors.NewFitError(3, "fit", yerrors.ErrEmptyData)
	logger.Error("run aborted", err, OperationKey, OperationFit)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "XGBRegressor", entry[ModelNameKey])
	assert.Equal(t, OperationFit, entry[OperationKey])
	assert.Contains(t, entry["error"], "split 3")
	assert.NotEmpty(t, entry[StacktraceKey])

	detail, ok := entry["error_detail"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FitError", detail["type"])
}

func TestZerologProvider_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelError)
	provider.SetLevel(LevelDebug)
	provider.GetLogger().Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlobalProvider(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	defer SetProvider(NewZerologProvider(LevelWarn))

	GetLoggerWithName("datasets").Info("loaded", SplitsKey, 5)
	LogError(yerrors.New("boom"), "failed")

	tl := provider.Logger()
	assert.True(t, tl.ContainsMessage("loaded"))
	assert.True(t, tl.ContainsField(ComponentKey, "datasets"))
	assert.True(t, tl.ContainsField(SplitsKey, 5.0))
	assert.True(t, tl.ContainsField("error", "boom"))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(3).String())
}
