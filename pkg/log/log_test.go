package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	return m
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLogLevel(tt.in))
		})
	}
}

func TestProviderKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(zerolog.DebugLevel, &buf)

	logger := p.GetLoggerWithName("predictor").With(ModelNameKey, "LinearRegression")
	logger.Info("Prediction completed", OperationKey, OperationPredict, CountKey, 42)

	line := decodeLine(t, &buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "Prediction completed", line["message"])
	assert.Equal(t, "predictor", line[ComponentKey])
	assert.Equal(t, "LinearRegression", line[ModelNameKey])
	assert.Equal(t, OperationPredict, line[OperationKey])
	assert.EqualValues(t, 42, line[CountKey])
}

func TestErrorAttachesLeadingError(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(zerolog.InfoLevel, &buf)

	p.GetLogger().Error("load failed", errors.New("no such file"), PathKey, "model.json")

	line := decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "no such file", line["error"])
	assert.Equal(t, "model.json", line[PathKey])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(zerolog.WarnLevel, &buf)

	p.GetLogger().Info("dropped")
	assert.Zero(t, buf.Len())

	p.GetLogger().Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestDanglingKey(t *testing.T) {
	m := normalize([]interface{}{"a", 1, "b"})
	assert.Equal(t, map[string]interface{}{"a": 1, "b": ""}, m)
}

func TestSetupGlobal(t *testing.T) {
	var buf bytes.Buffer
	Setup("debug", "json", &buf)
	t.Cleanup(func() { SetupLogger("info") })

	GetLoggerWithName("api").Debug("hello")
	line := decodeLine(t, &buf)
	assert.Equal(t, "api", line[ComponentKey])

	buf.Reset()
	LogError(errors.New("boom"), "failed")
	line = decodeLine(t, &buf)
	assert.Equal(t, "boom", line["error"])
}
