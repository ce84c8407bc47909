package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/review-consolidator/internal/adapter/observability"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, observability.LogLevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("info"))
	assert.Equal(t, observability.LogLevelError, observability.ParseLevel("ERROR"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel(""))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, observability.LogFormatJSON, observability.ParseFormat("json"))
	assert.Equal(t, observability.LogFormatJSON, observability.ParseFormat("JSON"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat("human"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat(""))
}

func TestLogWarningJSON(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatJSON)
	logger.LogWarning(context.Background(), "failed to save run", map[string]interface{}{
		"runID": "run-123",
		"error": "database connection failed",
	})

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	require.NotEqual(t, -1, jsonStart, "Should contain JSON")

	var logData map[string]interface{}
	err := json.Unmarshal([]byte(output[jsonStart:]), &logData)
	require.NoError(t, err)

	assert.Equal(t, "warning", logData["level"])
	assert.Equal(t, "failed to save run", logData["message"])
	assert.Equal(t, "run-123", logData["runID"])
	assert.Equal(t, "database connection failed", logData["error"])
	assert.Contains(t, logData, "timestamp")
}

func TestLogInfoJSON(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatJSON)
	logger.LogInfo(context.Background(), "consolidation complete", map[string]interface{}{
		"runID":    "run-456",
		"findings": 7,
	})

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	require.NotEqual(t, -1, jsonStart, "Should contain JSON")

	var logData map[string]interface{}
	err := json.Unmarshal([]byte(output[jsonStart:]), &logData)
	require.NoError(t, err)

	assert.Equal(t, "info", logData["level"])
	assert.Equal(t, "consolidation complete", logData["message"])
	assert.Equal(t, "run-456", logData["runID"])
	assert.Equal(t, float64(7), logData["findings"])
}

func TestLogWarningRespectsLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.LogLevel
		shouldLog bool
	}{
		{"Debug level logs warnings", observability.LogLevelDebug, true},
		{"Info level logs warnings", observability.LogLevelInfo, true},
		{"Error level skips warnings", observability.LogLevelError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			defer log.SetOutput(os.Stderr)

			logger := observability.NewLogger(tt.level, observability.LogFormatHuman)
			logger.LogWarning(context.Background(), "test warning", map[string]interface{}{"key": "value"})

			output := buf.String()
			if tt.shouldLog {
				assert.Contains(t, output, "test warning")
			} else {
				assert.Empty(t, output, "Should not log warnings at Error level")
			}
		})
	}
}

func TestLogInfoRespectsLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.LogLevel
		shouldLog bool
	}{
		{"Debug level logs info", observability.LogLevelDebug, true},
		{"Info level logs info", observability.LogLevelInfo, true},
		{"Error level skips info", observability.LogLevelError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			defer log.SetOutput(os.Stderr)

			logger := observability.NewLogger(tt.level, observability.LogFormatHuman)
			logger.LogInfo(context.Background(), "test info", map[string]interface{}{"key": "value"})

			output := buf.String()
			if tt.shouldLog {
				assert.Contains(t, output, "test info")
			} else {
				assert.Empty(t, output, "Should not log info at Error level")
			}
		})
	}
}

func TestLogWarningHuman(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogWarning(context.Background(), "failed to save run", map[string]interface{}{
		"runID": "run-123",
		"error": "database connection failed",
	})

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "failed to save run")
	assert.Contains(t, output, "runID=run-123")
	assert.Contains(t, output, "error=database connection failed")
}

func TestLogWarningHumanSortsFields(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogWarning(context.Background(), "ordered", map[string]interface{}{
		"zeta":  1,
		"alpha": 2,
	})

	output := buf.String()
	alphaIdx := strings.Index(output, "alpha=2")
	zetaIdx := strings.Index(output, "zeta=1")
	require.NotEqual(t, -1, alphaIdx)
	require.NotEqual(t, -1, zetaIdx)
	assert.Less(t, alphaIdx, zetaIdx, "fields should be sorted by key")
}

func TestLogWarningHumanEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogWarning(context.Background(), "simple warning", map[string]interface{}{})

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "simple warning")
	// Should not have extra key=value pairs
	assert.NotContains(t, output, "=")
}

func TestLogInfoHuman(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := observability.NewLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogInfo(context.Background(), "consolidation complete", map[string]interface{}{
		"runID": "run-789",
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "consolidation complete")
	assert.Contains(t, output, "runID=run-789")
}
