// Package observability provides the structured run logger used by the
// consolidation pipeline. Warnings and informational events are written
// through the standard log package so they share a destination with any
// other process output, in either human-readable or JSON form.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLevel maps a configuration string to a LogLevel. Unknown values
// fall back to LogLevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ParseFormat maps a configuration string to a LogFormat. Unknown values
// fall back to LogFormatHuman.
func ParseFormat(s string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return LogFormatJSON
	}
	return LogFormatHuman
}

// DefaultLogger writes structured run events via the log package.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
	now    func() time.Time
}

// NewLogger creates a logger with the specified level and format.
func NewLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		format: format,
		now:    time.Now,
	}
}

// LogWarning logs a non-fatal problem encountered during a run.
// Suppressed when the level is LogLevelError.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("warning", "[WARN]", message, fields)
}

// LogInfo logs an informational event such as run completion.
// Suppressed when the level is LogLevelError.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", "[INFO]", message, fields)
}

func (l *DefaultLogger) emit(level, prefix, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":     level,
			"message":   message,
			"timestamp": l.now().UTC().Format(time.RFC3339),
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("%s %s (failed to encode log fields: %v)", prefix, message, err)
			return
		}
		log.Printf("%s", data)
		return
	}

	if len(fields) == 0 {
		log.Printf("%s %s", prefix, message)
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	log.Printf("%s %s %s", prefix, message, strings.Join(pairs, " "))
}
