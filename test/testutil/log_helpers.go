package testutil

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TestLogLevel sets the global log level until the test finishes
func TestLogLevel(t *testing.T, level zerolog.Level) {
	t.Helper()
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(level)
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
	})
}

// CaptureLogs redirects the global logger into a buffer as JSON lines
// until the test finishes
func CaptureLogs(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer

	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	TestLogLevel(t, level)
	t.Cleanup(func() {
		log.Logger = prev
	})
	return &buf
}

// InitTestLogger initializes a test-friendly logger
func InitTestLogger() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(ParseLogLevel(zerolog.WarnLevel))
}

// ParseLogLevel parses log level from environment variable or returns default
func ParseLogLevel(defaultLevel zerolog.Level) zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		return defaultLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return defaultLevel
	}
	return level
}
