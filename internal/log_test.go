package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		"Warning": LogLevelWarn,
		"INFO":    LogLevelInfo,
		"debug":   LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	logger := NewLogger(LogLevelWarn).With("simulation")
	logger.Info("hidden")
	logger.Warn("trials=%d", 10)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] [simulation] trials=10")
}
