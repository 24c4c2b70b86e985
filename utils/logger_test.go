package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerDropsMessagesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WARN)
	logger.SetOutput(&buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown %d", 1)
	assert.Contains(t, buf.String(), "[WARN] shown 1")
}

func TestLoggerAppendsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO)
	logger.SetOutput(&buf)

	logger.WithField("email", "a@x.com").Info("user registered")

	out := buf.String()
	assert.Contains(t, out, "user registered")
	assert.Contains(t, out, "email=a@x.com")
}

func TestDerivedLoggerMergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO)
	logger.SetOutput(&buf)

	derived := logger.WithField("request", "r1").WithFields(map[string]interface{}{"email": "a@x.com"})
	derived.Info("handled")

	out := buf.String()
	assert.Contains(t, out, "request=r1")
	assert.Contains(t, out, "email=a@x.com")

	// The parent logger is unchanged.
	buf.Reset()
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "request=r1")
}
