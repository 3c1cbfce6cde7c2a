package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{AppEnv: "production", LogFormat: "json"})

	logger.Info("catalog warmed", "listings", 12)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "catalog warmed", record["msg"])
	assert.Equal(t, "tradepost", record["service"])
	assert.Contains(t, record, "source")
}

func TestLoggerPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{AppEnv: "development", LogFormat: "pretty"})

	logger.Info("server started")

	line := buf.String()
	assert.True(t, strings.Contains(line, "msg=\"server started\"") || strings.Contains(line, "msg=server"))
	assert.Contains(t, line, "service=tradepost")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(line), "{"))
}

func TestLoggerSuppressesDebugInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{AppEnv: "production", LogFormat: "json"})

	logger.Debug("cache probe")
	assert.Zero(t, buf.Len())

	dev := newLogger(&buf, &Config{AppEnv: "development", LogFormat: "pretty"})
	dev.Debug("cache probe")
	assert.NotZero(t, buf.Len())
}
