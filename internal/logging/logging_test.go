package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "DEBUG", Format: "json"}, &buf)

	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	logger.Debug().Str("account", "acct").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "acct", line["account"])
	assert.Contains(t, line, "time")
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	for _, level := range []string{"", "bogus"} {
		logger := New(Config{Level: level}, &bytes.Buffer{})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel(), "level %q", level)
	}
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "console"}, &buf)
	logger.Info().Msg("payout observed")

	out := buf.String()
	assert.True(t, strings.Contains(out, "payout observed"))
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
